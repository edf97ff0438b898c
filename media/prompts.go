package media

// Prompts sent to the language model. All of them demand compact
// machine-parseable output; responses are schema-validated and a parse
// failure is handled, never retried blindly.

const intentPrompt = `You are the request parser for a media assistant.
Classify the user's message and extract search terms. Respond with ONLY a
JSON object, no prose, matching exactly this schema:

{
  "action": "download" | "delete" | "browse",
  "media_type": "movie" | "tv" | "both",
  "scope": "library" | "external" | "both",
  "search_terms": "<title or description to search for>",
  "selection": {"kind": "ordinal"|"year"|"title"|"keyword", "value": "<text>"} | null,
  "granular": {"whole_series": true|false, "seasons": [{"season": <n>, "episodes": [<n>, ...]}]} | null
}

Rules:
- "download" covers requests to get, add, grab or fetch media.
- "delete" covers requests to remove, delete or clean up media.
- "browse" covers questions about what exists, recommendations and lookups.
- "scope" is "library" for questions about what the user already has,
  "external" for new content, "both" when unclear.
- "selection" is only set when the message already picks one item from an
  implied list ("the first one", "the 1999 version").
- "granular" is only set for TV requests that name seasons or episodes, or
  explicitly ask for the whole series.

User message: `

const selectionPrompt = `The user was shown a numbered list of media search
results and replied with a selection. Extract how they are choosing.
Respond with ONLY a JSON object matching exactly this schema:

{
  "selection": {"kind": "ordinal"|"year"|"title"|"keyword", "value": "<text>"} | null,
  "granular": {"whole_series": true|false, "seasons": [{"season": <n>, "episodes": [<n>, ...]}]} | null
}

Use "ordinal" for positions ("the second one" -> value "2"), "year" for
release years, "title" for partial title text, "keyword" for descriptive
phrases. Set "selection" to null if the reply does not pick anything.

User reply: `

const topicSwitchPrompt = `A user was in the middle of choosing from a list
of media search results for the query %q. They just sent the message below.
Did they abandon that choice and switch to a different topic or request?
Answer with exactly one word: yes or no.

Message: `

const browsePrompt = `You are a helpful media assistant. Answer the user's
question using ONLY the catalog data provided below. Do not invent titles,
years or availability that are not in the data. Keep the answer
conversational and concise.

Catalog data:
%s

Question: `

const statusPrompt = `You are a helpful media assistant. Summarize the
current download queue below for the user in one or two friendly sentences.
Mention only items that appear in the data.

Download queue:
%s

User question: `

// queueClearMessage is the fixed reply when both download queues are
// empty. It is templated, never model-generated, so the model cannot
// hallucinate phantom downloads.
const queueClearMessage = "Nothing is downloading right now - the queue is clear."

// apologyMessage is the generic failure reply used after unexpected errors.
const apologyMessage = "Sorry, something went wrong while handling that request. Please try again."

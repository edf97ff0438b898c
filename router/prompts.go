package router

const categoryPrompt = `Classify the user's message into exactly one
category. Reply with ONLY the category word, nothing else.

- "media": requests about movies or TV shows (downloading, deleting,
  searching, recommendations, download status).
- "math": requests to solve, render or explain a mathematical expression.
- "image": requests to generate, draw or create a picture.
- "default": everything else.

Message: `

const mathPrompt = `Convert the mathematical content of the user's message
into a single LaTeX expression. Reply with ONLY the LaTeX, no math
delimiters, no prose.

Message: `

const imagePrompt = `Rewrite the user's message as a single concise image
generation prompt. Reply with ONLY the prompt text, one line, no prose.

Message: `

// apologyReply is the generic failure reply when a turn cannot complete.
const apologyReply = "Sorry, something went wrong while handling that. Please try again."

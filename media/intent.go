package media

import (
	"context"
	"strings"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/internal/util"
)

const (
	actionDownload = "download"
	actionDelete   = "delete"
	actionBrowse   = "browse"
)

const (
	mediaTypeMovie = "movie"
	mediaTypeTV    = "tv"
	mediaTypeBoth  = "both"
)

const (
	scopeLibrary  = "library"
	scopeExternal = "external"
	scopeBoth     = "both"
)

// intent is the classified shape of a fresh media request.
type intent struct {
	Action      string
	MediaType   string
	Scope       string
	SearchTerms string
	Selection   *core.SelectionRef
	Granular    *core.GranularSelection
}

type intentPayload struct {
	Action      string            `json:"action"`
	MediaType   string            `json:"media_type"`
	Scope       string            `json:"scope"`
	SearchTerms string            `json:"search_terms"`
	Selection   *selectionPayload `json:"selection"`
	Granular    *granularPayload  `json:"granular"`
}

// classifyIntent runs the intent-classification prompt and normalizes the
// result. Unknown enum values degrade to safe defaults rather than failing
// the turn; a structurally broken response surfaces as a ValidationError.
func (r *Resolver) classifyIntent(ctx context.Context, input string) (intent, error) {
	msg, err := r.invokeModel(ctx, "model.classify_intent", intentPrompt+input)
	if err != nil {
		return intent{}, err
	}

	payload, err := util.DecodeJSON[intentPayload](msg.Content)
	if err != nil {
		return intent{}, err
	}

	out := intent{
		Action:      normalizeEnum(payload.Action, actionBrowse, actionDownload, actionDelete, actionBrowse),
		MediaType:   normalizeEnum(payload.MediaType, mediaTypeBoth, mediaTypeMovie, mediaTypeTV, mediaTypeBoth),
		Scope:       normalizeEnum(payload.Scope, scopeBoth, scopeLibrary, scopeExternal, scopeBoth),
		SearchTerms: strings.TrimSpace(payload.SearchTerms),
		Selection:   payload.Selection.toRef(),
		Granular:    payload.Granular.toGranular(),
	}
	if out.SearchTerms == "" {
		out.SearchTerms = strings.TrimSpace(input)
	}
	return out, nil
}

// normalizeEnum lowercases v and returns it when it is one of allowed,
// otherwise fallback.
func normalizeEnum(v, fallback string, allowed ...string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

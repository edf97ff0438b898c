package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/couchbot/couchbot/core"
)

// handleBrowse answers catalog questions with a grounded model call: the
// relevant catalog data is fetched first and pasted into the prompt, so the
// model can only describe what actually exists.
func (r *Resolver) handleBrowse(ctx context.Context, input string, in intent) (core.Reply, error) {
	var sections []string

	if in.Scope == scopeLibrary || in.Scope == scopeBoth {
		owned, err := r.library(ctx, in.MediaType, in.SearchTerms)
		if err != nil {
			return core.Reply{}, err
		}
		if s := formatCandidateData("In the library", owned); s != "" {
			sections = append(sections, s)
		}
	}
	if in.Scope == scopeExternal || in.Scope == scopeBoth {
		found, err := r.search(ctx, in.MediaType, in.SearchTerms)
		if err != nil {
			return core.Reply{}, err
		}
		if len(found) > r.maxCandidates {
			found = found[:r.maxCandidates]
		}
		if s := formatCandidateData("Available to add", found); s != "" {
			sections = append(sections, s)
		}
	}

	if len(sections) == 0 {
		return core.TextReply(fmt.Sprintf("I couldn't find anything matching %q.", in.SearchTerms)), nil
	}

	prompt := fmt.Sprintf(browsePrompt, strings.Join(sections, "\n")) + input
	msg, err := r.invokeModel(ctx, "model.browse", prompt)
	if err != nil {
		return core.Reply{}, err
	}
	return core.TextReply(msg.Content), nil
}

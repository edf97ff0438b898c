package media

import (
	"context"
	"fmt"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/selection"
)

// handleDelete runs a fresh delete request. Deletes only ever target the
// library, never external search results, and an unambiguous match is
// removed immediately.
func (r *Resolver) handleDelete(ctx context.Context, userID string, in intent) (core.Reply, error) {
	candidates, err := r.library(ctx, in.MediaType, in.SearchTerms)
	if err != nil {
		return core.Reply{}, err
	}
	if len(candidates) == 0 {
		return core.TextReply(fmt.Sprintf("I couldn't find %q in the library, so there's nothing to delete.", in.SearchTerms)), nil
	}
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}

	kind := core.WorkflowMovieDelete
	if in.MediaType == mediaTypeTV {
		kind = core.WorkflowSeriesDelete
	}

	var chosen *core.Candidate
	switch {
	case len(candidates) == 1:
		chosen = &candidates[0]
	case in.Selection != nil && (in.Selection.Kind == core.RefOrdinal || in.Selection.Kind == core.RefYear):
		chosen = selection.Resolve(*in.Selection, candidates)
	}

	if chosen != nil {
		return r.execute(ctx, kind, *chosen, nil)
	}

	wc := core.NewWorkflowContext(kind, in.SearchTerms, candidates)
	wc.SelectionRef = in.Selection
	r.contexts.Set(userID, wc)
	return choicePrompt("delete", candidates), nil
}

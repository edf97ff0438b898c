package media

import (
	"context"
	"fmt"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/resilience"
	"github.com/couchbot/couchbot/selection"
)

// handleDownload runs a fresh download request: search the external
// catalog(s), then either execute immediately when the result is
// unambiguous or open a selection workflow.
func (r *Resolver) handleDownload(ctx context.Context, userID string, in intent) (core.Reply, error) {
	candidates, err := r.search(ctx, in.MediaType, in.SearchTerms)
	if err != nil {
		return core.Reply{}, err
	}
	if len(candidates) == 0 {
		return core.TextReply(fmt.Sprintf("I couldn't find anything matching %q. Maybe try a different title?", in.SearchTerms)), nil
	}
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}

	kind := core.WorkflowMovieDownload
	if in.MediaType == mediaTypeTV {
		kind = core.WorkflowSeriesDownload
	}

	// A single hit, or an up-front positional/year reference against several
	// hits, resolves without an extra round-trip.
	var chosen *core.Candidate
	switch {
	case len(candidates) == 1:
		chosen = &candidates[0]
	case in.Selection != nil && (in.Selection.Kind == core.RefOrdinal || in.Selection.Kind == core.RefYear):
		chosen = selection.Resolve(*in.Selection, candidates)
	}

	if chosen != nil {
		if chosen.Type == core.MediaTypeSeries && !in.Granular.Specified() {
			wc := core.NewWorkflowContext(kind, in.SearchTerms, []core.Candidate{*chosen})
			wc.SelectionRef = in.Selection
			r.contexts.Set(userID, wc)
			return granularityPrompt(*chosen), nil
		}
		return r.execute(ctx, kind, *chosen, in.Granular)
	}

	wc := core.NewWorkflowContext(kind, in.SearchTerms, candidates)
	wc.SelectionRef = in.Selection
	wc.Granular = in.Granular
	r.contexts.Set(userID, wc)
	return choicePrompt("download", candidates), nil
}

// search queries the catalog(s) implied by the classified media type. For
// an ambiguous "both", movies and series are searched and interleaved with
// movies first.
func (r *Resolver) search(ctx context.Context, mediaType, terms string) ([]core.Candidate, error) {
	var out []core.Candidate
	if mediaType == mediaTypeMovie || mediaType == mediaTypeBoth {
		movies, err := resilience.Do(ctx, r.exec, "catalog.search", func(ctx context.Context) ([]core.Candidate, error) {
			return r.movies.SearchNew(ctx, terms)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, movies...)
	}
	if mediaType == mediaTypeTV || mediaType == mediaTypeBoth {
		series, err := resilience.Do(ctx, r.exec, "catalog.search", func(ctx context.Context) ([]core.Candidate, error) {
			return r.series.SearchNew(ctx, terms)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, series...)
	}
	r.logger.Debug("catalog search complete", "terms", terms, "media_type", mediaType, "results", len(out))
	return out, nil
}

// library lists owned media of the classified type, filtered by terms when
// given.
func (r *Resolver) library(ctx context.Context, mediaType, terms string) ([]core.Candidate, error) {
	var out []core.Candidate
	if mediaType == mediaTypeMovie || mediaType == mediaTypeBoth {
		movies, err := resilience.Do(ctx, r.exec, "catalog.library", func(ctx context.Context) ([]core.Candidate, error) {
			return r.movies.ListLibrary(ctx, terms)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, movies...)
	}
	if mediaType == mediaTypeTV || mediaType == mediaTypeBoth {
		series, err := resilience.Do(ctx, r.exec, "catalog.library", func(ctx context.Context) ([]core.Candidate, error) {
			return r.series.ListLibrary(ctx, terms)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, series...)
	}
	return out, nil
}

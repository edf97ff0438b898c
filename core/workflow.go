package core

import "time"

// WorkflowKind enumerates the four multi-turn media workflows.
type WorkflowKind string

const (
	// WorkflowMovieDownload is an in-progress movie download selection.
	WorkflowMovieDownload WorkflowKind = "movie_download"
	// WorkflowSeriesDownload is an in-progress series download selection.
	WorkflowSeriesDownload WorkflowKind = "series_download"
	// WorkflowMovieDelete is an in-progress movie deletion selection.
	WorkflowMovieDelete WorkflowKind = "movie_delete"
	// WorkflowSeriesDelete is an in-progress series deletion selection.
	WorkflowSeriesDelete WorkflowKind = "series_delete"
)

// MediaType returns the catalog domain the workflow operates on.
func (k WorkflowKind) MediaType() MediaType {
	switch k {
	case WorkflowMovieDownload, WorkflowMovieDelete:
		return MediaTypeMovie
	default:
		return MediaTypeSeries
	}
}

// IsDelete reports whether the workflow removes rather than adds media.
func (k WorkflowKind) IsDelete() bool {
	return k == WorkflowMovieDelete || k == WorkflowSeriesDelete
}

// WorkflowContext is the per-user state of one in-progress media workflow.
// It is created when a search needs user disambiguation (or a single series
// candidate still needs season/episode scope) and cleared on resolution,
// unrecoverable error, topic switch or TTL expiry.
//
// SelectionRef and Granular hold references the user supplied in the turn
// that created the context ("the first one, season 2" together with the
// search terms); continuation turns merge new references over them.
type WorkflowContext struct {
	Kind         WorkflowKind       `json:"kind"`
	Query        string             `json:"query"`
	Candidates   []Candidate        `json:"candidates"`
	CreatedAt    time.Time          `json:"created_at"`
	Active       bool               `json:"active"`
	SelectionRef *SelectionRef      `json:"selection_ref,omitempty"`
	Granular     *GranularSelection `json:"granular,omitempty"`
}

// NewWorkflowContext creates an active context stamped with the current time.
func NewWorkflowContext(kind WorkflowKind, query string, candidates []Candidate) WorkflowContext {
	return WorkflowContext{
		Kind:       kind,
		Query:      query,
		Candidates: candidates,
		CreatedAt:  time.Now().UTC(),
		Active:     true,
	}
}

// Live reports whether the context is active and within its TTL at the
// given instant.
func (w WorkflowContext) Live(now time.Time, ttl time.Duration) bool {
	return w.Active && now.Sub(w.CreatedAt) < ttl
}

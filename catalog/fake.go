package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/couchbot/couchbot/core"
)

// AddCall records one AddAndMonitor invocation observed by a Fake.
type AddCall struct {
	ExternalID int64
	Opts       AddOptions
}

// DeleteCall records one UnmonitorAndDelete invocation observed by a Fake.
type DeleteCall struct {
	ExternalID int64
	Opts       DeleteOptions
}

// Fake is an in-memory Client for tests and examples. Search results,
// library contents and the download queue are configured up front; mutations
// are recorded for assertions. Any operation can be made to fail by setting
// the corresponding error.
type Fake struct {
	mu sync.Mutex

	SearchResults map[string][]core.Candidate // query (lowercased) -> results
	Library       []core.Candidate
	Queue         []core.DownloadStatus

	SearchErr error
	ListErr   error
	AddErr    error
	DeleteErr error
	QueueErr  error

	AddCalls    []AddCall
	DeleteCalls []DeleteCall
}

// NewFake constructs an empty Fake.
func NewFake() *Fake {
	return &Fake{SearchResults: make(map[string][]core.Candidate)}
}

// AddSearchResult registers canned search results for a query.
func (f *Fake) AddSearchResult(query string, results ...core.Candidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SearchResults[strings.ToLower(query)] = results
}

// SearchNew implements Client.
func (f *Fake) SearchNew(_ context.Context, query string) ([]core.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	results := f.SearchResults[strings.ToLower(strings.TrimSpace(query))]
	out := make([]core.Candidate, len(results))
	copy(out, results)
	return out, nil
}

// ListLibrary implements Client with a case-insensitive title filter.
func (f *Fake) ListLibrary(_ context.Context, query string) ([]core.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	var out []core.Candidate
	for _, c := range f.Library {
		if needle == "" || strings.Contains(strings.ToLower(c.Title), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

// AddAndMonitor implements Client, recording the call.
func (f *Fake) AddAndMonitor(_ context.Context, externalID int64, opts AddOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AddErr != nil {
		return f.AddErr
	}
	f.AddCalls = append(f.AddCalls, AddCall{ExternalID: externalID, Opts: opts})
	return nil
}

// UnmonitorAndDelete implements Client, recording the call and removing the
// item from the fake library.
func (f *Fake) UnmonitorAndDelete(_ context.Context, externalID int64, opts DeleteOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.DeleteCalls = append(f.DeleteCalls, DeleteCall{ExternalID: externalID, Opts: opts})
	kept := f.Library[:0]
	for _, c := range f.Library {
		if c.ExternalID != externalID {
			kept = append(kept, c)
		}
	}
	f.Library = kept
	return nil
}

// ListActiveDownloads implements Client.
func (f *Fake) ListActiveDownloads(_ context.Context) ([]core.DownloadStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.QueueErr != nil {
		return nil, f.QueueErr
	}
	out := make([]core.DownloadStatus, len(f.Queue))
	copy(out, f.Queue)
	return out, nil
}

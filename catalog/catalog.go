// Package catalog defines the media-catalog client boundary. CouchBot treats
// the movie and series services as black boxes with an identical shape:
// search for new items, list the library, add-and-monitor, unmonitor-and-
// delete, and report the active download queue. Wire protocols belong to the
// excluded transport layer; this package ships only the interface and an
// in-memory fake for tests and examples.
package catalog

import (
	"context"

	"github.com/couchbot/couchbot/core"
)

// AddOptions refines an add-and-monitor request. Granular narrows a series
// add to specific seasons/episodes; nil means monitor per service defaults
// and the whole-series sentinel means monitor everything.
type AddOptions struct {
	Granular *core.GranularSelection
}

// DeleteOptions refines an unmonitor-and-delete request.
type DeleteOptions struct {
	// DeleteFiles removes downloaded files along with the catalog entry.
	DeleteFiles bool
	// AddExclusion prevents automatic re-adding of the item.
	AddExclusion bool
}

// Client is the catalog service contract. Implementations must be safe for
// concurrent use; every call is wrapped by the resilience layer at the call
// site, so implementations should surface raw errors untranslated.
type Client interface {
	// SearchNew queries the external provider for items matching query.
	SearchNew(ctx context.Context, query string) ([]core.Candidate, error)
	// ListLibrary returns items already in the library, optionally filtered
	// by a query string. An empty query lists everything.
	ListLibrary(ctx context.Context, query string) ([]core.Candidate, error)
	// AddAndMonitor adds the item with the given external id and starts
	// monitoring/searching for it.
	AddAndMonitor(ctx context.Context, externalID int64, opts AddOptions) error
	// UnmonitorAndDelete removes the item with the given external id.
	UnmonitorAndDelete(ctx context.Context, externalID int64, opts DeleteOptions) error
	// ListActiveDownloads reports the service's current download queue.
	ListActiveDownloads(ctx context.Context) ([]core.DownloadStatus, error)
}

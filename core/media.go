package core

// MediaType distinguishes the two catalog domains.
type MediaType string

const (
	// MediaTypeMovie identifies movie catalog items.
	MediaTypeMovie MediaType = "movie"
	// MediaTypeSeries identifies TV series catalog items.
	MediaTypeSeries MediaType = "series"
)

// Candidate is a single catalog item returned by search or library listing.
// ID is the catalog-local identifier (zero for items not yet in the
// library); ExternalID is the provider identifier (TMDB for movies, TVDB
// for series) used for add/delete operations. Rating, Overview and the
// file/monitoring flags are presentation-only.
type Candidate struct {
	ID          int64     `json:"id,omitempty"`
	ExternalID  int64     `json:"external_id"`
	Title       string    `json:"title"`
	Year        int       `json:"year,omitempty"`
	Type        MediaType `json:"type"`
	Overview    string    `json:"overview,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	HasFile     bool      `json:"has_file,omitempty"`
	Monitored   bool      `json:"monitored,omitempty"`
	SeasonCount int       `json:"season_count,omitempty"` // series only
}

// DownloadStatus describes one entry in a catalog service's active download
// queue.
type DownloadStatus struct {
	Title    string    `json:"title"`
	Type     MediaType `json:"type"`
	Progress float64   `json:"progress"` // 0..100
	TimeLeft string    `json:"time_left,omitempty"`
	State    string    `json:"state,omitempty"` // downloading, paused, queued, ...
}

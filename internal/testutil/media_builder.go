package testutil

import (
	"hash/fnv"

	"github.com/couchbot/couchbot/core"
)

// Movie builds a movie candidate with a deterministic external ID derived
// from the title.
func Movie(title string, year int) core.Candidate {
	return core.Candidate{
		ExternalID: stableID(title),
		Title:      title,
		Year:       year,
		Type:       core.MediaTypeMovie,
	}
}

// Series builds a series candidate with a deterministic external ID derived
// from the title.
func Series(title string, year, seasons int) core.Candidate {
	return core.Candidate{
		ExternalID:  stableID(title),
		Title:       title,
		Year:        year,
		Type:        core.MediaTypeSeries,
		SeasonCount: seasons,
	}
}

// Downloading builds an in-flight download entry.
func Downloading(title string, t core.MediaType, progress float64) core.DownloadStatus {
	return core.DownloadStatus{
		Title:    title,
		Type:     t,
		Progress: progress,
		TimeLeft: "12m",
		State:    "downloading",
	}
}

func stableID(title string) int64 {
	h := fnv.New32a()
	h.Write([]byte(title))
	return int64(h.Sum32())
}

package core

// RefKind describes how the user is picking from a candidate list.
type RefKind string

const (
	// RefOrdinal selects by 1-based position ("the second one").
	RefOrdinal RefKind = "ordinal"
	// RefYear selects by release year ("the 1999 one").
	RefYear RefKind = "year"
	// RefTitle selects by (partial) title ("the director's cut").
	RefTitle RefKind = "title"
	// RefKeyword selects by a descriptive keyword matched against title and
	// overview ("the one with the heist").
	RefKeyword RefKind = "keyword"
)

// SelectionRef is a parsed description of how a user utterance picks a
// candidate. It is ephemeral: produced per turn and only persisted inside a
// WorkflowContext as the "original" reference supplied at search time.
type SelectionRef struct {
	Kind  RefKind `json:"kind"`
	Value string  `json:"value"`
}

// SeasonSelection names a season and, optionally, specific episodes within
// it. An empty Episodes slice means the whole season.
type SeasonSelection struct {
	Season   int   `json:"season"`
	Episodes []int `json:"episodes,omitempty"`
}

// GranularSelection refines a series selection down to seasons/episodes.
//
// The zero value (present but with no seasons) is a distinguished sentinel
// meaning "the entire series". A nil *GranularSelection means the user has
// not yet specified any granularity; the two must never be conflated.
type GranularSelection struct {
	Seasons []SeasonSelection `json:"seasons"`
}

// WholeSeries reports whether the selection names the entire series.
func (g *GranularSelection) WholeSeries() bool { return g != nil && len(g.Seasons) == 0 }

// Specified reports whether any granularity has been supplied at all,
// counting the whole-series sentinel as specified.
func (g *GranularSelection) Specified() bool { return g != nil }

package media

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/couchbot/couchbot/core"
)

// Wire payloads for model-extracted selections. Kept separate from the core
// types so schema validation stays strict at the boundary.

type selectionPayload struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type seasonPayload struct {
	Season   int   `json:"season"`
	Episodes []int `json:"episodes,omitempty"`
}

type granularPayload struct {
	WholeSeries bool            `json:"whole_series"`
	Seasons     []seasonPayload `json:"seasons,omitempty"`
}

func (p *selectionPayload) toRef() *core.SelectionRef {
	if p == nil {
		return nil
	}
	switch core.RefKind(p.Kind) {
	case core.RefOrdinal, core.RefYear, core.RefTitle, core.RefKeyword:
	default:
		return nil
	}
	value := strings.TrimSpace(p.Value)
	if value == "" {
		return nil
	}
	return &core.SelectionRef{Kind: core.RefKind(p.Kind), Value: value}
}

func (p *granularPayload) toGranular() *core.GranularSelection {
	if p == nil {
		return nil
	}
	if p.WholeSeries {
		return &core.GranularSelection{}
	}
	if len(p.Seasons) == 0 {
		return nil
	}
	g := &core.GranularSelection{}
	for _, s := range p.Seasons {
		if s.Season < 1 {
			continue
		}
		g.Seasons = append(g.Seasons, core.SeasonSelection{Season: s.Season, Episodes: s.Episodes})
	}
	if len(g.Seasons) == 0 {
		return nil
	}
	return g
}

// ordinalWords is ordered: an utterance naming several ordinals ("the first
// or the second") always resolves to the lowest one.
var ordinalWords = []struct {
	word string
	n    int
}{
	{"first", 1}, {"second", 2}, {"third", 3}, {"fourth", 4}, {"fifth", 5},
	{"sixth", 6}, {"seventh", 7}, {"eighth", 8}, {"ninth", 9}, {"tenth", 10},
}

var (
	yearRe          = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	ordinalSuffixRe = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)\b`)
	ordinalPhraseRe = regexp.MustCompile(`\b(?:number|option|no\.?)\s*(\d{1,2})\b`)
	bareNumberRe    = regexp.MustCompile(`^\s*#?(\d{1,2})\s*$`)

	wholeSeriesRe   = regexp.MustCompile(`\b(?:whole|entire|complete|full|all of the)\s+(?:series|show)\b|\ball\s+(?:seasons|episodes)\b|\bevery\s+(?:season|episode)\b`)
	compactEpRe     = regexp.MustCompile(`\bs(\d{1,2})\s*e(\d{1,3})\b`)
	seasonEpisodeRe = regexp.MustCompile(`\bseason\s+(\d{1,2})\s*,?\s*episodes?\s+([\d,\s\-and]+)`)
	seasonOnlyRe    = regexp.MustCompile(`\bseasons?\s+([\d,\s\-and]+)`)
)

// parseSelectionHeuristic extracts a selection reference from an utterance
// without a model round-trip. Years win over bare numbers (a 4-digit value
// is a release year, not a list position). A miss returns nil; the caller
// may then fall back to the model.
func parseSelectionHeuristic(input string) *core.SelectionRef {
	s := strings.ToLower(input)

	if m := yearRe.FindStringSubmatch(s); m != nil {
		return &core.SelectionRef{Kind: core.RefYear, Value: m[1]}
	}
	for _, ow := range ordinalWords {
		if strings.Contains(s, ow.word+" one") || strings.Contains(s, "the "+ow.word) || s == ow.word {
			return &core.SelectionRef{Kind: core.RefOrdinal, Value: strconv.Itoa(ow.n)}
		}
	}
	if m := ordinalSuffixRe.FindStringSubmatch(s); m != nil {
		return &core.SelectionRef{Kind: core.RefOrdinal, Value: m[1]}
	}
	if m := ordinalPhraseRe.FindStringSubmatch(s); m != nil {
		return &core.SelectionRef{Kind: core.RefOrdinal, Value: m[1]}
	}
	if m := bareNumberRe.FindStringSubmatch(s); m != nil {
		return &core.SelectionRef{Kind: core.RefOrdinal, Value: m[1]}
	}
	return nil
}

// parseGranularHeuristic extracts a season/episode selection from an
// utterance. Returns nil when no granularity is mentioned; the distinct
// whole-series sentinel is returned for "the whole series" style phrases.
func parseGranularHeuristic(input string) *core.GranularSelection {
	s := strings.ToLower(input)

	if wholeSeriesRe.MatchString(s) {
		return &core.GranularSelection{}
	}

	if m := compactEpRe.FindStringSubmatch(s); m != nil {
		season, _ := strconv.Atoi(m[1])
		episode, _ := strconv.Atoi(m[2])
		return &core.GranularSelection{Seasons: []core.SeasonSelection{{Season: season, Episodes: []int{episode}}}}
	}

	if m := seasonEpisodeRe.FindStringSubmatch(s); m != nil {
		season, _ := strconv.Atoi(m[1])
		episodes := parseNumberList(m[2])
		if season >= 1 && len(episodes) > 0 {
			return &core.GranularSelection{Seasons: []core.SeasonSelection{{Season: season, Episodes: episodes}}}
		}
	}

	if m := seasonOnlyRe.FindStringSubmatch(s); m != nil {
		seasons := parseNumberList(m[1])
		if len(seasons) > 0 {
			g := &core.GranularSelection{}
			for _, n := range seasons {
				g.Seasons = append(g.Seasons, core.SeasonSelection{Season: n})
			}
			return g
		}
	}

	return nil
}

// parseNumberList expands "1, 2 and 4" or "3-5" into a sorted-as-written
// list of ints. Garbage tokens are skipped.
func parseNumberList(raw string) []int {
	raw = strings.ReplaceAll(raw, "and", ",")
	var out []int
	for _, field := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
		if lo, hi, ok := strings.Cut(field, "-"); ok {
			a, err1 := strconv.Atoi(strings.TrimSpace(lo))
			b, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 == nil && err2 == nil && a >= 1 && b >= a {
				for n := a; n <= b; n++ {
					out = append(out, n)
				}
			}
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(field)); err == nil && n >= 1 {
			out = append(out, n)
		}
	}
	return out
}

// statusKeywords trigger the download-status bypass ahead of general intent
// classification.
var statusKeywords = []string{
	"download status",
	"downloading",
	"download queue",
	"queue status",
	"downloads going",
	"download progress",
	"anything downloading",
	"what's in the queue",
	"whats in the queue",
}

// isStatusQuery reports whether the utterance asks about active downloads.
func isStatusQuery(input string) bool {
	s := strings.ToLower(input)
	for _, kw := range statusKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

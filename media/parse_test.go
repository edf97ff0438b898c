package media

import (
	"testing"

	"github.com/couchbot/couchbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelectionHeuristic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *core.SelectionRef
	}{
		{"year", "the 1999 one please", &core.SelectionRef{Kind: core.RefYear, Value: "1999"}},
		{"year beats bare number", "1982", &core.SelectionRef{Kind: core.RefYear, Value: "1982"}},
		{"ordinal word", "the second one", &core.SelectionRef{Kind: core.RefOrdinal, Value: "2"}},
		{"ordinal suffix", "give me the 3rd", &core.SelectionRef{Kind: core.RefOrdinal, Value: "3"}},
		{"number phrase", "option 4", &core.SelectionRef{Kind: core.RefOrdinal, Value: "4"}},
		{"bare number", "2", &core.SelectionRef{Kind: core.RefOrdinal, Value: "2"}},
		{"hash number", "#5", &core.SelectionRef{Kind: core.RefOrdinal, Value: "5"}},
		{"lowest of two ordinals", "the first or the second", &core.SelectionRef{Kind: core.RefOrdinal, Value: "1"}},
		{"no selection", "hmm not sure yet", nil},
		{"free text", "the one with the boat", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSelectionHeuristic(tt.input))
		})
	}
}

func TestParseGranularHeuristic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *core.GranularSelection
	}{
		{"whole series", "the whole series please", &core.GranularSelection{}},
		{"all seasons", "grab all seasons", &core.GranularSelection{}},
		{"single season", "just season 2", &core.GranularSelection{Seasons: []core.SeasonSelection{{Season: 2}}}},
		{"season list", "seasons 1, 2 and 4", &core.GranularSelection{Seasons: []core.SeasonSelection{{Season: 1}, {Season: 2}, {Season: 4}}}},
		{"season range", "seasons 2-4", &core.GranularSelection{Seasons: []core.SeasonSelection{{Season: 2}, {Season: 3}, {Season: 4}}}},
		{"compact episode", "s2e5", &core.GranularSelection{Seasons: []core.SeasonSelection{{Season: 2, Episodes: []int{5}}}}},
		{"season with episodes", "season 1 episodes 3-5 and 7", &core.GranularSelection{Seasons: []core.SeasonSelection{{Season: 1, Episodes: []int{3, 4, 5, 7}}}}},
		{"no granularity", "yes that one", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseGranularHeuristic(tt.input))
		})
	}
}

func TestParseGranularHeuristicWholeSeriesSentinel(t *testing.T) {
	g := parseGranularHeuristic("the entire show")
	require.NotNil(t, g)
	assert.True(t, g.WholeSeries())
	assert.True(t, g.Specified())
}

func TestParseNumberList(t *testing.T) {
	assert.Equal(t, []int{1, 2, 4}, parseNumberList("1, 2 and 4"))
	assert.Equal(t, []int{3, 4, 5}, parseNumberList("3-5"))
	assert.Equal(t, []int{7}, parseNumberList("7"))
	assert.Nil(t, parseNumberList("x, y"))
	assert.Nil(t, parseNumberList("5-3"))
}

func TestIsStatusQuery(t *testing.T) {
	assert.True(t, isStatusQuery("what's in the queue?"))
	assert.True(t, isStatusQuery("is anything downloading right now"))
	assert.True(t, isStatusQuery("Download Status please"))
	assert.False(t, isStatusQuery("download the matrix"))
	assert.False(t, isStatusQuery("delete dexter"))
}

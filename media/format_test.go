package media

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/couchbot/couchbot/core"
	"github.com/couchbot/couchbot/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGranularityPromptOmitsUnknownYear(t *testing.T) {
	c := testutil.Series("Dexter", 2006, 8)
	c.Year = 0

	reply := granularityPrompt(c)

	assert.Contains(t, reply.Content, "Dexter:")
	assert.NotContains(t, reply.Content, "(0)")
}

func TestGranularityPromptWithYear(t *testing.T) {
	reply := granularityPrompt(testutil.Series("Dexter", 2006, 8))

	assert.Contains(t, reply.Content, "Dexter (2006)")
	assert.Contains(t, reply.Content, "8 seasons")
}

func TestFormatCandidateDataTruncatesOnRuneBoundary(t *testing.T) {
	c := testutil.Movie("Hero", 2002)
	c.Overview = strings.Repeat("英", 100) // 3 bytes per rune, byte 200 falls mid-rune

	out := formatCandidateData("In the library", []core.Candidate{c})

	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, "...")
}

func TestFormatCandidateDataShortOverviewUntouched(t *testing.T) {
	c := testutil.Movie("Heat", 1995)
	c.Overview = "A heist thriller."

	out := formatCandidateData("In the library", []core.Candidate{c})

	assert.Contains(t, out, "A heist thriller.")
	assert.NotContains(t, out, "...")
}

package media

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/couchbot/couchbot/core"
)

// formatCandidateList renders a numbered choice list for a re-prompt.
func formatCandidateList(candidates []core.Candidate) string {
	var b strings.Builder
	for i, c := range candidates {
		b.WriteString(fmt.Sprintf("%d. %s", i+1, c.Title))
		if c.Year != 0 {
			b.WriteString(fmt.Sprintf(" (%d)", c.Year))
		}
		if c.Type == core.MediaTypeSeries && c.SeasonCount > 0 {
			b.WriteString(fmt.Sprintf(" - %d seasons", c.SeasonCount))
		}
		if c.Rating > 0 {
			b.WriteString(fmt.Sprintf(" - rated %.1f", c.Rating))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// choicePrompt asks the user to pick from a stored candidate list.
func choicePrompt(verb string, candidates []core.Candidate) core.Reply {
	header := fmt.Sprintf("I found %d matches. Which one would you like to %s?", len(candidates), verb)
	return core.TextReply(header + "\n" + formatCandidateList(candidates))
}

// granularityPrompt asks which seasons/episodes of a chosen series to grab.
func granularityPrompt(c core.Candidate) core.Reply {
	scope := "Which seasons or episodes would you like"
	if c.SeasonCount > 0 {
		scope = fmt.Sprintf("It has %d seasons. Which seasons or episodes would you like", c.SeasonCount)
	}
	return core.TextReply(fmt.Sprintf("%s: %s? You can also say \"the whole series\".", titleWithYear(c), scope))
}

// describeGranular renders a granular selection for confirmations.
func describeGranular(g *core.GranularSelection) string {
	if g.WholeSeries() {
		return "the whole series"
	}
	var parts []string
	for _, s := range g.Seasons {
		if len(s.Episodes) == 0 {
			parts = append(parts, fmt.Sprintf("season %d", s.Season))
			continue
		}
		eps := make([]string, len(s.Episodes))
		for i, e := range s.Episodes {
			eps[i] = fmt.Sprintf("%d", e)
		}
		parts = append(parts, fmt.Sprintf("season %d episodes %s", s.Season, strings.Join(eps, ", ")))
	}
	return strings.Join(parts, "; ")
}

// titleWithYear renders "Title (Year)" with the year omitted when unknown.
func titleWithYear(c core.Candidate) string {
	if c.Year == 0 {
		return c.Title
	}
	return fmt.Sprintf("%s (%d)", c.Title, c.Year)
}

// formatCandidateData renders grounding data for browse answers.
func formatCandidateData(label string, candidates []core.Candidate) string {
	if len(candidates) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(label + ":\n")
	for _, c := range candidates {
		b.WriteString("- " + titleWithYear(c))
		if c.Overview != "" {
			b.WriteString(": " + truncate(c.Overview, 200))
		}
		if c.HasFile {
			b.WriteString(" [downloaded]")
		} else if c.Monitored {
			b.WriteString(" [monitored]")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// formatQueue renders the active download queue for the status summary.
func formatQueue(queue []core.DownloadStatus) string {
	var b strings.Builder
	for _, d := range queue {
		b.WriteString(fmt.Sprintf("- %s (%s): %.0f%%", d.Title, d.Type, d.Progress))
		if d.TimeLeft != "" {
			b.WriteString(", " + d.TimeLeft + " left")
		}
		if d.State != "" {
			b.WriteString(", " + d.State)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

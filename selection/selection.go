// Package selection implements the pure heuristics that turn a parsed
// selection reference plus a candidate list into a single catalog item.
//
// Ordinal and year references default to the first candidate when they miss:
// those reference kinds are usually unambiguous enough that a lenient guess
// keeps the dialogue moving. Title and keyword misses return nil instead,
// signalling genuine ambiguity that the caller should resolve by
// re-prompting rather than guessing.
package selection

import (
	"strconv"
	"strings"

	"github.com/couchbot/couchbot/core"
)

// Resolve maps a selection reference onto one candidate, or nil when the
// reference cannot be resolved and the caller should re-prompt. An empty
// candidate list always resolves to nil.
func Resolve(ref core.SelectionRef, candidates []core.Candidate) *core.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	switch ref.Kind {
	case core.RefOrdinal:
		return resolveOrdinal(ref.Value, candidates)
	case core.RefYear:
		return resolveYear(ref.Value, candidates)
	case core.RefTitle:
		return resolveText(ref.Value, candidates, false)
	case core.RefKeyword:
		return resolveText(ref.Value, candidates, true)
	default:
		// Unrecognized kinds take the lenient path.
		return &candidates[0]
	}
}

// resolveOrdinal treats value as a 1-based index. Out-of-range or
// unparseable ordinals fall back to the first candidate; this is a
// deliberate lenient default, not an error.
func resolveOrdinal(value string, candidates []core.Candidate) *core.Candidate {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err == nil && n >= 1 && n <= len(candidates) {
		return &candidates[n-1]
	}
	return &candidates[0]
}

// resolveYear matches the first candidate whose release year stringifies to
// value, falling back to the first candidate when none does.
func resolveYear(value string, candidates []core.Candidate) *core.Candidate {
	want := strings.TrimSpace(value)
	for i := range candidates {
		if candidates[i].Year != 0 && strconv.Itoa(candidates[i].Year) == want {
			return &candidates[i]
		}
	}
	return &candidates[0]
}

// resolveText does a case-insensitive substring match against titles and,
// for keyword references, overview text as well. First match wins; a miss
// returns nil so the caller re-prompts.
func resolveText(value string, candidates []core.Candidate, includeOverview bool) *core.Candidate {
	needle := strings.ToLower(strings.TrimSpace(value))
	if needle == "" {
		return nil
	}
	for i := range candidates {
		if strings.Contains(strings.ToLower(candidates[i].Title), needle) {
			return &candidates[i]
		}
		if includeOverview && strings.Contains(strings.ToLower(candidates[i].Overview), needle) {
			return &candidates[i]
		}
	}
	return nil
}

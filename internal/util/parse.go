// Package util provides typed parse helpers for model output. Models are
// asked for compact machine-parseable text (a single-token category or a
// small JSON object); these helpers validate that shape and return tagged
// errors instead of panicking or throwing past handler boundaries.
package util

import (
	"encoding/json"
	"strings"

	"github.com/couchbot/couchbot/core"
)

// ExtractJSON pulls the first JSON object out of model text, tolerating
// markdown code fences and prose around the payload. Returns the raw object
// text or an empty string when none is present.
func ExtractJSON(text string) string {
	s := text
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// DecodeJSON extracts and strictly decodes a JSON object from model text
// into T. Unknown fields are rejected so schema drift surfaces as a
// ValidationError instead of silently dropped data.
func DecodeJSON[T any](text string) (T, error) {
	var out T
	raw := ExtractJSON(text)
	if raw == "" {
		return out, &core.ValidationError{Reason: "no JSON object in model output", Raw: text}
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, &core.ValidationError{Reason: "malformed JSON in model output: " + err.Error(), Raw: raw}
	}
	return out, nil
}

// ParseToken normalizes model output expected to be a single token drawn
// from allowed. Comparison is case-insensitive and tolerates surrounding
// punctuation and whitespace. A miss returns a ValidationError.
func ParseToken(text string, allowed ...string) (string, error) {
	token := strings.ToLower(strings.TrimSpace(text))
	token = strings.Trim(token, ".!\"'`")
	for _, a := range allowed {
		if token == a {
			return a, nil
		}
	}
	return "", &core.ValidationError{Reason: "unexpected token " + strings.TrimSpace(text), Raw: text}
}

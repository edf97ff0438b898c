package util

import (
	"testing"

	"github.com/couchbot/couchbot/core"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"Sure! Here you go:\n```json\n{\"a\": 1}\n```\nHope that helps.", `{"a": 1}`},
		{`prefix {"nested": {"b": 2}} suffix`, `{"nested": {"b": 2}}`},
		{`{"s": "brace } in string"}`, `{"s": "brace } in string"}`},
		{"no json here", ""},
		{`{"unterminated": 1`, ""},
	}
	for _, tc := range cases {
		if got := ExtractJSON(tc.in); got != tc.want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Action string `json:"action"`
		Terms  string `json:"terms,omitempty"`
	}

	got, err := DecodeJSON[payload]("```json\n{\"action\":\"download\",\"terms\":\"alien\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Action != "download" || got.Terms != "alien" {
		t.Fatalf("decoded wrong payload: %+v", got)
	}

	_, err = DecodeJSON[payload](`{"action":"download","bogus":true}`)
	if err == nil {
		t.Fatal("unknown fields should be rejected")
	}
	var verr *core.ValidationError
	if !asValidation(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	if _, err := DecodeJSON[payload]("nothing structured"); err == nil {
		t.Fatal("missing JSON should fail")
	}
}

func TestParseToken(t *testing.T) {
	got, err := ParseToken("  Media.\n", "default", "math", "image", "media")
	if err != nil || got != "media" {
		t.Fatalf("ParseToken normalization failed: %q %v", got, err)
	}

	if _, err := ParseToken("sports", "default", "math", "image", "media"); err == nil {
		t.Fatal("unknown token should fail")
	}
}

func asValidation(err error, target **core.ValidationError) bool {
	v, ok := err.(*core.ValidationError)
	if ok {
		*target = v
	}
	return ok
}

package selection

import (
	"testing"

	"github.com/couchbot/couchbot/core"
)

func candidates() []core.Candidate {
	return []core.Candidate{
		{ExternalID: 1, Title: "Alien", Year: 2001, Overview: "A crew encounters something in deep space."},
		{ExternalID: 2, Title: "Aliens", Year: 1999, Overview: "The colony has gone dark."},
		{ExternalID: 3, Title: "Alien: Resurrection", Year: 2010, Overview: "Cloning experiments gone wrong."},
	}
}

func TestResolve_Ordinal(t *testing.T) {
	cs := candidates()

	got := Resolve(core.SelectionRef{Kind: core.RefOrdinal, Value: "2"}, cs)
	if got == nil || got.ExternalID != 2 {
		t.Fatalf("ordinal 2 should resolve to second candidate, got %+v", got)
	}

	// Out-of-range ordinals fall back to the first candidate, never nil.
	got = Resolve(core.SelectionRef{Kind: core.RefOrdinal, Value: "99"}, cs)
	if got == nil || got.ExternalID != 1 {
		t.Fatalf("out-of-range ordinal should fall back to first, got %+v", got)
	}

	got = Resolve(core.SelectionRef{Kind: core.RefOrdinal, Value: "not a number"}, cs)
	if got == nil || got.ExternalID != 1 {
		t.Fatalf("unparseable ordinal should fall back to first, got %+v", got)
	}
}

func TestResolve_Year(t *testing.T) {
	cs := candidates()

	got := Resolve(core.SelectionRef{Kind: core.RefYear, Value: "1999"}, cs)
	if got == nil || got.ExternalID != 2 {
		t.Fatalf("year 1999 should resolve regardless of position, got %+v", got)
	}

	got = Resolve(core.SelectionRef{Kind: core.RefYear, Value: "1985"}, cs)
	if got == nil || got.ExternalID != 1 {
		t.Fatalf("missing year should fall back to first, got %+v", got)
	}
}

func TestResolve_TitleAndKeyword(t *testing.T) {
	cs := candidates()

	got := Resolve(core.SelectionRef{Kind: core.RefTitle, Value: "resurrection"}, cs)
	if got == nil || got.ExternalID != 3 {
		t.Fatalf("title substring should match case-insensitively, got %+v", got)
	}

	// Title misses signal genuine ambiguity: nil, no fallback.
	if got := Resolve(core.SelectionRef{Kind: core.RefTitle, Value: "predator"}, cs); got != nil {
		t.Fatalf("title miss should return nil, got %+v", got)
	}

	got = Resolve(core.SelectionRef{Kind: core.RefKeyword, Value: "colony"}, cs)
	if got == nil || got.ExternalID != 2 {
		t.Fatalf("keyword should match overview text, got %+v", got)
	}

	if got := Resolve(core.SelectionRef{Kind: core.RefKeyword, Value: "underwater"}, cs); got != nil {
		t.Fatalf("keyword miss should return nil, got %+v", got)
	}
}

func TestResolve_Edges(t *testing.T) {
	cs := candidates()

	if got := Resolve(core.SelectionRef{Kind: "mystery", Value: "?"}, cs); got == nil || got.ExternalID != 1 {
		t.Fatalf("unrecognized kind should default to first, got %+v", got)
	}

	if got := Resolve(core.SelectionRef{Kind: core.RefOrdinal, Value: "1"}, nil); got != nil {
		t.Fatalf("empty candidate list should resolve to nil, got %+v", got)
	}

	if got := Resolve(core.SelectionRef{Kind: core.RefTitle, Value: "   "}, cs); got != nil {
		t.Fatalf("blank title value should return nil, got %+v", got)
	}
}

package template

import (
	"bytes"
	"testing"
)

func TestParseNone(t *testing.T) {
	tpl := Parse(".")
	if !IsNone(tpl) {
		t.Fatal("expected Parse(\".\") to be None")
	}
}

func TestParseCanonical(t *testing.T) {
	tpl := Parse(`abc\1def`)
	if IsNone(tpl) {
		t.Fatal("unexpected None")
	}
	want := []Part{
		{Literal: []byte("abc")},
		{IsRef: true, Group: 1},
		{Literal: []byte("def")},
	}
	if len(tpl.Parts) != len(want) {
		t.Fatalf("got %d parts, want %d: %+v", len(tpl.Parts), len(want), tpl.Parts)
	}
	for i := range want {
		if want[i].IsRef != tpl.Parts[i].IsRef || want[i].Group != tpl.Parts[i].Group ||
			!bytes.Equal(want[i].Literal, tpl.Parts[i].Literal) {
			t.Errorf("part %d = %+v, want %+v", i, tpl.Parts[i], want[i])
		}
	}
}

func TestParseEscapedBackslash(t *testing.T) {
	tpl := Parse(`a\\b`)
	if len(tpl.Parts) != 1 || !bytes.Equal(tpl.Parts[0].Literal, []byte(`a\b`)) {
		t.Errorf("got %+v", tpl.Parts)
	}
}

func TestParseUnknownEscapePassesThrough(t *testing.T) {
	tpl := Parse(`a\qb`)
	if len(tpl.Parts) != 1 || !bytes.Equal(tpl.Parts[0].Literal, []byte(`a\qb`)) {
		t.Errorf("got %+v", tpl.Parts)
	}
}

func TestParseTrailingBackslash(t *testing.T) {
	tpl := Parse(`abc\`)
	if len(tpl.Parts) != 1 || !bytes.Equal(tpl.Parts[0].Literal, []byte(`abc\`)) {
		t.Errorf("got %+v", tpl.Parts)
	}
}

func TestApplyBackrefs(t *testing.T) {
	tpl := Parse(`\1.md`)
	subject := []byte("notes.txt")
	// whole match at [0,9), group 1 ("notes") at [0,5)
	ovector := []int{0, 9, 0, 5}
	got := Apply(tpl, ovector, subject)
	if string(got) != "notes.md" {
		t.Errorf("got %q, want %q", got, "notes.md")
	}
}

func TestApplyDanglingBackrefIsEmpty(t *testing.T) {
	tpl := Parse(`[\5]`)
	subject := []byte("ab")
	// only group 0 (whole match) and group 1 present; group 5 doesn't exist
	ovector := []int{0, 2, 0, 1}
	got := Apply(tpl, ovector, subject)
	if string(got) != "[]" {
		t.Errorf("got %q, want %q", got, "[]")
	}
}

func TestApplyUnmatchedOptionalGroupIsEmpty(t *testing.T) {
	tpl := Parse(`x\1y`)
	subject := []byte("a")
	ovector := []int{0, 1, -1, -1}
	got := Apply(tpl, ovector, subject)
	if string(got) != "xy" {
		t.Errorf("got %q, want %q", got, "xy")
	}
}

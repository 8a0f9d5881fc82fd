package config

import (
	"strings"
	"testing"
)

func TestWriteTOMLRoundTripsVisibleFields(t *testing.T) {
	cfg, err := Parse([]byte("/foo/ baz\n-/caller/\n/x/g y\n"))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	out, err := WriteTOML(cfg)
	if err != nil {
		t.Fatalf("WriteTOML error: %v", err)
	}
	s := string(out)
	for _, want := range []string{"pattern = \"foo\"", "replace = \"baz\"", "caller = \"caller\""} {
		if !strings.Contains(s, want) {
			t.Errorf("dump missing %q in:\n%s", want, s)
		}
	}
}

func TestToDumpMarksDefaultContext(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	d := ToDump(cfg)
	if len(d.Contexts) != 1 || !d.Contexts[0].Default {
		t.Fatalf("expected single default context dump, got %+v", d.Contexts)
	}
}

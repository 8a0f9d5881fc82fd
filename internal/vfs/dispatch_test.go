package vfs

import (
	"os"
	"testing"

	"rewritefs/internal/config"
	"rewritefs/internal/engine"
	"rewritefs/internal/guard"
)

func mustDispatcher(t *testing.T, src string) (*Dispatcher, *Loopback) {
	t.Helper()
	cfg, err := config.Parse([]byte(src))
	if err != nil {
		t.Fatalf("config.Parse error: %v", err)
	}
	lb := NewLoopback()
	return NewDispatcher(engine.New(cfg), &guard.Guard{}, lb, nil), lb
}

func TestDispatcherRewritesPathBeforeGetattr(t *testing.T) {
	d, lb := mustDispatcher(t, "/^old$/ new\n")
	lb.Put("new", []byte("hi"), 0o644)

	fi, err := d.Getattr(Request{PID: os.Getpid()}, "old")
	if err != nil {
		t.Fatalf("Getattr error: %v", err)
	}
	if fi.Size() != 2 {
		t.Errorf("Size = %d, want 2", fi.Size())
	}
}

func TestDispatcherExcludeBypassesEngine(t *testing.T) {
	es, err := NewExcludeSet([]string{"old"})
	if err != nil {
		t.Fatalf("NewExcludeSet error: %v", err)
	}
	cfg, err := config.Parse([]byte("/^old$/ new\n"))
	if err != nil {
		t.Fatalf("config.Parse error: %v", err)
	}
	lb := NewLoopback()
	lb.Put("old", []byte("hi"), 0o644)
	d := NewDispatcher(engine.New(cfg), &guard.Guard{}, lb, es)

	if _, err := d.Getattr(Request{PID: os.Getpid()}, "old"); err != nil {
		t.Fatalf("expected excluded path to resolve unrewritten: %v", err)
	}
}

// TestDispatcherExcludeStripsLeadingSlash guards against sending Ops an
// absolute path on the exclude bypass: Passthrough resolves paths via
// *at() against a held directory descriptor, which ignores that
// descriptor entirely for an absolute path argument, so an excluded
// request must be relativized the same as a rewritten one.
func TestDispatcherExcludeStripsLeadingSlash(t *testing.T) {
	es, err := NewExcludeSet([]string{"/old"})
	if err != nil {
		t.Fatalf("NewExcludeSet error: %v", err)
	}
	cfg, err := config.Parse([]byte(""))
	if err != nil {
		t.Fatalf("config.Parse error: %v", err)
	}
	lb := NewLoopback()
	lb.Put("old", []byte("hi"), 0o644)
	d := NewDispatcher(engine.New(cfg), &guard.Guard{}, lb, es)

	got := d.rewrite(Request{PID: os.Getpid()}, "/old")
	if got != "old" {
		t.Errorf("got %q, want %q (no leading slash)", got, "old")
	}
}

func TestDispatcherMkdirCreatesDirectory(t *testing.T) {
	d, lb := mustDispatcher(t, "")
	if err := d.Mkdir(Request{PID: os.Getpid(), UID: os.Getuid(), GID: os.Getgid(), Umask: 0o022}, "dir", 0o755); err != nil {
		t.Fatalf("Mkdir error: %v", err)
	}
	if _, err := lb.Getattr("dir"); err != nil {
		t.Errorf("expected dir to exist: %v", err)
	}
}

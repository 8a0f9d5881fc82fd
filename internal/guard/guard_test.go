package guard

import (
	"errors"
	"syscall"
	"testing"
)

func TestReadRunsFn(t *testing.T) {
	var g Guard
	called := false
	err := g.Read(func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !called {
		t.Error("expected fn to run")
	}
}

func TestReadPropagatesError(t *testing.T) {
	var g Guard
	sentinel := errors.New("boom")
	if err := g.Read(func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel error, got %v", err)
	}
}

// TestWriteNoopIdentityRestoresUmask impersonates the caller's own current
// euid/egid (a no-op switch that never requires elevated privilege) and
// verifies the caller's umask is in effect during fn and the previous
// umask is restored afterward.
func TestWriteNoopIdentityRestoresUmask(t *testing.T) {
	var g Guard
	before := syscall.Umask(0)
	syscall.Umask(before)

	caller := Caller{UID: syscall.Geteuid(), GID: syscall.Getegid(), Umask: 0o077}
	var sawUmaskDuring int
	err := g.Write(caller, func() error {
		sawUmaskDuring = syscall.Umask(0o077)
		syscall.Umask(0o077)
		return nil
	})
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if sawUmaskDuring != caller.Umask {
		t.Errorf("umask during Write = %#o, want caller's value %#o", sawUmaskDuring, caller.Umask)
	}
	after := syscall.Umask(0)
	syscall.Umask(after)
	if after != before {
		t.Errorf("umask not restored: got %#o, want %#o", after, before)
	}
}

func TestWritePropagatesFnError(t *testing.T) {
	var g Guard
	caller := Caller{UID: syscall.Geteuid(), GID: syscall.Getegid(), Umask: 0o022}
	sentinel := errors.New("boom")
	if err := g.Write(caller, func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel error, got %v", err)
	}
}

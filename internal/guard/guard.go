// Package guard serializes access to the process-wide effective
// credentials and umask, which must be temporarily impersonated to the
// calling user during any operation that creates or mutates a host-side
// file, so that ownership and mode bits honour the caller's identity
// rather than the filesystem daemon's own.
package guard

import (
	"fmt"
	"sync"
	"syscall"
)

// Caller is the identity a mutating operation should be impersonated as,
// supplied by the VFS runtime from the incoming request context.
type Caller struct {
	UID   int
	GID   int
	Umask int
}

// Guard is a process-wide reader/writer lock over effective uid, gid, and
// umask. There is exactly one Guard per process — these are OS-global
// properties, not per-goroutine — so the zero value is ready to use and
// callers share a single instance.
//
// Non-mutating operations take the read lock and run concurrently with
// each other. Mutating operations take the write lock exclusively, swap
// in the caller's identity for the duration of the call, and restore the
// previous identity before releasing — restoration happens even if the
// wrapped function panics.
type Guard struct {
	mu sync.RWMutex
}

// Read runs fn holding the reader lock. Use for operations that only
// observe the host filesystem: stat, access, readlink, reads, directory
// listing, xattr reads, statfs, lock.
func (g *Guard) Read(fn func() error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn()
}

// Write runs fn holding the writer lock, with the process's effective
// uid/gid/umask temporarily set to caller's values. Use for operations
// that create or mutate host filesystem entries on the caller's behalf:
// mknod, mkdir, symlink, create, xattr writes, path-based writes.
func (g *Guard) Write(caller Caller, fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	prevEUID := syscall.Geteuid()
	prevEGID := syscall.Getegid()
	prevUmask := syscall.Umask(caller.Umask)
	defer syscall.Umask(prevUmask)

	if err := syscall.Setegid(caller.GID); err != nil {
		return fmt.Errorf("guard: setegid(%d): %w", caller.GID, err)
	}
	defer syscall.Setegid(prevEGID)

	if err := syscall.Seteuid(caller.UID); err != nil {
		return fmt.Errorf("guard: seteuid(%d): %w", caller.UID, err)
	}
	defer syscall.Seteuid(prevEUID)

	return fn()
}

package vfs

import (
	"os"
	"strings"
	"time"

	"rewritefs/internal/engine"
	"rewritefs/internal/guard"
)

// Dispatcher routes one incoming request to Ops, after rewriting its
// path through the engine and wrapping the call in the credential guard.
// This is the layer an external kernel-request binding would call into
// (see SPEC_FULL.md §4.8): it never talks to the kernel itself, only to
// Ops and the two already-built internal packages.
type Dispatcher struct {
	Engine  *engine.Engine
	Guard   *guard.Guard
	Ops     Ops
	Exclude *ExcludeSet
}

// NewDispatcher wires an engine, guard, and operation layer into a
// dispatcher. exclude may be nil, meaning nothing bypasses the engine.
func NewDispatcher(e *engine.Engine, g *guard.Guard, ops Ops, exclude *ExcludeSet) *Dispatcher {
	return &Dispatcher{Engine: e, Guard: g, Ops: ops, Exclude: exclude}
}

// rewrite translates the absolute guestPath (leading "/" intact, as
// delivered by the kernel request) to the path Ops should use. An
// exclude-glob match bypasses the engine's rule matching but must still
// produce a host-relative path: Ops resolves everything relative to a
// held directory descriptor via the *at() syscall family, which ignores
// that descriptor entirely when handed an absolute path (openat(2)),
// so a bypassed path needs the same leading-slash strip Engine.Rewrite
// applies, just without consulting any rule.
func (d *Dispatcher) rewrite(req Request, guestPath string) string {
	if d.Exclude.Excluded(guestPath) {
		return hostRelative(guestPath)
	}
	return d.Engine.Rewrite(guestPath, req.PID)
}

// hostRelative strips guestPath's leading "/", mapping the root to ".",
// mirroring engine.Engine.Rewrite's passthrough convention so excluded
// and rewritten paths share one contract by the time they reach Ops.
func hostRelative(guestPath string) string {
	rel := strings.TrimPrefix(guestPath, "/")
	if rel == "" {
		return "."
	}
	return rel
}

func (d *Dispatcher) Getattr(req Request, path string) (os.FileInfo, error) {
	var fi os.FileInfo
	err := d.Guard.Read(func() error {
		var err error
		fi, err = d.Ops.Getattr(d.rewrite(req, path))
		return err
	})
	return fi, err
}

func (d *Dispatcher) Readlink(req Request, path string) (string, error) {
	var target string
	err := d.Guard.Read(func() error {
		var err error
		target, err = d.Ops.Readlink(d.rewrite(req, path))
		return err
	})
	return target, err
}

func (d *Dispatcher) Readdir(req Request, path string) ([]DirEntry, error) {
	var entries []DirEntry
	err := d.Guard.Read(func() error {
		var err error
		entries, err = d.Ops.Readdir(d.rewrite(req, path))
		return err
	})
	return entries, err
}

func (d *Dispatcher) Getxattr(req Request, path, name string) ([]byte, error) {
	var v []byte
	err := d.Guard.Read(func() error {
		var err error
		v, err = d.Ops.Getxattr(d.rewrite(req, path), name)
		return err
	})
	return v, err
}

func (d *Dispatcher) Listxattr(req Request, path string) ([]string, error) {
	var names []string
	err := d.Guard.Read(func() error {
		var err error
		names, err = d.Ops.Listxattr(d.rewrite(req, path))
		return err
	})
	return names, err
}

// Open is non-mutating for read-only handles and mutating when O_CREATE
// or a write mode is requested, matching the original's distinction
// between a read-locked open and a write-locked create.
func (d *Dispatcher) Open(req Request, path string, flags int, mode os.FileMode) (File, error) {
	var f File
	target := d.rewrite(req, path)
	if flags&(os.O_CREATE|os.O_WRONLY|os.O_RDWR) == 0 {
		err := d.Guard.Read(func() error {
			var err error
			f, err = d.Ops.Open(target, flags, mode)
			return err
		})
		return f, err
	}
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	err := d.Guard.Write(caller, func() error {
		var err error
		f, err = d.Ops.Open(target, flags, mode)
		return err
	})
	return f, err
}

func (d *Dispatcher) Mkdir(req Request, path string, mode os.FileMode) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Mkdir(d.rewrite(req, path), mode)
	})
}

func (d *Dispatcher) Unlink(req Request, path string) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Unlink(d.rewrite(req, path))
	})
}

func (d *Dispatcher) Rmdir(req Request, path string) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Rmdir(d.rewrite(req, path))
	})
}

func (d *Dispatcher) Symlink(req Request, oldpath, newpath string) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Symlink(oldpath, d.rewrite(req, newpath))
	})
}

func (d *Dispatcher) Rename(req Request, oldpath, newpath string) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Rename(d.rewrite(req, oldpath), d.rewrite(req, newpath))
	})
}

func (d *Dispatcher) Link(req Request, oldpath, newpath string) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Link(d.rewrite(req, oldpath), d.rewrite(req, newpath))
	})
}

func (d *Dispatcher) Chmod(req Request, path string, mode os.FileMode) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Chmod(d.rewrite(req, path), mode)
	})
}

func (d *Dispatcher) Chown(req Request, path string, uid, gid int) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Chown(d.rewrite(req, path), uid, gid)
	})
}

func (d *Dispatcher) Truncate(req Request, path string, size int64) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Truncate(d.rewrite(req, path), size)
	})
}

func (d *Dispatcher) Utimens(req Request, path string, atime, mtime time.Time) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Utimens(d.rewrite(req, path), atime, mtime)
	})
}

func (d *Dispatcher) Setxattr(req Request, path, name string, value []byte, flags int) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Setxattr(d.rewrite(req, path), name, value, flags)
	})
}

func (d *Dispatcher) Removexattr(req Request, path, name string) error {
	caller := guard.Caller{UID: req.UID, GID: req.GID, Umask: req.Umask}
	return d.Guard.Write(caller, func() error {
		return d.Ops.Removexattr(d.rewrite(req, path), name)
	})
}

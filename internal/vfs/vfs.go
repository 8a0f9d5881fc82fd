// Package vfs defines the contract between the rewrite engine and the
// host-side operation layer: given an already-rewritten, host-relative
// path and the identity of the requesting caller, perform one POSIX
// operation against the source directory descriptor.
//
// SPEC_FULL.md treats the actual kernel-binding runtime (the library that
// dispatches kernel requests to these handlers) as an external driver —
// this package is the boundary it would call into, specified by contract
// as the original spec requires, with one concrete implementation
// (Passthrough) and one in-memory test double (Loopback).
package vfs

import (
	"os"
	"time"
)

// Request carries the identity of the process that issued a VFS call, as
// the host runtime would expose it alongside the raw kernel request. The
// rewrite engine consults PID for caller-context matching; the guard
// consults UID/GID/Umask for mutating operations.
type Request struct {
	PID   int
	UID   int
	GID   int
	Umask int
}

// DirEntry is one entry returned by Readdir.
type DirEntry struct {
	Name string
	Mode os.FileMode
	Ino  uint64
}

// Ops is the set of host filesystem operations a rewrite target exposes.
// Every path argument is already host-relative (rewritten, with no
// leading slash) and resolved against the operation layer's own source
// directory descriptor — this package never sees guest paths or the
// engine's state.
//
// Implementations are not responsible for credential impersonation or
// locking; the caller (the dispatch layer) wraps mutating calls in
// guard.Guard.Write and non-mutating calls in guard.Guard.Read.
type Ops interface {
	Getattr(path string) (os.FileInfo, error)
	Readlink(path string) (string, error)
	Mkdir(path string, mode os.FileMode) error
	Unlink(path string) error
	Rmdir(path string) error
	Symlink(oldpath, newpath string) error
	Rename(oldpath, newpath string) error
	Link(oldpath, newpath string) error
	Chmod(path string, mode os.FileMode) error
	Chown(path string, uid, gid int) error
	Truncate(path string, size int64) error
	Utimens(path string, atime, mtime time.Time) error

	Open(path string, flags int, mode os.FileMode) (File, error)
	Readdir(path string) ([]DirEntry, error)

	Getxattr(path, name string) ([]byte, error)
	Setxattr(path, name string, value []byte, flags int) error
	Listxattr(path string) ([]string, error)
	Removexattr(path, name string) error
}

// File is an open host file handle, returned by Ops.Open and held by the
// runtime until the matching Close.
type File interface {
	ReadAt(buf []byte, offset int64) (int, error)
	WriteAt(buf []byte, offset int64) (int, error)
	Close() error
}

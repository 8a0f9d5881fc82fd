package vfs

import (
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Loopback is an in-memory Ops implementation used as a test double: it
// lets dispatch and engine tests exercise the full Ops contract without
// a real mounted filesystem or root privileges, the same role a fake
// in-memory filesystem plays in any of this pack's server test suites.
// Paths are NFC-normalized on every operation (via golang.org/x/text,
// already carried for internal/rxregex's "u" flag) so a test can assert
// that a rule compiled with "u" produced a path this double will
// actually recognize, regardless of which normalization form the test
// wrote it in.
type Loopback struct {
	mu    sync.Mutex
	nodes map[string]*loopbackNode
}

type loopbackNode struct {
	mode    os.FileMode
	data    []byte
	target  string // symlink target
	modTime time.Time
	xattrs  map[string][]byte
}

// NewLoopback returns an empty in-memory filesystem containing only the
// root directory.
func NewLoopback() *Loopback {
	return &Loopback{
		nodes: map[string]*loopbackNode{
			".": {mode: os.ModeDir | 0o755, modTime: time.Now()},
		},
	}
}

func key(path string) string {
	path = norm.NFC.String(path)
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return "."
	}
	return path
}

// Put seeds a regular file, for test setup.
func (l *Loopback) Put(path string, data []byte, mode os.FileMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nodes[key(path)] = &loopbackNode{mode: mode, data: append([]byte(nil), data...), modTime: time.Now()}
}

func (l *Loopback) Getattr(path string) (os.FileInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[key(path)]
	if !ok {
		return nil, os.ErrNotExist
	}
	return loopbackInfo{name: key(path), node: n}, nil
}

func (l *Loopback) Readlink(path string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[key(path)]
	if !ok || n.mode&os.ModeSymlink == 0 {
		return "", os.ErrInvalid
	}
	return n.target, nil
}

func (l *Loopback) Mkdir(path string, mode os.FileMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := key(path)
	if _, ok := l.nodes[k]; ok {
		return os.ErrExist
	}
	l.nodes[k] = &loopbackNode{mode: os.ModeDir | mode, modTime: time.Now()}
	return nil
}

func (l *Loopback) Unlink(path string) error    { return l.remove(path, false) }
func (l *Loopback) Rmdir(path string) error     { return l.remove(path, true) }

func (l *Loopback) remove(path string, dir bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := key(path)
	n, ok := l.nodes[k]
	if !ok {
		return os.ErrNotExist
	}
	if n.mode.IsDir() != dir {
		return os.ErrInvalid
	}
	delete(l.nodes, k)
	return nil
}

func (l *Loopback) Symlink(oldpath, newpath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := key(newpath)
	if _, ok := l.nodes[k]; ok {
		return os.ErrExist
	}
	l.nodes[k] = &loopbackNode{mode: os.ModeSymlink | 0o777, target: oldpath, modTime: time.Now()}
	return nil
}

func (l *Loopback) Rename(oldpath, newpath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ok, exists := key(oldpath), key(newpath)
	n, found := l.nodes[ok]
	if !found {
		return os.ErrNotExist
	}
	l.nodes[exists] = n
	delete(l.nodes, ok)
	return nil
}

func (l *Loopback) Link(oldpath, newpath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[key(oldpath)]
	if !ok {
		return os.ErrNotExist
	}
	cp := *n
	l.nodes[key(newpath)] = &cp
	return nil
}

func (l *Loopback) Chmod(path string, mode os.FileMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[key(path)]
	if !ok {
		return os.ErrNotExist
	}
	n.mode = (n.mode &^ os.ModePerm) | mode.Perm()
	return nil
}

func (l *Loopback) Chown(path string, uid, gid int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.nodes[key(path)]; !ok {
		return os.ErrNotExist
	}
	return nil
}

func (l *Loopback) Truncate(path string, size int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[key(path)]
	if !ok {
		return os.ErrNotExist
	}
	if int64(len(n.data)) > size {
		n.data = n.data[:size]
	} else {
		n.data = append(n.data, make([]byte, size-int64(len(n.data)))...)
	}
	return nil
}

func (l *Loopback) Utimens(path string, atime, mtime time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[key(path)]
	if !ok {
		return os.ErrNotExist
	}
	n.modTime = mtime
	return nil
}

func (l *Loopback) Open(path string, flags int, mode os.FileMode) (File, error) {
	l.mu.Lock()
	k := key(path)
	n, ok := l.nodes[k]
	if !ok {
		if flags&os.O_CREATE == 0 {
			l.mu.Unlock()
			return nil, os.ErrNotExist
		}
		n = &loopbackNode{mode: mode, modTime: time.Now()}
		l.nodes[k] = n
	}
	l.mu.Unlock()
	return &loopbackFile{l: l, node: n}, nil
}

func (l *Loopback) Readdir(path string) ([]DirEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prefix := key(path)
	if prefix == "." {
		prefix = ""
	} else {
		prefix += "/"
	}
	var entries []DirEntry
	for k, n := range l.nodes {
		if k == "." || !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := strings.TrimPrefix(k, prefix)
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		entries = append(entries, DirEntry{Name: rest, Mode: n.mode})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (l *Loopback) Getxattr(path, name string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[key(path)]
	if !ok || n.xattrs == nil {
		return nil, os.ErrNotExist
	}
	v, ok := n.xattrs[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return v, nil
}

func (l *Loopback) Setxattr(path, name string, value []byte, flags int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[key(path)]
	if !ok {
		return os.ErrNotExist
	}
	if n.xattrs == nil {
		n.xattrs = map[string][]byte{}
	}
	n.xattrs[name] = append([]byte(nil), value...)
	return nil
}

func (l *Loopback) Listxattr(path string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[key(path)]
	if !ok {
		return nil, os.ErrNotExist
	}
	names := make([]string, 0, len(n.xattrs))
	for name := range n.xattrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loopback) Removexattr(path, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	n, ok := l.nodes[key(path)]
	if !ok || n.xattrs == nil {
		return os.ErrNotExist
	}
	delete(n.xattrs, name)
	return nil
}

type loopbackFile struct {
	l    *Loopback
	node *loopbackNode
}

func (f *loopbackFile) ReadAt(buf []byte, offset int64) (int, error) {
	f.l.mu.Lock()
	defer f.l.mu.Unlock()
	if offset >= int64(len(f.node.data)) {
		return 0, os.ErrClosed
	}
	n := copy(buf, f.node.data[offset:])
	return n, nil
}

func (f *loopbackFile) WriteAt(buf []byte, offset int64) (int, error) {
	f.l.mu.Lock()
	defer f.l.mu.Unlock()
	end := offset + int64(len(buf))
	if end > int64(len(f.node.data)) {
		grown := make([]byte, end)
		copy(grown, f.node.data)
		f.node.data = grown
	}
	copy(f.node.data[offset:], buf)
	return len(buf), nil
}

func (f *loopbackFile) Close() error { return nil }

type loopbackInfo struct {
	name string
	node *loopbackNode
}

func (i loopbackInfo) Name() string       { return i.name }
func (i loopbackInfo) Size() int64        { return int64(len(i.node.data)) }
func (i loopbackInfo) Mode() os.FileMode  { return i.node.mode }
func (i loopbackInfo) ModTime() time.Time { return i.node.modTime }
func (i loopbackInfo) IsDir() bool        { return i.node.mode.IsDir() }
func (i loopbackInfo) Sys() any           { return nil }

package vfs

import (
	"os"
	"testing"
)

func TestLoopbackPutAndGetattr(t *testing.T) {
	l := NewLoopback()
	l.Put("dir/file.txt", []byte("hello"), 0o644)

	fi, err := l.Getattr("dir/file.txt")
	if err != nil {
		t.Fatalf("Getattr error: %v", err)
	}
	if fi.Size() != 5 {
		t.Errorf("Size = %d, want 5", fi.Size())
	}
}

func TestLoopbackMkdirAndReaddir(t *testing.T) {
	l := NewLoopback()
	if err := l.Mkdir("d", 0o755); err != nil {
		t.Fatalf("Mkdir error: %v", err)
	}
	l.Put("d/a.txt", []byte("a"), 0o644)
	l.Put("d/b.txt", []byte("b"), 0o644)

	entries, err := l.Readdir("d")
	if err != nil {
		t.Fatalf("Readdir error: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "a.txt" || entries[1].Name != "b.txt" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestLoopbackOpenCreateWriteRead(t *testing.T) {
	l := NewLoopback()
	f, err := l.Open("new.txt", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteAt([]byte("hello world"), 0); err != nil {
		t.Fatalf("WriteAt error: %v", err)
	}
	buf := make([]byte, 5)
	n, err := f.ReadAt(buf, 0)
	if err != nil {
		t.Fatalf("ReadAt error: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Errorf("got %q, want %q", buf[:n], "hello")
	}
}

func TestLoopbackSymlinkAndReadlink(t *testing.T) {
	l := NewLoopback()
	if err := l.Symlink("target", "link"); err != nil {
		t.Fatalf("Symlink error: %v", err)
	}
	got, err := l.Readlink("link")
	if err != nil {
		t.Fatalf("Readlink error: %v", err)
	}
	if got != "target" {
		t.Errorf("got %q, want %q", got, "target")
	}
}

func TestLoopbackRenameMovesNode(t *testing.T) {
	l := NewLoopback()
	l.Put("a.txt", []byte("x"), 0o644)
	if err := l.Rename("a.txt", "b.txt"); err != nil {
		t.Fatalf("Rename error: %v", err)
	}
	if _, err := l.Getattr("a.txt"); err == nil {
		t.Error("expected a.txt to no longer exist")
	}
	if _, err := l.Getattr("b.txt"); err != nil {
		t.Errorf("expected b.txt to exist: %v", err)
	}
}

func TestLoopbackXattrRoundTrip(t *testing.T) {
	l := NewLoopback()
	l.Put("f", []byte("x"), 0o644)
	if err := l.Setxattr("f", "user.tag", []byte("v"), 0); err != nil {
		t.Fatalf("Setxattr error: %v", err)
	}
	v, err := l.Getxattr("f", "user.tag")
	if err != nil {
		t.Fatalf("Getxattr error: %v", err)
	}
	if string(v) != "v" {
		t.Errorf("got %q, want %q", v, "v")
	}
	names, err := l.Listxattr("f")
	if err != nil || len(names) != 1 || names[0] != "user.tag" {
		t.Errorf("Listxattr = %v, %v", names, err)
	}
}

func TestLoopbackUnicodeNormalizedKeys(t *testing.T) {
	l := NewLoopback()
	composed := "caf\u00e9"    // NFC: single precomposed rune U+00E9
	decomposed := "cafe\u0301" // NFD: "e" + combining acute accent U+0301
	l.Put(decomposed, []byte("x"), 0o644)
	if _, err := l.Getattr(composed); err != nil {
		t.Errorf("expected normalization-insensitive lookup to succeed: %v", err)
	}
}

package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"benchcat/internal/failure"
)

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mp4")
	dst := filepath.Join(dir, "dst.mp4")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFileVerified(filepath.Join(dir, "nonexistent"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestMoveFileRenames(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "sample.mp4")
	dst := filepath.Join(dir, "Ours.mp4")
	if err := os.WriteFile(src, []byte("frames"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile returned error: %v", err)
	}
	if Exists(src) || !IsRegularFile(dst) {
		t.Fatal("expected file to move")
	}
}

func TestMoveFileFallsBackToCopyAcrossDevices(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp4")
	dst := filepath.Join(dir, "b.mp4")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	original := renameFunc
	renameFunc = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	t.Cleanup(func() { renameFunc = original })

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile returned error: %v", err)
	}
	if Exists(src) {
		t.Fatal("expected source removed after copy")
	}
	got, err := os.ReadFile(dst)
	if err != nil || string(got) != "payload" {
		t.Fatalf("unexpected destination %q (%v)", got, err)
	}
}

func TestMoveFilePropagatesOtherErrors(t *testing.T) {
	dir := t.TempDir()
	err := MoveFile(filepath.Join(dir, "missing.mp4"), filepath.Join(dir, "x.mp4"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLockDirIsExclusive(t *testing.T) {
	dir := t.TempDir()
	first, err := LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir returned error: %v", err)
	}
	if first.Path() != filepath.Join(dir, LockFileName) {
		t.Fatalf("unexpected lock path %q", first.Path())
	}
	if _, err := LockDir(dir); !errors.Is(err, failure.ErrLocked) {
		t.Fatalf("expected locked error, got %v", err)
	}
	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock returned error: %v", err)
	}
	second, err := LockDir(dir)
	if err != nil {
		t.Fatalf("LockDir after unlock returned error: %v", err)
	}
	_ = second.Unlock()
}

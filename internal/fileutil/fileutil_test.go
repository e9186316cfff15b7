package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"curator/internal/fileutil"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestMoveFileRelocatesAndCreatesParents(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.zip")
	dst := filepath.Join(dir, "archive", "Archives", "a.zip")
	writeFile(t, src, "payload")

	if err := fileutil.MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("source should be gone after move")
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected destination content %q", data)
	}
}

func TestMoveFileRefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.zip")
	dst := filepath.Join(dir, "archive", "a.zip")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	err := fileutil.MoveFile(src, dst)
	if !errors.Is(err, fileutil.ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}
	if _, statErr := os.Stat(src); statErr != nil {
		t.Fatalf("source must remain in place after refused move: %v", statErr)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "old" {
		t.Fatal("destination must not be overwritten")
	}
}

func TestMoveDirRelocatesTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "project")
	writeFile(t, filepath.Join(src, "nested", "file.txt"), "x")

	dst := filepath.Join(dir, "archive", "Folders", "project")
	if err := fileutil.MoveDir(src, dst); err != nil {
		t.Fatalf("MoveDir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "nested", "file.txt")); err != nil {
		t.Fatalf("moved tree incomplete: %v", err)
	}
}

func TestCopyFilePreservesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.bin")
	dst := filepath.Join(dir, "out.bin")
	writeFile(t, src, "some bytes")

	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "some bytes" {
		t.Fatalf("copy mismatch: %q err=%v", data, err)
	}
}

package ioutils

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"LAB-PC-01", "LAB-PC-01"},
		{"LAB-PC:01", "LAB-PC_01"},
		{"host<with>brackets", "host_with_brackets"},
		{"host/with\\slashes", "host_with_slashes"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"trailing spaces   ", "trailing spaces"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	if err := WriteFileAtomic(ctx, path, []byte("first")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := WriteFileAtomic(ctx, path, []byte("second")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	data, err := ReadFile(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("contents = %q, want %q", data, "second")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0444 != 0444 {
		t.Errorf("mode = %v, want readable by all", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestWriteFileAtomic_FailureLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	// Renaming a file over a non-empty directory fails.
	target := filepath.Join(dir, "settings.json")
	if err := os.MkdirAll(filepath.Join(target, "child"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(context.Background(), target, []byte("x")); err == nil {
		t.Fatal("WriteFileAtomic() should fail")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %d entries", len(entries))
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile() error = %v, want fs.ErrNotExist", err)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "f")
	if err := WriteFileAtomic(ctx, path, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("WriteFileAtomic() error = %v", err)
	}
	if Exists(path) {
		t.Error("file created despite cancelled context")
	}
	if _, err := ReadFile(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("ReadFile() error = %v", err)
	}
}

package ioutils

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots = regexp.MustCompile(`\.+$`)
	runsOfSpaces = regexp.MustCompile(`\s+`)
)

// ReadFile reads the whole file at path.
//
// A missing file is reported with an error matching fs.ErrNotExist, so
// callers can tell absence apart from other failures without a separate
// stat call.
func ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// WriteFileAtomic replaces the file at path with data.
//
// The data is written to a uniquely named temporary file in the same
// directory, synced, and renamed over path. Readers see either the previous
// contents or the new contents in full, and concurrent writers leave the
// contents of exactly one of them. The temporary file is removed on failure.
//
// The parent directory is created with mode 0755 if needed; the file ends up
// with mode 0644.
func WriteFileAtomic(ctx context.Context, path string, data []byte) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	defer tmp.Close()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(0644); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("LAB-PC:01")  // Returns "LAB-PC_01"
//	SanitizeFileName("host...")    // Returns "host"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = runsOfSpaces.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

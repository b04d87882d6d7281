package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	ioutils "github.com/BIOS9/AutoMarkCheckCrossplatform/internal/io"
)

const (
	fileExt    = ".log"
	dateLayout = "2006-01-02"
)

// Options configures a file-backed Logger.
type Options struct {
	// Dir holds the daily log files. It is created if missing.
	Dir string
	// Host prefixes the file name. It is sanitized before use.
	Host string
	// Level is the minimum level written.
	Level Level
	// MaxAgeDays removes log files older than this many days when the logger
	// is opened. Zero or negative keeps everything.
	MaxAgeDays int
	// Console, when set, receives a copy of every record.
	Console io.Writer
	// Now overrides the clock used for file naming and pruning.
	Now func() time.Time
}

// FileName returns the daily log file name for host on day.
func FileName(host string, day time.Time) string {
	host = ioutils.SanitizeFileName(host)
	if host == "" {
		host = "automarkcheck"
	}
	return host + "-" + day.Format(dateLayout) + fileExt
}

// Open prunes expired files in opts.Dir and returns a Logger appending to
// today's file.
func Open(opts Options) (*Logger, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	created := !ioutils.Exists(opts.Dir)
	if err := ioutils.EnsureDir(opts.Dir); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	removed, pruneErr := Prune(opts.Dir, opts.MaxAgeDays, now())

	path := filepath.Join(opts.Dir, FileName(opts.Host, now()))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	var w io.Writer = f
	if opts.Console != nil {
		w = io.MultiWriter(f, opts.Console)
	}

	l := New(w, opts.Level)
	l.closer = f

	const source = "AutoMarkCheck.Logging.Open"
	if created {
		l.Log(LevelDebug, source, "Created log directory "+opts.Dir+".", nil)
	}
	for _, name := range removed {
		l.Log(LevelDebug, source, "Removed expired log file "+name+".", nil)
	}
	if pruneErr != nil {
		l.Log(LevelWarning, source, "Failed to remove expired log files.", pruneErr)
	}
	return l, nil
}

// Prune deletes log files in dir that are more than maxAgeDays days older
// than now and returns the names it removed. The age of a file is taken from
// the date in its name, or from its modification time when the name carries
// none.
func Prune(dir string, maxAgeDays int, now time.Time) ([]string, error) {
	if maxAgeDays <= 0 {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	cutoff := startOfDay(now).AddDate(0, 0, -maxAgeDays)

	var removed []string
	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}

		day, ok := fileDay(entry.Name())
		if !ok {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			day = startOfDay(info.ModTime())
		}
		if !day.Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		removed = append(removed, entry.Name())
	}
	return removed, firstErr
}

func fileDay(name string) (time.Time, bool) {
	base := strings.TrimSuffix(name, fileExt)
	if len(base) < len(dateLayout) {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(dateLayout, base[len(base)-len(dateLayout):], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

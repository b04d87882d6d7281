package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/config"
	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/logging"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := (&app{}).execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// syncBuffer is a bytes.Buffer safe to read while a command writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestShow_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	out, stderr, err := run(t, "--file", path, "show")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if !strings.Contains(out, "GradeCheckInterval") || !strings.Contains(out, "300") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(stderr, "does not exist") {
		t.Errorf("expected a warning about the missing file, stderr = %q", stderr)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("settings file not created: %v", err)
	}
}

func TestShow_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	out, _, err := run(t, "--file", path, "--json", "show")
	if err != nil {
		t.Fatal(err)
	}

	var got config.Settings
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not settings JSON: %v\n%s", err, out)
	}
	if got != *config.DefaultSettings() {
		t.Errorf("got %+v, want defaults", got)
	}
}

func TestShow_SelectedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	out, _, err := run(t, "--file", path, "show", "loglevel")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "LogLevel  INFO" {
		t.Errorf("output = %q", out)
	}

	if _, _, err := run(t, "--file", path, "show", "Bogus"); !errors.Is(err, config.ErrUnknownField) {
		t.Errorf("unknown field error = %v", err)
	}
}

func TestShow_JSONSelectedFieldsUseCanonicalNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	out, _, err := run(t, "--file", path, "--json", "show", "loglevel", "GRADECHECKINTERVAL")
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := map[string]string{"LogLevel": "INFO", "GradeCheckInterval": "300"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q (output %v)", k, got[k], v, got)
		}
	}
}

func TestSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	if _, _, err := run(t, "--file", path, "set", "GradeCheckInterval=600", "LogLevel=debug", "CoursesPublic=true"); err != nil {
		t.Fatalf("set error = %v", err)
	}

	got, err := config.NewStore(path, nil).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got.GradeCheckInterval != 600 || got.LogLevel != logging.LevelDebug || !got.CoursesPublic {
		t.Errorf("saved settings = %+v", *got)
	}
}

func TestSet_InvalidLeavesFileUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	if _, _, err := run(t, "--file", path, "set", "MaxLogAgeDays=7"); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(path)

	_, _, err := run(t, "--file", path, "set", "GradeCheckInterval=10", "MaxLogAgeDays=soon")
	if !errors.Is(err, config.ErrInvalidValue) {
		t.Fatalf("error = %v, want ErrInvalidValue", err)
	}

	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("failed set should not write the file")
	}
}

func TestSet_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := run(t, "--file", path, "set", "CoursesPublic=true")
	if !errors.Is(err, config.ErrCorrupt) {
		t.Errorf("error = %v, want ErrCorrupt", err)
	}
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := run(t, "--file", path, "reset"); err != nil {
		t.Fatal(err)
	}
	got, err := config.NewStore(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() after reset error = %v", err)
	}
	if *got != *config.DefaultSettings() {
		t.Errorf("got %+v, want defaults", *got)
	}
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")

	out, _, err := run(t, "--file", path, "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("path = %q, want %q", strings.TrimSpace(out), path)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("path should not create the settings file")
	}
}

func TestLogDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)
	logDir := filepath.Join(dir, "logs")

	if _, _, err := run(t, "--file", path, "set", "CustomHostname=lab:01", "LogLevel=DEBUG"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := run(t, "--file", path, "--log-dir", logDir, "set", "MaxLogAgeDays=5"); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("log directory not created: %v", err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "lab_01-") {
		t.Fatalf("log files = %v", entries)
	}

	data, err := os.ReadFile(filepath.Join(logDir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Successfully saved settings.") {
		t.Errorf("log file should contain DEBUG save records, got %q", data)
	}
}

func TestLogDir_ClosedWhenCommandFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.FileName)

	a := &app{}
	err := a.execute(context.Background(), []string{"--file", path, "--log-dir", filepath.Join(dir, "logs"), "set", "Bogus=1"}, io.Discard, io.Discard)
	if !errors.Is(err, config.ErrUnknownField) {
		t.Fatalf("error = %v, want ErrUnknownField", err)
	}
	if err := a.logger.Close(); !errors.Is(err, os.ErrClosed) {
		t.Errorf("log file still open after a failed command: second Close() = %v", err)
	}
}

func TestWatch_PrintsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- (&app{}).execute(ctx, []string{"--file", path, "watch"}, &out, io.Discard)
	}()

	other := config.NewStore(path, nil)
	changed := config.DefaultSettings()
	changed.GradeCheckInterval = 900

	deadline := time.Now().Add(5 * time.Second)
	for {
		// The watcher starts after the first print; keep saving until it reports.
		s := out.String()
		if i := strings.Index(s, "\n# "); i >= 0 && strings.Contains(s[i:], "900") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("change not printed, output = %q", s)
		}
		if strings.Contains(s, "GradeCheckInterval") {
			if err := other.Save(context.Background(), changed); err != nil {
				t.Fatal(err)
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestPruneLogs(t *testing.T) {
	logDir := t.TempDir()
	expired := filepath.Join(logDir, "lab-2000-01-01.log")
	if err := os.WriteFile(expired, []byte("old\n"), 0644); err != nil {
		t.Fatal(err)
	}

	a := &app{logDir: logDir, logger: logging.Discard()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.pruneLogs(ctx, 10*time.Millisecond, func() int { return 3 })
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(expired); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expired log file was not pruned")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	<-done
}

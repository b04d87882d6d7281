package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/logging"
)

const (
	sourceWatch = "AutoMarkCheck.Settings.Watch"

	// Saves arrive as a burst of create/write events; wait for it to settle.
	watchDebounce = 100 * time.Millisecond
)

// Change is delivered by Watch after the settings file changes on disk.
// Exactly one of Settings and Err is set.
type Change struct {
	Settings *Settings
	Err      error
}

// Watch reloads the settings file whenever it is written or replaced and
// sends the result on the returned channel. Removal of the file is ignored.
// The channel is closed once ctx is done.
//
// The parent directory is watched rather than the file itself, since Save
// replaces the file by rename.
func (s *Store) Watch(ctx context.Context) (<-chan Change, error) {
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %q: %w", filepath.Dir(abs), err)
	}

	s.logger.Log(logging.LevelDebug, sourceWatch, fmt.Sprintf("Watching %q for changes.", abs), nil)

	out := make(chan Change)
	go s.watch(ctx, w, filepath.Base(abs), out)
	return out, nil
}

func (s *Store) watch(ctx context.Context, w *fsnotify.Watcher, name string, out chan<- Change) {
	defer close(out)
	defer w.Close()

	send := func(c Change) bool {
		select {
		case out <- c:
			return true
		case <-ctx.Done():
			return false
		}
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			timer.Reset(watchDebounce)
			pending = true

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Log(logging.LevelWarning, sourceWatch, "File watcher reported an error.", err)
			if !send(Change{Err: err}) {
				return
			}

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false

			settings, err := s.Load(ctx)
			if err != nil {
				if !send(Change{Err: err}) {
					return
				}
				continue
			}
			s.logger.Log(logging.LevelInfo, sourceWatch, "Settings file changed, reloaded settings.", nil)
			if !send(Change{Settings: settings}) {
				return
			}
		}
	}
}

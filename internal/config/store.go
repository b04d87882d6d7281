package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	ioutils "github.com/BIOS9/AutoMarkCheckCrossplatform/internal/io"
	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/logging"
)

const (
	sourceSave = "AutoMarkCheck.Settings.Save"
	sourceLoad = "AutoMarkCheck.Settings.Load"
)

// ErrCorrupt is returned by Load when the settings file exists but cannot be
// decoded into Settings.
var ErrCorrupt = errors.New("settings file is corrupt")

// Logger is the logging collaborator used by Store.
type Logger interface {
	Log(level logging.Level, source, message string, err error)
}

// Store reads and writes Settings at a fixed path. It holds no state between
// calls; every Load re-reads the file.
type Store struct {
	path   string
	logger Logger
}

// NewStore returns a Store for the file at path. A nil logger discards
// everything.
func NewStore(path string, logger Logger) *Store {
	if path == "" {
		path = FileName
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Save writes settings to the settings file as indented JSON.
//
// Failures are logged at ERROR and returned.
func (s *Store) Save(ctx context.Context, settings *Settings) error {
	s.logger.Log(logging.LevelDebug, sourceSave, "Starting settings save.", nil)

	if err := s.save(ctx, settings); err != nil {
		s.logger.Log(logging.LevelError, sourceSave, fmt.Sprintf("Failed to save settings to %q.", s.path), err)
		return fmt.Errorf("save settings to %q: %w", s.path, err)
	}

	s.logger.Log(logging.LevelDebug, sourceSave, "Successfully saved settings.", nil)
	return nil
}

func (s *Store) save(ctx context.Context, settings *Settings) error {
	if settings == nil {
		return errors.New("nil settings")
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return ioutils.WriteFileAtomic(ctx, s.path, data)
}

// Load reads settings from the settings file.
//
// When the file does not exist, default settings are saved and returned.
// Keys missing from the file keep their default values. A file that cannot be
// decoded yields an error wrapping ErrCorrupt; I/O failures are returned
// wrapped with the path. Every failure is logged at ERROR.
func (s *Store) Load(ctx context.Context) (*Settings, error) {
	s.logger.Log(logging.LevelDebug, sourceLoad, "Starting settings load.", nil)

	data, err := ioutils.ReadFile(ctx, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Log(logging.LevelWarning, sourceLoad, "Settings file does not exist, loading default settings.", nil)
		settings := DefaultSettings()
		if err := s.Save(ctx, settings); err != nil {
			// Save has already logged the failure.
			return nil, err
		}
		return settings, nil
	}
	if err != nil {
		s.logger.Log(logging.LevelError, sourceLoad, fmt.Sprintf("Failed to load settings from %q.", s.path), err)
		return nil, fmt.Errorf("load settings from %q: %w", s.path, err)
	}

	settings, err := Decode(data)
	if err != nil {
		s.logger.Log(logging.LevelError, sourceLoad, fmt.Sprintf("Failed to load settings from %q.", s.path), err)
		return nil, fmt.Errorf("load settings from %q: %w", s.path, err)
	}

	s.logger.Log(logging.LevelDebug, sourceLoad, "Successfully loaded settings.", nil)
	return settings, nil
}

// Decode parses JSON settings onto the defaults. Decoding failures wrap
// ErrCorrupt, as does a document that is a bare null.
func Decode(data []byte) (*Settings, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, fmt.Errorf("%w: settings document is null", ErrCorrupt)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return settings, nil
}

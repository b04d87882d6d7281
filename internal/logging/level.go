package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrUnknownLevel is returned when a level name or number is not recognised.
var ErrUnknownLevel = errors.New("unknown log level")

// Level is the severity of a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

var levelNames = [...]string{
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
}

// Levels returns all levels from least to most severe.
func Levels() []Level {
	return []Level{LevelDebug, LevelInfo, LevelWarning, LevelError}
}

func (l Level) String() string {
	if l.valid() {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func (l Level) valid() bool {
	return l >= LevelDebug && l <= LevelError
}

// Next returns the following level, wrapping from ERROR back to DEBUG.
func (l Level) Next() Level {
	if !l.valid() || l == LevelError {
		return LevelDebug
	}
	return l + 1
}

// ParseLevel parses a level name case-insensitively. "WARN" is accepted as
// an alias of WARNING.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARN" {
		return LevelWarning, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// SlogLevel maps the level onto its log/slog equivalent.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MarshalText writes the level name.
func (l Level) MarshalText() ([]byte, error) {
	if !l.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText parses a level name.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// UnmarshalJSON accepts either a level name or the integer form (0 = DEBUG
// through 3 = ERROR) that older settings files were written with. A JSON null
// leaves the level unchanged.
func (l *Level) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if !Level(n).valid() {
			return fmt.Errorf("%w: %d", ErrUnknownLevel, n)
		}
		*l = Level(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownLevel, data)
	}
	return l.UnmarshalText([]byte(s))
}

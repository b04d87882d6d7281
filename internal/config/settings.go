package config

import (
	"os"
	"time"

	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/logging"
)

// FileName is the default settings file, relative to the working directory.
const FileName = "settings.json"

// Settings holds all configuration options.
type Settings struct {
	// Whether course names may be shown publicly in reports.
	CoursesPublic bool `json:"CoursesPublic"`

	// Seconds between grade checks.
	GradeCheckInterval int `json:"GradeCheckInterval"`

	// Host name reported by this machine; defaults to the OS host name.
	CustomHostname string `json:"CustomHostname"`

	// Logging
	LogLevel      logging.Level `json:"LogLevel"`
	MaxLogAgeDays int           `json:"MaxLogAgeDays"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		CoursesPublic:      false,
		GradeCheckInterval: 300, // 5 minutes
		CustomHostname:     machineName(),
		LogLevel:           logging.LevelInfo,
		MaxLogAgeDays:      3,
	}
}

func machineName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "localhost"
	}
	return host
}

// CheckInterval returns GradeCheckInterval as a duration.
func (s *Settings) CheckInterval() time.Duration {
	return time.Duration(s.GradeCheckInterval) * time.Second
}

// LogOptions converts settings to logging.Options for files kept in dir.
func (s *Settings) LogOptions(dir string) logging.Options {
	return logging.Options{
		Dir:        dir,
		Host:       s.CustomHostname,
		Level:      s.LogLevel,
		MaxAgeDays: s.MaxLogAgeDays,
	}
}

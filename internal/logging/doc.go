// Package logging provides the level-tagged logger used across AutoMarkCheck.
//
// Records are written through log/slog as text, each carrying the source tag
// of the operation that produced it:
//
//	logger := logging.New(os.Stderr, logging.LevelInfo)
//	logger.Log(logging.LevelWarning, "AutoMarkCheck.Settings.Load", "Settings file does not exist.", nil)
//
// # Log Files
//
// Open writes to one file per day, named after the host, and removes files
// older than the configured retention when it is called:
//
//	logger, err := logging.Open(logging.Options{
//	    Dir:        "logs",
//	    Host:       settings.CustomHostname,
//	    Level:      settings.LogLevel,
//	    MaxAgeDays: settings.MaxLogAgeDays,
//	})
//	defer logger.Close()
//
// # Levels
//
// Level has four values, DEBUG, INFO, WARNING and ERROR. It encodes to JSON
// as its name and decodes from either the name or its integer value.
package logging

// Package config provides settings persistence for AutoMarkCheck.
//
// This package handles:
//   - Default configuration values
//   - Loading and saving settings as a JSON file
//   - Name-addressed field access for the CLI and the editor
//   - Reloading when the file changes on disk
//
// # Default Settings
//
// Use DefaultSettings() to get the defaults:
//
//	settings := config.DefaultSettings()
//	// Grade check every 300 seconds
//	// INFO logging, logs kept for 3 days
//	// CustomHostname set to the machine name
//
// # Loading and Saving
//
//	store := config.NewStore(config.FileName, logger)
//
//	settings, err := store.Load(ctx)
//	switch {
//	case errors.Is(err, config.ErrCorrupt):
//	    // file exists but is not valid settings JSON
//	case err != nil:
//	    // I/O failure
//	}
//
//	settings.GradeCheckInterval = 600
//	err = store.Save(ctx, settings)
//
// Load writes the defaults to disk the first time it runs, so the file
// always exists afterwards. Keys missing from the file keep their defaults.
//
// # File Format
//
//	{
//	  "CoursesPublic": false,
//	  "GradeCheckInterval": 300,
//	  "CustomHostname": "LAB-PC-01",
//	  "LogLevel": "INFO",
//	  "MaxLogAgeDays": 3
//	}
//
// Save replaces the file by rename, so concurrent saves leave one complete
// value behind. There is no locking between writers: the last rename wins.
package config

// Package ioutils provides file system utilities.
//
// # Settings Files
//
// Settings are replaced atomically so a reader never observes a half-written
// file:
//
//	err := ioutils.WriteFileAtomic(ctx, "settings.json", data)
//
//	data, err := ioutils.ReadFile(ctx, "settings.json")
//	if errors.Is(err, fs.ErrNotExist) {
//	    // first run
//	}
//
// # Filename Sanitization
//
// Use SanitizeFileName to turn a host name into a safe log file prefix:
//
//	safe := ioutils.SanitizeFileName("LAB-PC:01") // Returns "LAB-PC_01"
package ioutils

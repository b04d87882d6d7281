package logging

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Entry is a single log record as seen by subscribers.
type Entry struct {
	Time    time.Time
	Level   Level
	Source  string
	Message string
	Err     error
}

// Logger writes level-tagged records through log/slog.
//
// The zero value is not usable; construct with New, Discard or Open.
type Logger struct {
	slog     *slog.Logger
	level    *slog.LevelVar
	minLevel Level

	closer io.Closer

	mu          sync.RWMutex
	subscribers []func(Entry)
}

// New returns a Logger writing text records to w at or above level.
func New(w io.Writer, level Level) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(level.SlogLevel())
	return &Logger{
		slog:     slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})),
		level:    lv,
		minLevel: level,
	}
}

// Discard returns a Logger that drops everything it is given. Subscribers
// still receive entries.
func Discard() *Logger {
	return New(io.Discard, LevelDebug)
}

// SetLevel changes the minimum level written from now on.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
	l.level.Set(level.SlogLevel())
}

// Level reports the current minimum level.
func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.minLevel
}

// OnEntry registers fn to be called for every entry at or above the current
// level. fn runs on the logging goroutine and must not block.
func (l *Logger) OnEntry(fn func(Entry)) {
	l.mu.Lock()
	l.subscribers = append(l.subscribers, fn)
	l.mu.Unlock()
}

// Log records message from source at level, attaching err when non-nil.
func (l *Logger) Log(level Level, source, message string, err error) {
	attrs := []slog.Attr{slog.String("source", source)}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	l.slog.LogAttrs(context.Background(), level.SlogLevel(), message, attrs...)

	l.mu.RLock()
	subs := l.subscribers
	floor := l.minLevel
	l.mu.RUnlock()
	if level < floor || len(subs) == 0 {
		return
	}
	e := Entry{Time: time.Now(), Level: level, Source: source, Message: message, Err: err}
	for _, fn := range subs {
		fn(e)
	}
}

// Close releases the log file opened by Open. It is a no-op for loggers
// created with New.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Package logger is the leveled logger shared by the server, the queue
// consumer and the sync jobs.
package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level is a logging threshold.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	ErrorLevel
)

// ParseLevel maps "debug", "info" and "error" to a Level.  Anything else
// is InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger is what the rest of the code depends on.
type Logger interface {
	Info(format string, v ...any)
	Error(format string, v ...any)
	Debug(format string, v ...any)
}

// DefaultLogger writes "[LEVEL] message" lines through the standard log
// package.
type DefaultLogger struct {
	level Level
	out   *log.Logger
}

// NewDefaultLogger logs to stderr with the standard flags.
func NewDefaultLogger(level Level) *DefaultLogger {
	return New(os.Stderr, level)
}

// New logs to w.
func New(w io.Writer, level Level) *DefaultLogger {
	return &DefaultLogger{level: level, out: log.New(w, "", log.LstdFlags)}
}

func (l *DefaultLogger) Info(format string, v ...any) {
	if l.level <= InfoLevel {
		l.out.Printf("[INFO] "+format, v...)
	}
}

func (l *DefaultLogger) Error(format string, v ...any) {
	if l.level <= ErrorLevel {
		l.out.Printf("[ERROR] "+format, v...)
	}
}

func (l *DefaultLogger) Debug(format string, v ...any) {
	if l.level <= DebugLevel {
		l.out.Printf("[DEBUG] "+format, v...)
	}
}

// Nop discards everything.  Tests use it where output does not matter.
var Nop Logger = New(io.Discard, ErrorLevel+1)

// Package logging wraps charmbracelet/log with the defaults used across the
// text store: level names from configuration, a replaceable package logger
// and loggers carried in contexts.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu            sync.RWMutex
	defaultLogger *log.Logger
)

// New creates a logger writing to stderr at the named level.
// Valid levels: "debug", "info", "warn", "error". Anything else means info.
func New(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// ParseLevel maps a level name to a log level. Unknown names map to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}

// Default returns the package logger.
func Default() *log.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New("info")
	}
	return defaultLogger
}

// SetDefault replaces the package logger.
func SetDefault(logger *log.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// SetLevel changes the level of the package logger.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}

// Discard returns a logger that writes nothing.
func Discard() *log.Logger {
	return NewWithWriter(io.Discard, "error")
}

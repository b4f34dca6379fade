package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewConsole returns a human-readable logger on stderr. Stdout is reserved
// for command output (and for the serve protocol stream), so logs must
// never land there.
func NewConsole(level string) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// NewFile returns a JSON logger appending to path, creating the parent
// directory if needed. Serve mode uses this: stdout carries the protocol
// stream and stderr belongs to whatever host process spawned us, so the
// log goes to a file. The returned closer owns the file handle.
func NewFile(path, level string) (zerolog.Logger, io.Closer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := zerolog.New(file).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()
	return logger, file, nil
}

// parseLevel falls back to info rather than erroring: a typo in the config
// should not take logging down with it.
func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	logDirPerm  os.FileMode = 0o750
	logFilePerm os.FileMode = 0o600

	// schemaVersion is the version of the JSON log record layout
	schemaVersion = 1
)

// ErrInvalidLevel is returned for an unrecognised log level name
var ErrInvalidLevel = errors.New("invalid log level")

// Config holds the logger setup parameters.
type Config struct {
	Level   slog.Level
	Console io.Writer // text records; defaults to os.Stderr
	LogFile string    // optional JSON log file, truncated on open
	RunID   string
	// Redactor, when set, redacts every record before it is written.
	Redactor TextRedactor
}

// GenerateRunID returns a new identifier for one errpromote run.
func GenerateRunID() string {
	return uuid.New().String()
}

// ParseLevel converts "debug", "info", "warn" or "error" into a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
	return level, nil
}

// Setup builds the logger described by cfg. The returned closer releases
// the log file; it is never nil.
func Setup(cfg Config) (*slog.Logger, io.Closer, error) {
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	destinations := []Destination{
		{Name: DestinationConsole, Handler: slog.NewTextHandler(console, &slog.HandlerOptions{Level: cfg.Level})},
	}
	var closer io.Closer = nopCloser{}

	if cfg.LogFile != "" {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return nil, nil, err
		}
		closer = f

		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		jsonHandler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: cfg.Level}).WithAttrs([]slog.Attr{
			slog.String("hostname", hostname),
			slog.Int("pid", os.Getpid()),
			slog.Int("schema_version", schemaVersion),
			slog.String("run_id", cfg.RunID),
		})
		destinations = append(destinations, Destination{Name: DestinationLogFile, Handler: jsonHandler})
	}

	var handler slog.Handler = NewFanout(destinations...)
	if cfg.Redactor != nil {
		handler = NewRedactingHandler(handler, cfg.Redactor)
	}
	return slog.New(handler), closer, nil
}

func openLogFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, logDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	// #nosec G304 - path is supplied by the operator on the command line
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, logFilePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

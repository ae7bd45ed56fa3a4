package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/isseis/go-errpromote/internal/color"
	"github.com/isseis/go-errpromote/internal/errcategory"
)

const (
	// File permissions for the error_log file
	logFilePerm = 0o600

	// lockRetryDelay is how often a busy error_log lock is retried
	lockRetryDelay = 10 * time.Millisecond
)

// DisplaySink writes reports to a console writer, one line each.
type DisplaySink struct {
	mu       sync.Mutex
	w        io.Writer
	colorize bool
}

// NewDisplaySink creates a display sink. When colorize is true the category
// label is wrapped in ANSI colours.
func NewDisplaySink(w io.Writer, colorize bool) *DisplaySink {
	return &DisplaySink{w: w, colorize: colorize}
}

// Name implements Sink
func (s *DisplaySink) Name() string { return "display" }

// Write implements Sink
func (s *DisplaySink) Write(_ context.Context, r Report) error {
	line := r.DisplayLine()
	if s.colorize {
		label := r.Event.Category.Label()
		line = color.ForCategory(r.Event.Category)(label) + strings.TrimPrefix(line, label)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, line+"\n")
	return err
}

// LogSink emits each report as a structured slog record.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log sink. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Name implements Sink
func (s *LogSink) Name() string { return "log" }

// Write implements Sink
func (s *LogSink) Write(ctx context.Context, r Report) error {
	s.logger.LogAttrs(ctx, LevelFor(r.Event.Category), "Legacy error reported",
		slog.String("category", r.Event.Category.String()),
		slog.String("error_message", r.Message),
		slog.String("file", r.Event.File),
		slog.Int("line", r.Event.Line),
		slog.Bool("in_runtime", r.Event.InRuntimeContext),
	)
	return nil
}

// LevelFor maps a category to a slog level: fatal categories log at Error,
// warnings at Warn and everything else at Info.
func LevelFor(c errcategory.Category) slog.Level {
	switch c {
	case errcategory.Warning, errcategory.CoreWarning, errcategory.CompileWarning, errcategory.UserWarning:
		return slog.LevelWarn
	}
	if c.Fatal() {
		return slog.LevelError
	}
	return slog.LevelInfo
}

// FileSink appends reports to the error_log file. Appends are serialised
// within the process by a mutex and across processes by an advisory file
// lock on "<path>.lock".
type FileSink struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

// NewFileSink creates a file sink for path.
func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	return &FileSink{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Name implements Sink
func (s *FileSink) Name() string { return "error_log" }

// Path returns the error_log path.
func (s *FileSink) Path() string { return s.path }

// Write implements Sink
func (s *FileSink) Write(ctx context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", s.lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("failed to lock %s", s.lock.Path())
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	// #nosec G304 - path comes from trusted configuration
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePerm)
	if err != nil {
		return fmt.Errorf("failed to open error_log: %w", err)
	}
	if _, err := f.WriteString(r.LogLine() + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write error_log: %w", err)
	}
	return f.Close()
}

// Publisher is the subset of *nats.Conn used by NATSSink.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes each report as a JSON document on a NATS subject.
type NATSSink struct {
	pub     Publisher
	subject string
}

// natsPayload is the JSON document published by NATSSink.
type natsPayload struct {
	Category  string    `json:"category"`
	Label     string    `json:"label"`
	Message   string    `json:"message"`
	File      string    `json:"file"`
	Line      int       `json:"line"`
	InRuntime bool      `json:"in_runtime"`
	Time      time.Time `json:"time"`
}

// NewNATSSink creates a NATS sink publishing on subject.
func NewNATSSink(pub Publisher, subject string) (*NATSSink, error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	if subject == "" {
		return nil, ErrEmptySubject
	}
	return &NATSSink{pub: pub, subject: subject}, nil
}

// Name implements Sink
func (s *NATSSink) Name() string { return "nats" }

// Write implements Sink
func (s *NATSSink) Write(_ context.Context, r Report) error {
	data, err := json.Marshal(natsPayload{
		Category:  r.Event.Category.String(),
		Label:     r.Event.Category.Label(),
		Message:   r.Message,
		File:      r.Event.File,
		Line:      r.Event.Line,
		InRuntime: r.Event.InRuntimeContext,
		Time:      r.Time.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", s.subject, err)
	}
	return nil
}

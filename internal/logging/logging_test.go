package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errHandler1 = errors.New("handler1 error")
	errHandler2 = errors.New("handler2 error")
)

// mockHandler is a test implementation of slog.Handler
type mockHandler struct {
	mu          sync.Mutex
	enabled     bool
	records     []slog.Record
	attrs       []slog.Attr
	groups      []string
	handleError error
}

func (m *mockHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return m.enabled
}

func (m *mockHandler) Handle(_ context.Context, r slog.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handleError != nil {
		return m.handleError
	}
	m.records = append(m.records, r.Clone())
	return nil
}

func (m *mockHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &mockHandler{enabled: m.enabled, attrs: append(append([]slog.Attr(nil), m.attrs...), attrs...), groups: m.groups}
}

func (m *mockHandler) WithGroup(name string) slog.Handler {
	return &mockHandler{enabled: m.enabled, attrs: m.attrs, groups: append(append([]string(nil), m.groups...), name)}
}

type maskRedactor struct{}

func (maskRedactor) RedactText(text string) string {
	return strings.ReplaceAll(text, "hunter2", "[REDACTED]")
}

func TestFanout(t *testing.T) {
	on := &mockHandler{enabled: true}
	off := &mockHandler{enabled: false}
	h := NewFanout(
		Destination{Name: DestinationConsole, Handler: on},
		Destination{Name: "missing"},
		Destination{Name: DestinationLogFile, Handler: off},
	)

	assert.Equal(t, []string{DestinationConsole, DestinationLogFile}, h.Names(), "nil handlers are skipped")
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	logger := slog.New(h)
	logger.Info("hello", "k", "v")
	assert.Len(t, on.records, 1)
	assert.Empty(t, off.records)

	assert.False(t, NewFanout(Destination{Name: "off", Handler: off}).Enabled(context.Background(), slog.LevelError))
}

func TestFanout_NamesFailingDestinations(t *testing.T) {
	healthy := &mockHandler{enabled: true}
	h := NewFanout(
		Destination{Name: DestinationConsole, Handler: &mockHandler{enabled: true, handleError: errHandler1}},
		Destination{Name: DestinationLogFile, Handler: &mockHandler{enabled: true, handleError: errHandler2}},
		Destination{Name: "healthy", Handler: healthy},
	)
	err := h.Handle(context.Background(), slog.Record{})
	assert.ErrorIs(t, err, errHandler1)
	assert.ErrorIs(t, err, errHandler2)
	assert.Len(t, healthy.records, 1, "a failing destination does not stop the others")

	var destErr *DestinationError
	require.ErrorAs(t, err, &destErr)
	assert.Equal(t, DestinationConsole, destErr.Name)
	assert.Contains(t, err.Error(), "log_file: handler2 error")
}

func TestFanout_WithAttrsAndGroup(t *testing.T) {
	h := NewFanout(
		Destination{Name: "a", Handler: &mockHandler{enabled: true}},
		Destination{Name: "b", Handler: &mockHandler{enabled: true}},
	)

	withAttrs, ok := h.WithAttrs([]slog.Attr{slog.String("run_id", "r1")}).(*Fanout)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, withAttrs.Names())
	for _, d := range withAttrs.destinations {
		assert.Equal(t, []slog.Attr{slog.String("run_id", "r1")}, d.Handler.(*mockHandler).attrs)
	}

	withGroup, ok := h.WithGroup("event").(*Fanout)
	require.True(t, ok)
	for _, d := range withGroup.destinations {
		assert.Equal(t, []string{"event"}, d.Handler.(*mockHandler).groups)
	}
}

func TestRedactingHandler(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(NewRedactingHandler(base, maskRedactor{})).With("token", "hunter2")

	logger.Info("login with hunter2",
		"password", "hunter2",
		"count", 3,
		"error", errors.New("bad password hunter2"),
		slog.Group("request", slog.String("body", "pw=hunter2")),
	)

	out := buf.String()
	assert.NotContains(t, out, "hunter2")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "login with [REDACTED]", rec["msg"])
	assert.Equal(t, "[REDACTED]", rec["token"])
	assert.Equal(t, "[REDACTED]", rec["password"])
	assert.EqualValues(t, 3, rec["count"])
	assert.Equal(t, "bad password [REDACTED]", rec["error"])
	assert.Equal(t, map[string]any{"body": "pw=[REDACTED]"}, rec["request"])
}

func TestRedactingHandler_NilRedactor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewTextHandler(&buf, nil), nil))
	logger.Info("hunter2", "k", "hunter2")
	assert.Equal(t, 2, strings.Count(buf.String(), "hunter2"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "verbose", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateRunID(t *testing.T) {
	a, b := GenerateRunID(), GenerateRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestSetup_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, closer, err := Setup(Config{Level: slog.LevelWarn, Console: &console})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer func() { assert.NoError(t, closer.Close()) }()

	logger.Info("dropped")
	logger.Warn("kept")
	assert.NotContains(t, console.String(), "dropped")
	assert.Contains(t, console.String(), "msg=kept")
}

func TestSetup_LogFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "run.json")

	logger, closer, err := Setup(Config{
		Level:    slog.LevelDebug,
		Console:  &console,
		LogFile:  path,
		RunID:    "run-1",
		Redactor: maskRedactor{},
	})
	require.NoError(t, err)

	logger.Debug("secret is hunter2")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(content, &rec))
	assert.Equal(t, "secret is [REDACTED]", rec["msg"])
	assert.Equal(t, "run-1", rec["run_id"])
	assert.EqualValues(t, os.Getpid(), rec["pid"])
	assert.EqualValues(t, schemaVersion, rec["schema_version"])
	assert.NotEmpty(t, rec["hostname"])
	assert.Contains(t, console.String(), "secret is [REDACTED]")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, logFilePerm, info.Mode().Perm())
}

func TestSetup_LogFileError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, _, err := Setup(Config{LogFile: filepath.Join(blocker, "run.json")})
	assert.Error(t, err)
}

func TestPreExecutionError(t *testing.T) {
	cause := errors.New("no such file")
	err := &PreExecutionError{
		Type:      ErrorTypeConfigParsing,
		Message:   "failed to load config",
		Component: "config",
		RunID:     "run-1",
		Err:       cause,
	}
	assert.Equal(t, "config_parsing_failed: failed to load config: no such file (component: config, run_id: run-1)", err.Error())
	assert.ErrorIs(t, err, cause)

	var buf bytes.Buffer
	HandlePreExecutionError(&buf, err)
	assert.Equal(t, "Error: config_parsing_failed\n  Component: config\n  Details: failed to load config: no such file\n  Run ID: run-1\n", buf.String())

	bare := &PreExecutionError{Type: ErrorTypeRequiredArgumentMissing, Message: "-config is required"}
	assert.Equal(t, "required_argument_missing: -config is required (component: , run_id: )", bare.Error())
	buf.Reset()
	HandlePreExecutionError(&buf, bare)
	assert.Equal(t, "Error: required_argument_missing\n  Details: -config is required\n", buf.String())
}

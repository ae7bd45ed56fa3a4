package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isseis/go-errpromote/internal/errcategory"
	"github.com/isseis/go-errpromote/internal/promotion"
)

var errPublish = errors.New("publish failed")

func testReport(c errcategory.Category) Report {
	return Report{
		Event:   promotion.Event{Category: c, Message: "Undefined index: id", File: "/srv/app/index.php", Line: 12, InRuntimeContext: true},
		Message: "Undefined index: id",
		Time:    fixedTime,
	}
}

func TestReport_Lines(t *testing.T) {
	r := testReport(errcategory.Notice)
	assert.Equal(t, "Notice: Undefined index: id in /srv/app/index.php on line 12", r.DisplayLine())
	assert.Equal(t, "[19-Oct-2026 10:00:00 UTC] PHP Notice:  Undefined index: id in /srv/app/index.php on line 12", r.LogLine())
}

func TestDisplaySink(t *testing.T) {
	tests := []struct {
		name     string
		colorize bool
		category errcategory.Category
		expected string
	}{
		{
			name:     "plain",
			category: errcategory.Warning,
			expected: "Warning: Undefined index: id in /srv/app/index.php on line 12\n",
		},
		{
			name:     "colored label",
			colorize: true,
			category: errcategory.Warning,
			expected: "\033[33mWarning\033[0m: Undefined index: id in /srv/app/index.php on line 12\n",
		},
		{
			name:     "colored fatal",
			colorize: true,
			category: errcategory.Error,
			expected: "\033[1;31mFatal error\033[0m: Undefined index: id in /srv/app/index.php on line 12\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			s := NewDisplaySink(&buf, tt.colorize)
			require.NoError(t, s.Write(context.Background(), testReport(tt.category)))
			assert.Equal(t, tt.expected, buf.String())
			assert.Equal(t, "display", s.Name())
		})
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewLogSink(logger)

	require.NoError(t, s.Write(context.Background(), testReport(errcategory.Warning)))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "Legacy error reported", rec["msg"])
	assert.Equal(t, "E_WARNING", rec["category"])
	assert.Equal(t, "Undefined index: id", rec["error_message"])
	assert.Equal(t, "/srv/app/index.php", rec["file"])
	assert.EqualValues(t, 12, rec["line"])
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelError, LevelFor(errcategory.Error))
	assert.Equal(t, slog.LevelError, LevelFor(errcategory.RecoverableError))
	assert.Equal(t, slog.LevelWarn, LevelFor(errcategory.UserWarning))
	assert.Equal(t, slog.LevelWarn, LevelFor(errcategory.CoreWarning))
	assert.Equal(t, slog.LevelInfo, LevelFor(errcategory.Notice))
	assert.Equal(t, slog.LevelInfo, LevelFor(errcategory.Deprecated))
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	s, err := NewFileSink(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	require.NoError(t, s.Write(context.Background(), testReport(errcategory.Warning)))
	require.NoError(t, s.Write(context.Background(), testReport(errcategory.Deprecated)))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[19-Oct-2026 10:00:00 UTC] PHP Warning:  Undefined index: id in /srv/app/index.php on line 12", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "[19-Oct-2026 10:00:00 UTC] PHP Deprecated:  "))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(logFilePerm), info.Mode().Perm())
}

func TestFileSink_ConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")

	// Two sinks on the same path behave like two processes sharing the file.
	a, err := NewFileSink(path)
	require.NoError(t, err)
	b, err := NewFileSink(path)
	require.NoError(t, err)

	const perWriter = 25
	var wg sync.WaitGroup
	for _, s := range []*FileSink{a, b} {
		wg.Add(1)
		go func(s *FileSink) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				r := testReport(errcategory.Notice)
				r.Message = fmt.Sprintf("message %d", i)
				assert.NoError(t, s.Write(context.Background(), r))
			}
		}(s)
	}
	wg.Wait()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	assert.Len(t, lines, 2*perWriter)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "[19-Oct-2026 10:00:00 UTC] PHP Notice:  message "), line)
	}
}

func TestFileSink_CanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	holder, err := NewFileSink(path)
	require.NoError(t, err)
	locked, err := holder.lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer func() { _ = holder.lock.Unlock() }()

	s, err := NewFileSink(path)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, s.Write(ctx, testReport(errcategory.Warning)))
}

func TestNewFileSink_EmptyPath(t *testing.T) {
	_, err := NewFileSink("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

// fakePublisher records published messages.
type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestNATSSink(t *testing.T) {
	pub := &fakePublisher{}
	s, err := NewNATSSink(pub, "errpromote.reports")
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), testReport(errcategory.UserDeprecated)))
	require.Len(t, pub.payloads, 1)
	assert.Equal(t, "errpromote.reports", pub.subjects[0])

	var payload natsPayload
	require.NoError(t, json.Unmarshal(pub.payloads[0], &payload))
	assert.Equal(t, natsPayload{
		Category:  "E_USER_DEPRECATED",
		Label:     "Deprecated",
		Message:   "Undefined index: id",
		File:      "/srv/app/index.php",
		Line:      12,
		InRuntime: true,
		Time:      fixedTime,
	}, payload)
}

func TestNATSSink_Errors(t *testing.T) {
	_, err := NewNATSSink(nil, "x")
	assert.ErrorIs(t, err, ErrNilPublisher)

	_, err = NewNATSSink(&fakePublisher{}, "")
	assert.ErrorIs(t, err, ErrEmptySubject)

	s, err := NewNATSSink(&fakePublisher{err: errPublish}, "x")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Write(context.Background(), testReport(errcategory.Warning)), errPublish)
}

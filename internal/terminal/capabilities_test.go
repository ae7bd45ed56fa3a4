package terminal

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilities_ColorEnabled(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		options  Options
		terminal bool
		want     bool
	}{
		{
			name:    "force color wins over everything",
			envVars: map[string]string{"NO_COLOR": "1", "CI": "true"},
			options: Options{ForceColor: true},
			want:    true,
		},
		{
			name:     "disable color wins over terminal",
			envVars:  map[string]string{"TERM": "xterm"},
			options:  Options{DisableColor: true},
			terminal: true,
			want:     false,
		},
		{
			name:    "CLICOLOR_FORCE enables color on a pipe",
			envVars: map[string]string{"CLICOLOR_FORCE": "1"},
			want:    true,
		},
		{
			name:     "NO_COLOR disables color on a terminal",
			envVars:  map[string]string{"NO_COLOR": "", "TERM": "xterm"},
			terminal: true,
			want:     false,
		},
		{
			name:     "color terminal enables color",
			envVars:  map[string]string{"TERM": "xterm-256color"},
			terminal: true,
			want:     true,
		},
		{
			name:     "dumb terminal disables color",
			envVars:  map[string]string{"TERM": "dumb"},
			terminal: true,
			want:     false,
		},
		{
			name:     "CI disables color",
			envVars:  map[string]string{"TERM": "xterm", "CI": "true"},
			terminal: true,
			want:     false,
		},
		{
			name:     "CI=false is not CI",
			envVars:  map[string]string{"TERM": "xterm", "CI": "false"},
			terminal: true,
			want:     true,
		},
		{
			name:     "CLICOLOR=0 disables color on a terminal",
			envVars:  map[string]string{"TERM": "xterm", "CLICOLOR": "0"},
			terminal: true,
			want:     false,
		},
		{
			name:    "pipe disables color",
			envVars: map[string]string{"TERM": "xterm"},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCleanEnv(t, tt.envVars)
			c := NewCapabilities(tt.options)
			c.isTerminal = func(io.Writer) bool { return tt.terminal }
			assert.Equal(t, tt.want, c.ColorEnabled(&bytes.Buffer{}))
		})
	}
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}

func TestTermSupportsColor(t *testing.T) {
	tests := []struct {
		term string
		want bool
	}{
		{"", false},
		{"dumb", false},
		{"xterm", true},
		{"screen-256color", true},
		{"TMUX", true},
		{"unknown", false},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			setupCleanEnv(t, map[string]string{"TERM": tt.term})
			assert.Equal(t, tt.want, TermSupportsColor())
		})
	}
}

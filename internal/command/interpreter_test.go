package command

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcess(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOK   bool
		wantPath string
	}{
		{"go to projects", "please go to projects", true, "/projects"},
		{"navigate to about", "Navigate To the About page", true, "/about"},
		{"go to contact", "go to contact", true, "/contact"},
		{"case insensitive", "GO TO my BLOG", true, "/blog"},
		{"home", "navigate to home", true, "/"},
		{"singular project", "go to project", true, "/projects"},
		{"projects wins over about", "go to the about part of my projects", true, "/projects"},
		{"destination without trigger", "tell me about your projects", false, ""},
		{"trigger without destination", "go to the moon", false, ""},
		{"empty input", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			var announced []string

			i := New(
				func(p string) { gotPath = p },
				func(a string) { announced = append(announced, a) },
				discardLogger(),
			)

			reply, ok := i.Process(tt.input)

			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Empty(t, reply)
				assert.Empty(t, gotPath)
				assert.Empty(t, announced)
				return
			}

			assert.NotEmpty(t, reply)
			assert.Equal(t, tt.wantPath, gotPath)
			assert.Len(t, announced, 1)
		})
	}
}

func TestProcessNilSideEffects(t *testing.T) {
	i := New(nil, nil, nil)

	reply, ok := i.Process("go to projects")
	require.True(t, ok)
	assert.Contains(t, reply, "projects")
}

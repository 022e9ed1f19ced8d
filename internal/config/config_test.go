package config

import (
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadBoolToggles(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"false", false},
		{"FALSE", false},
		{"0", false},
		{"", true},    // default
		{"yes", true}, // unparseable falls back to the default
	}

	for _, tt := range tests {
		t.Run("speech_output="+tt.val, func(t *testing.T) {
			t.Setenv("ARIA_SPEECH_OUTPUT", tt.val)
			if got := Load().SpeechOutput; got != tt.want {
				t.Errorf("SpeechOutput = %v with %q, want %v", got, tt.val, tt.want)
			}
		})
	}

	t.Run("duck_audio=1", func(t *testing.T) {
		t.Setenv("ARIA_DUCK_AUDIO", "1")
		if !Load().DuckAudio {
			t.Error("DuckAudio = false with ARIA_DUCK_AUDIO=1")
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ARIA_CHAT_MODEL", "ARIA_ADDR", "ARIA_SPEECH_OUTPUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ChatModel == "" {
		t.Error("ChatModel default missing")
	}
	if cfg.Addr == "" {
		t.Error("Addr default missing")
	}
	if !cfg.SpeechOutput {
		t.Error("SpeechOutput should default to on")
	}
}

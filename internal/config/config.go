// Package config reads daemon configuration from the environment and
// sets up logging.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values.
type Config struct {
	// Completion and synthesis endpoint
	OpenAIKey     string
	OpenAIBaseURL string
	ChatModel     string
	SpeechModel   string

	// Local speech-to-text
	WhisperModel string
	Language     string

	// Transport
	Addr       string
	SocksProxy string

	// Behavior toggles
	SpeechOutput bool
	DuckAudio    bool

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables. The API key has no
// default on purpose: it must come from the environment or an env file,
// never from source.
func Load() Config {
	return Config{
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		ChatModel:     getEnv("ARIA_CHAT_MODEL", "gpt-5-nano"),
		SpeechModel:   getEnv("ARIA_SPEECH_MODEL", "tts-1"),

		WhisperModel: getEnv("ARIA_WHISPER_MODEL", "third_party/whisper.cpp/models/ggml-base.en.bin"),
		Language:     getEnv("ARIA_LANGUAGE", "en"),

		Addr:       getEnv("ARIA_ADDR", "127.0.0.1:8090"),
		SocksProxy: getEnv("ARIA_SOCKS_PROXY", ""),

		SpeechOutput: getEnvBool("ARIA_SPEECH_OUTPUT", true),
		DuckAudio:    getEnvBool("ARIA_DUCK_AUDIO", false),

		LogFile:  getEnv("ARIA_LOG_FILE", "/tmp/aria.log"),
		LogLevel: ParseLogLevel(getEnv("ARIA_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func ParseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

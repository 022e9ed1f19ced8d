// Package chat is the slow path: it forwards unresolved input, together
// with a persona prefix and a short history window, to a remote
// chat-completion endpoint.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"aria/internal/session"
)

// ErrUnavailable is user-facing: the controller renders it as an
// assistant message instead of crashing the session.
var ErrUnavailable = errors.New("Sorry, I'm having trouble answering right now. Please try again in a moment.")

// fallbackReply substitutes for an empty completion, which is not
// treated as an error.
const fallbackReply = "I'm sorry, I don't have an answer for that right now."

const (
	// historyWindow caps how many past turns are replayed per request.
	historyWindow = 5

	defaultTimeout     = 30 * time.Second
	defaultMaxTokens   = 220
	defaultTemperature = 0.7
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string

	// HTTPClient overrides the transport, e.g. to route through a
	// SOCKS proxy.
	HTTPClient *http.Client

	Timeout     time.Duration
	MaxTokens   int64
	Temperature float64

	Logger *slog.Logger
}

type Client struct {
	api         openai.Client
	model       string
	timeout     time.Duration
	maxTokens   int64
	temperature float64
	log         *slog.Logger
}

// New builds a completion client. Retries are disabled: each call is
// independent and the caller decides whether to resubmit.
func New(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		log:         cfg.Logger,
	}
}

// Send asks the completion endpoint for a reply. The request is the
// persona prefix, the most recent turns of history, and the new content
// last. The call is bounded by the configured timeout and cancellable
// through ctx.
func (c *Client) Send(ctx context.Context, content string, history []session.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	window := history
	if len(window) > historyWindow {
		window = window[len(window)-historyWindow:]
	}

	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(window)+2)
	msgs = append(msgs, openai.SystemMessage(personaPrompt))
	for _, m := range window {
		switch m.Role {
		case session.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(content))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    msgs,
		Model:       openai.ChatModel(c.model),
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		c.log.Error("chat completion failed", "err", err)
		return "", ErrUnavailable
	}

	if len(resp.Choices) == 0 {
		c.log.Warn("completion returned no choices")
		return fallbackReply, nil
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		c.log.Warn("completion returned empty content")
		return fallbackReply, nil
	}

	return reply, nil
}

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria/internal/session"
)

type wireRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"max_tokens"`
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":     "cmpl-test",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	})
	return string(b)
}

func respond(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func userMsg(content string) session.Message {
	return session.Message{Role: session.RoleUser, Content: content}
}

func assistantMsg(content string) session.Message {
	return session.Message{Role: session.RoleAssistant, Content: content}
}

func TestSendRequestShape(t *testing.T) {
	var got wireRequest
	var auth string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		respond(w, completionBody("a reply"))
	})

	history := []session.Message{userMsg("earlier question"), assistantMsg("earlier answer")}

	reply, err := c.Send(context.Background(), "new question", history)
	require.NoError(t, err)
	assert.Equal(t, "a reply", reply)

	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, defaultTemperature, got.Temperature)
	assert.Equal(t, int64(defaultMaxTokens), got.MaxTokens)

	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "earlier question", got.Messages[1].Content)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "user", got.Messages[3].Role)
	assert.Equal(t, "new question", got.Messages[3].Content)
}

func TestSendTruncatesHistory(t *testing.T) {
	var got wireRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		respond(w, completionBody("ok"))
	})

	var history []session.Message
	for i := 0; i < 9; i++ {
		history = append(history, userMsg(fmt.Sprintf("turn %d", i)))
	}

	_, err := c.Send(context.Background(), "latest", history)
	require.NoError(t, err)

	// system prefix + 5 most recent turns + new content
	require.Len(t, got.Messages, historyWindow+2)
	assert.Equal(t, "turn 4", got.Messages[1].Content)
	assert.Equal(t, "turn 8", got.Messages[historyWindow].Content)
	assert.Equal(t, "latest", got.Messages[historyWindow+1].Content)
}

func TestSendServerErrorIsUnavailable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	})

	_, err := c.Send(context.Background(), "hello", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSendEmptyCompletionFallsBack(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty content", completionBody("")},
		{"whitespace content", completionBody("   \n")},
		{"no choices", `{"id":"cmpl-test","object":"chat.completion","choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				respond(w, tt.body)
			})

			reply, err := c.Send(context.Background(), "hello", nil)
			require.NoError(t, err)
			assert.Equal(t, fallbackReply, reply)
		})
	}
}

func TestSendHonorsContextCancellation(t *testing.T) {
	started := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// The body must be consumed for the server to notice the
		// client going away.
		io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := c.Send(ctx, "hello", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

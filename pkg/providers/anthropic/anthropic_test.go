package anthropic_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/germanamz/playground/pkg/chats/chat"
	"github.com/germanamz/playground/pkg/chats/message"
	"github.com/germanamz/playground/pkg/chats/role"
	"github.com/germanamz/playground/pkg/modeladapter"
	"github.com/germanamz/playground/pkg/providers/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *anthropic.Adapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return anthropic.New(srv.URL, "test-key", "claude-3-opus")
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func readBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}

	return req
}

func textResponse(text string) map[string]any {
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":  12,
			"output_tokens": 4,
		},
	}
}

func TestNew_Defaults(t *testing.T) {
	a := anthropic.New(anthropic.DefaultBaseURL, "k", "claude-3-opus")

	assert.Equal(t, 500, a.MaxTokens)
	assert.Equal(t, "x-api-key", a.Auth.Header)
	assert.Equal(t, "2023-06-01", a.Headers["anthropic-version"])
}

func TestComplete_SingleUserMessage(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		req := readBody(t, r)

		assert.Equal(t, "claude-3-opus", req["model"])
		assert.InDelta(t, 500, req["max_tokens"], 0)
		assert.NotContains(t, req, "system")
		assert.NotContains(t, req, "temperature")

		msgs, ok := req["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 1)

		first, _ := msgs[0].(map[string]any)
		assert.Equal(t, "user", first["role"])

		blocks, _ := first["content"].([]any)
		require.Len(t, blocks, 1)
		block, _ := blocks[0].(map[string]any)
		assert.Equal(t, "text", block["type"])
		assert.Equal(t, "Customer Query: where is my order?", block["text"])

		writeJSON(t, w, textResponse("I understand your frustration."))
	})

	msg, err := adapter.Complete(context.Background(), chat.FromPrompt("", "Customer Query: where is my order?"))
	require.NoError(t, err)

	assert.Equal(t, role.Assistant, msg.Role)
	assert.Equal(t, "I understand your frustration.", msg.Text)

	reason, _ := msg.GetMeta("finish_reason")
	assert.Equal(t, "end_turn", reason)

	tc, ok := modeladapter.UsageOf(msg)
	require.True(t, ok)
	assert.Equal(t, 12, tc.InputTokens)
	assert.Equal(t, 4, tc.OutputTokens)
	assert.Equal(t, 16, adapter.Usage.Total().Total())
}

func TestComplete_ChatModelOverridesDefault(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)
		assert.Equal(t, "claude-3-haiku", req["model"])

		writeJSON(t, w, textResponse("ok"))
	})

	msg, err := adapter.Complete(context.Background(), chat.FromPrompt("claude-3-haiku", "hi"))
	require.NoError(t, err)
	assert.Equal(t, "claude-3-haiku", msg.Sender)
}

func TestComplete_SystemAndMergedRoles(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)

		assert.Equal(t, "Be brief.", req["system"])

		msgs, _ := req["messages"].([]any)
		require.Len(t, msgs, 1)

		first, _ := msgs[0].(map[string]any)
		blocks, _ := first["content"].([]any)
		assert.Len(t, blocks, 2)

		writeJSON(t, w, textResponse("ok"))
	})

	c := chat.New(
		message.New("", role.System, "Be brief."),
		message.New("user", role.User, "one"),
		message.New("user", role.User, "two"),
	)

	_, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)
}

func TestComplete_Temperature(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)
		assert.InDelta(t, 0.3, req["temperature"], 1e-9)

		writeJSON(t, w, textResponse("ok"))
	})
	adapter.Temperature = 0.3

	_, err := adapter.Complete(context.Background(), chat.FromPrompt("", "hi"))
	require.NoError(t, err)
}

func TestComplete_JoinsTextBlocks(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "Hello "},
				{"type": "thinking"},
				{"type": "text", "text": "world"},
			},
		})
	})

	msg, err := adapter.Complete(context.Background(), chat.FromPrompt("", "hi"))
	require.NoError(t, err)
	assert.Equal(t, "Hello world", msg.Text)
}

func TestComplete_NoTextContent(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"content": []map[string]any{}})
	})

	_, err := adapter.Complete(context.Background(), chat.FromPrompt("", "hi"))
	assert.ErrorContains(t, err, "anthropic: no text content")
}

func TestComplete_APIError(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"not_found_error","message":"model: claude-3-opus"}}`))
	})

	_, err := adapter.Complete(context.Background(), chat.FromPrompt("", "hi"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "anthropic: unexpected status 404")
}

func TestComplete_RateLimited(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := adapter.Complete(context.Background(), chat.FromPrompt("", "hi"))

	var rle *modeladapter.RateLimitError
	assert.ErrorAs(t, err, &rle)
}

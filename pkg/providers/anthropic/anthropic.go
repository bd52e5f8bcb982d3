// Package anthropic provides a Completer implementation for the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/germanamz/playground/pkg/chats/chat"
	"github.com/germanamz/playground/pkg/chats/message"
	"github.com/germanamz/playground/pkg/chats/role"
	"github.com/germanamz/playground/pkg/modeladapter"
	"github.com/germanamz/playground/pkg/modeladapter/usage"
)

const (
	// DefaultBaseURL is the public Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	messagesPath = "/v1/messages"
	apiVersion   = "2023-06-01"
)

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer for the Anthropic Messages API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter configured for the Anthropic API.
// The baseURL should be "https://api.anthropic.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-api-key",
	}
	a.Name = model
	a.MaxTokens = 500
	a.Headers = map[string]string{
		"anthropic-version": apiVersion,
	}

	return a
}

// Complete sends a conversation to the Anthropic Messages API and returns the
// assistant's reply.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat) (message.Message, error) {
	req := a.buildRequest(c)

	var resp apiResponse
	if err := a.PostJSON(ctx, messagesPath, req, &resp); err != nil {
		return message.Message{}, fmt.Errorf("anthropic: %w", err)
	}

	text, ok := resp.text()
	if !ok {
		return message.Message{}, fmt.Errorf("anthropic: no text content in response")
	}

	msg := message.New(req.Model, role.Assistant, text)
	msg.SetMeta("finish_reason", resp.StopReason)
	a.Record(&msg, usage.TokenCount{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	})

	return msg, nil
}

// --- request types ---

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string       `json:"role"`
	Content []apiContent `json:"content"`
}

type apiContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// --- response types ---

type apiResponse struct {
	Content    []apiContent `json:"content"`
	StopReason string       `json:"stop_reason"`
	Usage      apiUsage     `json:"usage"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// text joins all text blocks. The bool is false when the response carried
// no text block at all.
func (r apiResponse) text() (string, bool) {
	var (
		b     strings.Builder
		found bool
	)
	for _, block := range r.Content {
		if block.Type != "text" {
			continue
		}
		found = true
		b.WriteString(block.Text)
	}
	return b.String(), found
}

// --- conversion helpers ---

func (a *Adapter) buildRequest(c *chat.Chat) apiRequest {
	req := apiRequest{
		Model:     a.ModelFor(c),
		MaxTokens: a.MaxTokens,
		System:    c.SystemPrompt(),
	}

	if a.Temperature != 0 {
		t := a.Temperature
		req.Temperature = &t
	}

	for _, m := range c.Messages() {
		if m.Role == role.System {
			continue
		}

		r := mapRole(m.Role)
		block := apiContent{Type: "text", Text: m.Text}

		// Merge into the last message if it has the same role.
		if n := len(req.Messages); n > 0 && req.Messages[n-1].Role == r {
			req.Messages[n-1].Content = append(req.Messages[n-1].Content, block)
			continue
		}

		req.Messages = append(req.Messages, apiMessage{
			Role:    r,
			Content: []apiContent{block},
		})
	}

	return req
}

func mapRole(r role.Role) string {
	if r == role.Assistant {
		return "assistant"
	}
	return "user"
}

// Package gemini provides a Completer implementation for the Google Gemini
// API, built on the google.golang.org/genai SDK.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/germanamz/playground/pkg/chats/chat"
	"github.com/germanamz/playground/pkg/chats/message"
	"github.com/germanamz/playground/pkg/chats/role"
	"github.com/germanamz/playground/pkg/modeladapter"
	"github.com/germanamz/playground/pkg/modeladapter/usage"
)

// DefaultBaseURL is the public Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer for the Google Gemini API.
// The SDK client is built from the embedded ModelAdapter fields on first use;
// a failed construction is retried on the next call.
type Adapter struct {
	modeladapter.ModelAdapter

	mu     sync.Mutex
	client *genai.Client
}

// New creates an Adapter configured for the Gemini API.
// The baseURL should be "https://generativelanguage.googleapis.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-goog-api-key",
	}
	a.Name = model
	a.MaxTokens = 500

	return a
}

func (a *Adapter) sdkClient(ctx context.Context) (*genai.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     a.Auth.Key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: a.HTTPClient(),
	}
	if a.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = a.BaseURL
	}
	if len(a.Headers) > 0 {
		cfg.HTTPOptions.Headers = make(map[string][]string, len(a.Headers))
		for k, v := range a.Headers {
			cfg.HTTPOptions.Headers[k] = []string{v}
		}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	a.client = client

	return client, nil
}

// Complete sends a conversation to the Gemini API and returns the assistant's reply.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat) (message.Message, error) {
	client, err := a.sdkClient(ctx)
	if err != nil {
		return message.Message{}, fmt.Errorf("gemini: %w", err)
	}

	model := a.ModelFor(c)
	contents, cfg := a.buildRequest(c)

	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return message.Message{}, fmt.Errorf("gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return message.Message{}, fmt.Errorf("gemini: empty candidates in response")
	}

	cand := resp.Candidates[0]

	msg := message.New(model, role.Assistant, candidateText(cand))
	msg.SetMeta("finish_reason", string(cand.FinishReason))

	var tc usage.TokenCount
	if um := resp.UsageMetadata; um != nil {
		tc.InputTokens = int(um.PromptTokenCount)
		tc.OutputTokens = int(um.CandidatesTokenCount)
	}
	a.Record(&msg, tc)

	return msg, nil
}

func (a *Adapter) buildRequest(c *chat.Chat) ([]*genai.Content, *genai.GenerateContentConfig) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(a.MaxTokens), //nolint:gosec // MaxTokens is small, validated config.
	}

	if a.Temperature != 0 {
		cfg.Temperature = genai.Ptr(float32(a.Temperature))
	}

	if sp := c.SystemPrompt(); sp != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: sp}},
		}
	}

	var contents []*genai.Content

	for _, m := range c.Messages() {
		if m.Role == role.System {
			continue
		}

		r := mapRole(m.Role)
		part := &genai.Part{Text: m.Text}

		// Merge into the last content if it has the same role (Gemini requires alternation).
		if n := len(contents); n > 0 && contents[n-1].Role == r {
			contents[n-1].Parts = append(contents[n-1].Parts, part)
			continue
		}

		contents = append(contents, &genai.Content{
			Role:  r,
			Parts: []*genai.Part{part},
		})
	}

	return contents, cfg
}

func mapRole(r role.Role) string {
	if r == role.Assistant {
		return "model"
	}
	return "user"
}

// candidateText joins the text parts of a candidate, skipping thought parts.
func candidateText(cand *genai.Candidate) string {
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

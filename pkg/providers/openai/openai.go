// Package openai provides a Completer implementation for the OpenAI Chat
// Completions API, built on the official openai-go SDK.
package openai

import (
	"context"
	"fmt"
	"sync"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/germanamz/playground/pkg/chats/chat"
	"github.com/germanamz/playground/pkg/chats/message"
	"github.com/germanamz/playground/pkg/chats/role"
	"github.com/germanamz/playground/pkg/modeladapter"
	"github.com/germanamz/playground/pkg/modeladapter/usage"
)

// DefaultBaseURL is the public OpenAI API endpoint, including the version
// prefix the SDK expects.
const DefaultBaseURL = "https://api.openai.com/v1"

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer for the OpenAI Chat Completions API.
// The SDK client is built from the embedded ModelAdapter fields on first use.
type Adapter struct {
	modeladapter.ModelAdapter

	once   sync.Once
	client sdk.Client
}

// New creates an Adapter configured for the OpenAI API.
// The baseURL should be "https://api.openai.com/v1" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{Key: apiKey}
	a.Name = model
	a.MaxTokens = 500

	return a
}

func (a *Adapter) sdkClient() *sdk.Client {
	a.once.Do(func() {
		opts := []option.RequestOption{
			option.WithAPIKey(a.Auth.Key),
			option.WithHTTPClient(a.HTTPClient()),
			option.WithMaxRetries(0),
		}
		if a.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(a.BaseURL))
		}
		for k, v := range a.Headers {
			opts = append(opts, option.WithHeader(k, v))
		}

		a.client = sdk.NewClient(opts...)
	})

	return &a.client
}

// Complete sends a conversation to the OpenAI Chat Completions API and returns
// the assistant's reply.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat) (message.Message, error) {
	params := a.buildParams(c)

	resp, err := a.sdkClient().Chat.Completions.New(ctx, params)
	if err != nil {
		return message.Message{}, fmt.Errorf("openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return message.Message{}, fmt.Errorf("openai: empty choices in response")
	}

	choice := resp.Choices[0]

	msg := message.New(string(params.Model), role.Assistant, choice.Message.Content)
	msg.SetMeta("finish_reason", choice.FinishReason)
	a.Record(&msg, usage.TokenCount{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	})

	return msg, nil
}

func (a *Adapter) buildParams(c *chat.Chat) sdk.ChatCompletionNewParams {
	params := sdk.ChatCompletionNewParams{
		Model: sdk.ChatModel(a.ModelFor(c)),
	}

	if a.MaxTokens > 0 {
		params.MaxCompletionTokens = sdk.Int(int64(a.MaxTokens))
	}

	if a.Temperature != 0 {
		params.Temperature = sdk.Float(a.Temperature)
	}

	for _, m := range c.Messages() {
		switch m.Role {
		case role.System:
			params.Messages = append(params.Messages, sdk.SystemMessage(m.Text))
		case role.Assistant:
			params.Messages = append(params.Messages, sdk.AssistantMessage(m.Text))
		default:
			params.Messages = append(params.Messages, sdk.UserMessage(m.Text))
		}
	}

	return params
}

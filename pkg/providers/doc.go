// Package providers groups the vendor adapters that implement
// [github.com/germanamz/playground/pkg/modeladapter.Completer]:
//   - [github.com/germanamz/playground/pkg/providers/openai]: OpenAI Chat Completions via the official openai-go SDK
//   - [github.com/germanamz/playground/pkg/providers/anthropic]: Anthropic Messages API over plain HTTP
//   - [github.com/germanamz/playground/pkg/providers/gemini]: Google Gemini via the google.golang.org/genai SDK
//
// Every adapter sends the conversation as-is, caps output with MaxTokens and
// returns the reply text. None of them retries.
package providers

package engine

import (
	"github.com/germanamz/playground/pkg/catalog"
	"github.com/germanamz/playground/pkg/modeladapter"
	"github.com/germanamz/playground/pkg/providers/anthropic"
	"github.com/germanamz/playground/pkg/providers/gemini"
	"github.com/germanamz/playground/pkg/providers/openai"
)

// ProviderFactory creates the Completer for one vendor. It is called at most
// once per vendor for the lifetime of an Engine, on first use.
type ProviderFactory func(cfg ProviderConfig, gen GenerationConfig) (modeladapter.Completer, error)

func defaultFactories() map[catalog.Provider]ProviderFactory {
	return map[catalog.Provider]ProviderFactory{
		catalog.OpenAI:    newOpenAI,
		catalog.Anthropic: newAnthropic,
		catalog.Google:    newGemini,
	}
}

func newOpenAI(cfg ProviderConfig, gen GenerationConfig) (modeladapter.Completer, error) {
	a := openai.New(orDefault(cfg.BaseURL, openai.DefaultBaseURL), cfg.APIKey, "gpt-4")
	a.MaxTokens = gen.MaxTokens
	a.Temperature = gen.Temperature

	return a, nil
}

func newAnthropic(cfg ProviderConfig, gen GenerationConfig) (modeladapter.Completer, error) {
	a := anthropic.New(orDefault(cfg.BaseURL, anthropic.DefaultBaseURL), cfg.APIKey, "claude-3-opus")
	a.MaxTokens = gen.MaxTokens
	a.Temperature = gen.Temperature

	return a, nil
}

func newGemini(cfg ProviderConfig, gen GenerationConfig) (modeladapter.Completer, error) {
	a := gemini.New(orDefault(cfg.BaseURL, gemini.DefaultBaseURL), cfg.APIKey, "gemini-pro")
	a.MaxTokens = gen.MaxTokens
	a.Temperature = gen.Temperature

	return a, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

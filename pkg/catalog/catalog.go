// Package catalog describes the models the playground can offer and maps a
// model identifier to the provider that serves it.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Provider names a vendor of a hosted text-generation API.
type Provider string

const (
	OpenAI    Provider = "OpenAI"
	Anthropic Provider = "Anthropic"
	Google    Provider = "Google"
)

// Providers lists every supported provider.
var Providers = []Provider{OpenAI, Anthropic, Google}

// ErrUnsupportedModel is returned when a model identifier matches no provider.
var ErrUnsupportedModel = errors.New("unsupported model")

// prefixes maps a model id prefix to its provider.
var prefixes = []struct {
	prefix   string
	provider Provider
}{
	{"gpt", OpenAI},
	{"claude", Anthropic},
	{"gemini", Google},
}

// ProviderFor returns the provider serving modelID, decided by id prefix.
func ProviderFor(modelID string) (Provider, error) {
	for _, p := range prefixes {
		if strings.HasPrefix(modelID, p.prefix) {
			return p.provider, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedModel, modelID)
}

// ModelDescriptor describes one selectable model.
type ModelDescriptor struct {
	ID          string   `yaml:"id"          json:"id"`
	Name        string   `yaml:"name"        json:"name"`
	Provider    Provider `yaml:"provider"    json:"provider"`
	Description string   `yaml:"description" json:"description"`
}

// Defaults returns the built-in model list.
func Defaults() []ModelDescriptor {
	return []ModelDescriptor{
		{
			ID:          "gpt-4",
			Name:        "GPT-4",
			Provider:    OpenAI,
			Description: "Most capable GPT model, optimized for complex tasks",
		},
		{
			ID:          "claude-3-opus",
			Name:        "Claude 3 Opus",
			Provider:    Anthropic,
			Description: "Most powerful Claude model for complex tasks",
		},
		{
			ID:          "gemini-pro",
			Name:        "Gemini Pro",
			Provider:    Google,
			Description: "Google's advanced language model",
		},
	}
}

// Catalog is an ordered, immutable list of model descriptors.
type Catalog struct {
	models []ModelDescriptor
}

// New builds a Catalog from the defaults followed by extra descriptors.
// An extra descriptor whose ID matches an existing one replaces it in place.
// Extra descriptors without a provider get the one their ID prefix implies.
func New(extra ...ModelDescriptor) (*Catalog, error) {
	models := Defaults()

	for _, m := range extra {
		if m.ID == "" {
			return nil, errors.New("catalog: model id is required")
		}

		p, err := ProviderFor(m.ID)
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if m.Provider == "" {
			m.Provider = p
		}
		if m.Provider != p {
			return nil, fmt.Errorf("catalog: model %q: provider %q does not match id prefix (%s)", m.ID, m.Provider, p)
		}
		if m.Name == "" {
			m.Name = m.ID
		}

		if i := slices.IndexFunc(models, func(d ModelDescriptor) bool { return d.ID == m.ID }); i >= 0 {
			models[i] = m
			continue
		}
		models = append(models, m)
	}

	return &Catalog{models: models}, nil
}

// Available returns the descriptors whose provider is enabled.
func (c *Catalog) Available(enabled func(Provider) bool) []ModelDescriptor {
	var out []ModelDescriptor
	for _, m := range c.models {
		if enabled(m.Provider) {
			out = append(out, m)
		}
	}
	return out
}

// ProvidersOf returns the distinct providers of models, sorted by name.
func ProvidersOf(models []ModelDescriptor) []Provider {
	var out []Provider
	for _, m := range models {
		if !slices.Contains(out, m.Provider) {
			out = append(out, m.Provider)
		}
	}
	slices.Sort(out)
	return out
}

// ByProvider filters models down to those served by p.
func ByProvider(models []ModelDescriptor, p Provider) []ModelDescriptor {
	var out []ModelDescriptor
	for _, m := range models {
		if m.Provider == p {
			out = append(out, m)
		}
	}
	return out
}

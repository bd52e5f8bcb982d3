// Package prompts holds the playground's prompt templates and renders them.
//
// A template is a format string with {name} placeholders. The built-in
// templates are embedded from templates.yaml; more can be added at startup.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultsYAML []byte

// ErrUnknownTemplate is returned when a template key is not in the store.
var ErrUnknownTemplate = errors.New("unknown prompt type")

// Template is a parameterized prompt with example input and output.
type Template struct {
	Key           string `yaml:"key"            json:"key"`
	Name          string `yaml:"name"           json:"name"`
	Description   string `yaml:"description"    json:"description"`
	Template      string `yaml:"template"       json:"template"`
	ExampleInput  string `yaml:"example_input"  json:"example_input"`
	ExampleOutput string `yaml:"example_output" json:"example_output"`
}

// Placeholders returns the names of the template's placeholders.
func (t Template) Placeholders() []string {
	return Placeholders(t.Template)
}

// Render substitutes vars into the template.
func (t Template) Render(vars map[string]string) (string, error) {
	return Render(t.Template, vars)
}

// Store is an immutable set of templates keyed by Key.
type Store struct {
	byKey map[string]Template
	keys  []string
}

// NewStore builds a Store. A later template with the same key replaces an
// earlier one. Every template must have a key and a well-formed format string.
func NewStore(templates ...Template) (*Store, error) {
	s := &Store{byKey: make(map[string]Template, len(templates))}

	for _, t := range templates {
		if t.Key == "" {
			return nil, errors.New("prompts: template key is required")
		}
		if strings.TrimSpace(t.Template) == "" {
			return nil, fmt.Errorf("prompts: template %q: format string is required", t.Key)
		}
		if _, err := parse(t.Template); err != nil {
			return nil, fmt.Errorf("prompts: template %q: %w", t.Key, err)
		}
		if t.Name == "" {
			t.Name = t.Key
		}

		if _, dup := s.byKey[t.Key]; !dup {
			s.keys = append(s.keys, t.Key)
		}
		s.byKey[t.Key] = t
	}

	slices.Sort(s.keys)

	return s, nil
}

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() ([]Template, error) {
	var doc struct {
		Templates []Template `yaml:"templates"`
	}
	if err := yaml.Unmarshal(defaultsYAML, &doc); err != nil {
		return nil, fmt.Errorf("prompts: parse defaults: %w", err)
	}
	return doc.Templates, nil
}

// Defaults returns a Store with the built-in templates followed by extra.
func Defaults(extra ...Template) (*Store, error) {
	templates, err := DefaultTemplates()
	if err != nil {
		return nil, err
	}
	return NewStore(append(templates, extra...)...)
}

// List returns every template sorted by key.
func (s *Store) List() []Template {
	out := make([]Template, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.byKey[k])
	}
	return out
}

// Get returns the template with the given key.
func (s *Store) Get(key string) (Template, error) {
	t, ok := s.byKey[key]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, key)
	}
	return t, nil
}

// Render looks up key and substitutes vars into its format string.
func (s *Store) Render(key string, vars map[string]string) (string, error) {
	t, err := s.Get(key)
	if err != nil {
		return "", err
	}
	return t.Render(vars)
}

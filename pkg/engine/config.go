package engine

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/germanamz/playground/pkg/catalog"
	"github.com/germanamz/playground/pkg/prompts"
)

// Defaults applied by DefaultConfig.
const (
	DefaultAddr      = ":8501"
	DefaultMaxTokens = 500
	DefaultWordLimit = 200
)

// Config is the top-level playground configuration.
type Config struct {
	Server     ServerConfig              `yaml:"server"`
	Generation GenerationConfig          `yaml:"generation"`
	Providers  ProvidersConfig           `yaml:"providers"`
	Models     []catalog.ModelDescriptor `yaml:"models"`
	Templates  []prompts.Template        `yaml:"templates"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS origins for the JSON API; empty disables CORS.
}

// GenerationConfig controls every model call.
type GenerationConfig struct {
	MaxTokens      int     `yaml:"max_tokens"`      // Output token bound sent to the vendor.
	WordLimit      int     `yaml:"word_limit"`      // Responses longer than this many words are truncated.
	Temperature    float64 `yaml:"temperature"`     // Zero means vendor default.
	RequestTimeout string  `yaml:"request_timeout"` // Duration string; empty means no timeout beyond the vendor default.
}

// Timeout parses RequestTimeout. Zero means no timeout.
func (g GenerationConfig) Timeout() (time.Duration, error) {
	if g.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(g.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid request_timeout %q: %w", g.RequestTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid request_timeout %q: must not be negative", g.RequestTimeout)
	}
	return d, nil
}

// ProviderConfig holds the credentials and endpoint of one vendor.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	BaseURL string `yaml:"base_url"`
}

// ProvidersConfig holds one ProviderConfig per supported vendor.
type ProvidersConfig struct {
	OpenAI    ProviderConfig `yaml:"openai"`
	Anthropic ProviderConfig `yaml:"anthropic"`
	Google    ProviderConfig `yaml:"google"`
}

// For returns the configuration of provider p.
func (pc ProvidersConfig) For(p catalog.Provider) ProviderConfig {
	switch p {
	case catalog.OpenAI:
		return pc.OpenAI
	case catalog.Anthropic:
		return pc.Anthropic
	case catalog.Google:
		return pc.Google
	}
	return ProviderConfig{}
}

// HasKey reports whether provider p has an API key configured.
func (pc ProvidersConfig) HasKey(p catalog.Provider) bool {
	return pc.For(p).APIKey != ""
}

// envSettings are the settings read from the process environment.
type envSettings struct {
	OpenAIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicKey string `envconfig:"ANTHROPIC_API_KEY"`
	GoogleKey    string `envconfig:"GOOGLE_API_KEY"`
	Addr         string `envconfig:"PLAYGROUND_ADDR"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: DefaultAddr},
		Generation: GenerationConfig{
			MaxTokens: DefaultMaxTokens,
			WordLimit: DefaultWordLimit,
		},
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig and returns the result.
// An empty path returns DefaultConfig. Environment variables referenced as
// ${VAR} in the YAML are expanded before parsing; a bare $ is kept as is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	if err := yaml.Unmarshal(expandEnv(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references with the value of VAR. Unset
// variables expand to the empty string.
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		return []byte(os.Getenv(string(ref[2 : len(ref)-1])))
	})
}

// ApplyEnv fills provider keys and the listen address from the environment
// (OPENAI_API_KEY, ANTHROPIC_API_KEY, GOOGLE_API_KEY, PLAYGROUND_ADDR).
// Values already set in the config win. A missing key is not an error.
func (c *Config) ApplyEnv() error {
	var env envSettings
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("engine: read environment: %w", err)
	}

	setIfEmpty(&c.Providers.OpenAI.APIKey, env.OpenAIKey)
	setIfEmpty(&c.Providers.Anthropic.APIKey, env.AnthropicKey)
	setIfEmpty(&c.Providers.Google.APIKey, env.GoogleKey)

	if env.Addr != "" && (c.Server.Addr == "" || c.Server.Addr == DefaultAddr) {
		c.Server.Addr = env.Addr
	}

	return nil
}

func setIfEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("engine: config: server.addr is required")
	}
	if c.Generation.MaxTokens <= 0 {
		return fmt.Errorf("engine: config: generation.max_tokens must be positive, got %d", c.Generation.MaxTokens)
	}
	if c.Generation.WordLimit <= 0 {
		return fmt.Errorf("engine: config: generation.word_limit must be positive, got %d", c.Generation.WordLimit)
	}
	if _, err := c.Generation.Timeout(); err != nil {
		return fmt.Errorf("engine: config: generation: %w", err)
	}
	if _, err := catalog.New(c.Models...); err != nil {
		return fmt.Errorf("engine: config: models: %w", err)
	}
	if _, err := prompts.Defaults(c.Templates...); err != nil {
		return fmt.Errorf("engine: config: templates: %w", err)
	}

	return nil
}

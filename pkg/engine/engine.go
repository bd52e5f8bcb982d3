package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/germanamz/playground/pkg/catalog"
	"github.com/germanamz/playground/pkg/chats/chat"
	"github.com/germanamz/playground/pkg/modeladapter"
	"github.com/germanamz/playground/pkg/modeladapter/usage"
	"github.com/germanamz/playground/pkg/prompts"
)

// ErrorPrefix starts the text of every failed GenerationResult.
const ErrorPrefix = "Error generating response: "

// ErrMissingKey is returned when a model's provider has no API key.
var ErrMissingKey = errors.New("API key is not configured")

// GenerationRequest asks for one completion of Prompt by the model ModelID.
type GenerationRequest struct {
	ModelID string
	Prompt  string
}

// GenerationResult is the outcome of Engine.Generate. Text holds either the
// (possibly truncated) response or the formatted error; Err keeps the cause.
type GenerationResult struct {
	RequestID string
	ModelID   string
	Provider  catalog.Provider
	Text      string
	Err       error
	Truncated bool
	Usage     usage.TokenCount
	HasUsage  bool
	Duration  time.Duration
}

// OK reports whether the generation succeeded.
func (r GenerationResult) OK() bool { return r.Err == nil }

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithMetrics records every model call on m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// withProviderFactory replaces the Completer factory used for provider p.
func withProviderFactory(p catalog.Provider, f ProviderFactory) Option {
	return func(e *Engine) { e.factories[p] = f }
}

type providerClient struct {
	raw       modeladapter.Completer
	completer modeladapter.Completer
}

// Engine resolves models to provider clients and runs generations.
// It is safe for concurrent use.
type Engine struct {
	cfg       Config
	log       *zap.Logger
	metrics   *Metrics
	catalog   *catalog.Catalog
	prompts   *prompts.Store
	factories map[catalog.Provider]ProviderFactory
	timeout   time.Duration

	mu      sync.Mutex
	clients map[catalog.Provider]*providerClient
}

// New creates an Engine from cfg. Missing API keys are not an error; the
// affected providers are simply unavailable.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cat, err := catalog.New(cfg.Models...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	store, err := prompts.Defaults(cfg.Templates...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	timeout, err := cfg.Generation.Timeout()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		cfg:       cfg,
		log:       zap.NewNop(),
		catalog:   cat,
		prompts:   store,
		factories: defaultFactories(),
		timeout:   timeout,
		clients:   make(map[catalog.Provider]*providerClient),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.logKeys()

	return e, nil
}

func (e *Engine) logKeys() {
	fields := make([]zap.Field, 0, len(catalog.Providers))
	for _, p := range catalog.Providers {
		fields = append(fields, zap.Bool(string(p), e.cfg.Providers.HasKey(p)))
	}
	e.log.Info("provider api keys", fields...)

	if len(e.AvailableModels()) == 0 {
		e.log.Warn("no provider api key configured, no models available")
	}
}

// Prompts returns the prompt template store.
func (e *Engine) Prompts() *prompts.Store { return e.prompts }

// AvailableModels returns the models whose provider has an API key.
func (e *Engine) AvailableModels() []catalog.ModelDescriptor {
	return e.catalog.Available(e.cfg.Providers.HasKey)
}

// Usage returns the accumulated token usage of provider p and the number of
// calls that reported it. Both are zero until the provider is first used.
func (e *Engine) Usage(p catalog.Provider) (usage.TokenCount, int) {
	e.mu.Lock()
	pc, ok := e.clients[p]
	e.mu.Unlock()

	if !ok {
		return usage.TokenCount{}, 0
	}
	ur, ok := pc.raw.(modeladapter.UsageReporter)
	if !ok {
		return usage.TokenCount{}, 0
	}
	t := ur.UsageTracker()
	return t.Total(), t.Count()
}

// client returns the cached Completer of provider p, creating it on first use.
func (e *Engine) client(p catalog.Provider) (modeladapter.Completer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if pc, ok := e.clients[p]; ok {
		return pc.completer, nil
	}

	factory, ok := e.factories[p]
	if !ok {
		return nil, fmt.Errorf("no adapter for provider %s", p)
	}

	raw, err := factory(e.cfg.Providers.For(p), e.cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", p, err)
	}

	mws := []Middleware{
		Logger(e.log, string(p)),
		Instrument(e.metrics, string(p)),
		Recovery(),
	}
	if e.timeout > 0 {
		mws = append(mws, Timeout(e.timeout))
	}

	pc := &providerClient{raw: raw, completer: Chain(raw, mws...)}
	e.clients[p] = pc

	e.log.Debug("provider client created", zap.String("provider", string(p)))

	return pc.completer, nil
}

// Generate sends req.Prompt as a single user message to the model req.ModelID
// and returns the word-limited reply. Failures never escape as errors: they
// are formatted into the result text with ErrorPrefix and kept in Err.
func (e *Engine) Generate(ctx context.Context, req GenerationRequest) GenerationResult {
	start := time.Now()
	res := GenerationResult{
		RequestID: uuid.NewString(),
		ModelID:   req.ModelID,
	}

	text, err := e.generate(ctx, req, &res)
	res.Duration = time.Since(start)

	if err != nil {
		res.Err = err
		res.Text = ErrorPrefix + err.Error()
		return res
	}

	res.Text, res.Truncated = Truncate(text, e.cfg.Generation.WordLimit)

	return res
}

func (e *Engine) generate(ctx context.Context, req GenerationRequest, res *GenerationResult) (string, error) {
	p, err := catalog.ProviderFor(req.ModelID)
	if err != nil {
		e.reject(UnknownLabel, UnknownLabel, req.ModelID, err)
		return "", err
	}
	res.Provider = p

	if !e.cfg.Providers.HasKey(p) {
		err := fmt.Errorf("%s %w", p, ErrMissingKey)
		e.reject(string(p), req.ModelID, req.ModelID, err)
		return "", err
	}

	c, err := e.client(p)
	if err != nil {
		return "", err
	}

	ctx = WithRequestID(ctx, res.RequestID)

	msg, err := c.Complete(ctx, chat.FromPrompt(req.ModelID, req.Prompt))
	if err != nil {
		return "", err
	}

	res.Usage, res.HasUsage = modeladapter.UsageOf(msg)

	return msg.Text, nil
}

// reject logs and counts a request refused before any provider was called.
func (e *Engine) reject(provider, modelLabel, modelID string, err error) {
	e.log.Warn("generation rejected", zap.String("model", modelID), zap.Error(err))
	e.metrics.rejected(provider, modelLabel)
}

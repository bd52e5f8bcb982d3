package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/germanamz/playground/pkg/chats/chat"
	"github.com/germanamz/playground/pkg/chats/message"
	"github.com/germanamz/playground/pkg/modeladapter"
)

// Middleware wraps a Completer, returning a new Completer with added behaviour.
type Middleware func(next modeladapter.Completer) modeladapter.Completer

// Chain applies middlewares to c so that the first middleware is outermost.
func Chain(c modeladapter.Completer, mws ...Middleware) modeladapter.Completer {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the generation request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the generation request id stored in ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// --- Timeout middleware ---

// Timeout returns a Middleware that wraps the call's context with a deadline.
func Timeout(d time.Duration) Middleware {
	return func(next modeladapter.Completer) modeladapter.Completer {
		return modeladapter.CompleterFunc(func(ctx context.Context, c *chat.Chat) (message.Message, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next.Complete(ctx, c)
		})
	}
}

// --- Recovery middleware ---

// Recovery returns a Middleware that catches panics and converts them to errors.
func Recovery() Middleware {
	return func(next modeladapter.Completer) modeladapter.Completer {
		return modeladapter.CompleterFunc(func(ctx context.Context, c *chat.Chat) (msg message.Message, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("adapter panicked: %v", r)
				}
			}()

			return next.Complete(ctx, c)
		})
	}
}

// --- Logger middleware ---

// Logger returns a Middleware that logs call start, duration, token usage and error.
func Logger(log *zap.Logger, provider string) Middleware {
	return func(next modeladapter.Completer) modeladapter.Completer {
		return modeladapter.CompleterFunc(func(ctx context.Context, c *chat.Chat) (message.Message, error) {
			l := log.With(
				zap.String("provider", provider),
				zap.String("model", c.Model()),
				zap.String("request_id", RequestIDFrom(ctx)),
			)

			l.Debug("generation started")

			start := time.Now()

			msg, err := next.Complete(ctx, c)

			duration := time.Since(start)

			if err != nil {
				var rle *modeladapter.RateLimitError
				if errors.As(err, &rle) {
					l.Warn("generation rate limited", zap.Duration("duration", duration), zap.Duration("retry_after", rle.RetryAfter))
				} else {
					l.Error("generation failed", zap.Duration("duration", duration), zap.Error(err))
				}
				return msg, err
			}

			fields := []zap.Field{zap.Duration("duration", duration)}
			if tc, ok := modeladapter.UsageOf(msg); ok {
				fields = append(fields,
					zap.Int("input_tokens", tc.InputTokens),
					zap.Int("output_tokens", tc.OutputTokens),
				)
			}
			l.Info("generation finished", fields...)

			return msg, nil
		})
	}
}

// --- Instrument middleware ---

// Instrument returns a Middleware that records calls on m.
func Instrument(m *Metrics, provider string) Middleware {
	return func(next modeladapter.Completer) modeladapter.Completer {
		return modeladapter.CompleterFunc(func(ctx context.Context, c *chat.Chat) (message.Message, error) {
			start := time.Now()

			msg, err := next.Complete(ctx, c)

			m.observe(provider, c.Model(), time.Since(start), msg, err)

			return msg, err
		})
	}
}

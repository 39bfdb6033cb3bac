package codegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

var (
	// ErrNoProviders means no provider is configured; Extract falls back to templates.
	ErrNoProviders = errors.New("codegen: no providers configured")
	// ErrEmptyResponse is returned when a provider answers with no content.
	ErrEmptyResponse = errors.New("codegen: empty response")
	// ErrQuotaExceeded marks quota/rate-limit failures that warrant trying the next model.
	ErrQuotaExceeded = errors.New("codegen: quota exceeded")
)

// Provider is one generative backend: system instruction + user message in, raw text out.
type Provider interface {
	Name() string
	Generate(ctx context.Context, system, user string) (string, error)
}

// isQuotaError reports whether err signals quota exhaustion or rate limiting.
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	var statusErr *engine.HTTPStatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"quota", "resource_exhausted", "rate limit", "rate_limit", "429"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// tryModels calls fn for each model in order, moving on only when the
// failure is a quota error. Any other failure stops the walk.
func tryModels(ctx context.Context, provider string, models []string, fn func(ctx context.Context, model string) (string, error)) (string, error) {
	if len(models) == 0 {
		return "", fmt.Errorf("%s: no models configured", provider)
	}
	var lastErr error
	for _, model := range models {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		text, err := fn(ctx, model)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return "", fmt.Errorf("%s/%s: %w", provider, model, ErrEmptyResponse)
			}
			return text, nil
		}
		lastErr = fmt.Errorf("%s/%s: %w", provider, model, err)
		if !isQuotaError(err) {
			return "", lastErr
		}
		slog.Warn("codegen: quota exhausted, trying next model",
			slog.String("provider", provider), slog.String("model", model))
	}
	return "", lastErr
}

// breakerProvider stops calling a provider that keeps failing.
type breakerProvider struct {
	Provider
	cb *gobreaker.CircuitBreaker
}

// WithBreaker wraps p in a circuit breaker that opens after consecutive failures.
func WithBreaker(p Provider) Provider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("codegen: provider breaker state change",
				slog.String("provider", name), slog.String("from", from.String()), slog.String("to", to.String()))
		},
	})
	return &breakerProvider{Provider: p, cb: cb}
}

func (b *breakerProvider) Generate(ctx context.Context, system, user string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.Provider.Generate(ctx, system, user)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

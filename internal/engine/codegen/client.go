package codegen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// Source names recorded on each result.
const (
	SourceOpenAI   = "openai"
	SourceGemini   = "gemini"
	SourceOllama   = "ollama"
	SourceHTTP     = "http"
	SourceFallback = "fallback"
	SourceGitHub   = "github"
)

// defaultOrder is the provider priority after the preferred one.
var defaultOrder = []string{SourceOpenAI, SourceGemini, SourceHTTP, SourceOllama}

// Config is resolved once at startup and passed in explicitly.
type Config struct {
	Preferred string // provider tried first; empty keeps defaultOrder

	OpenAI OpenAIConfig
	Gemini GeminiConfig
	Ollama OllamaConfig
	HTTP   HTTPConfig

	Timeout            time.Duration // per provider call
	Temperature        float64
	MaxTokens          int
	TranscriptMaxChars int
	HTTPClient         *http.Client
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Minute
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.4
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 8000
	}
	if c.TranscriptMaxChars <= 0 {
		c.TranscriptMaxChars = 12000
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout + 10*time.Second}
	}
}

// Client walks an ordered provider chain and never fails: when every provider
// is missing or broken it returns the deterministic fallback project.
type Client struct {
	cfg       Config
	providers []Provider
}

// NewClient builds the chain from cfg: preferred provider first, then the rest
// of defaultOrder, skipping anything unconfigured. Each provider gets a breaker.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg.defaults()

	build := map[string]func() (Provider, error){
		SourceOpenAI: func() (Provider, error) {
			if !cfg.OpenAI.configured() {
				return nil, nil
			}
			return newOpenAIProvider(cfg.OpenAI, cfg.HTTPClient, cfg.Temperature, cfg.MaxTokens), nil
		},
		SourceGemini: func() (Provider, error) {
			if !cfg.Gemini.configured() {
				return nil, nil
			}
			return newGeminiProvider(ctx, cfg.Gemini, cfg.HTTPClient, cfg.Temperature, cfg.MaxTokens)
		},
		SourceHTTP: func() (Provider, error) {
			if !cfg.HTTP.configured() {
				return nil, nil
			}
			return newHTTPProvider(cfg.HTTP, cfg.HTTPClient, cfg.Temperature, cfg.MaxTokens), nil
		},
		SourceOllama: func() (Provider, error) {
			if !cfg.Ollama.configured() {
				return nil, nil
			}
			return newOllamaProvider(cfg.Ollama)
		},
	}

	var providers []Provider
	for _, name := range providerOrder(cfg.Preferred) {
		p, err := build[name]()
		if err != nil {
			return nil, fmt.Errorf("codegen: %s: %w", name, err)
		}
		if p == nil {
			continue
		}
		providers = append(providers, WithBreaker(p))
	}

	slog.Info("codegen: providers ready", slog.Any("providers", names(providers)))
	return &Client{cfg: cfg, providers: providers}, nil
}

// NewClientWithProviders uses the given chain as-is.
func NewClientWithProviders(cfg Config, providers ...Provider) *Client {
	cfg.defaults()
	return &Client{cfg: cfg, providers: providers}
}

func providerOrder(preferred string) []string {
	preferred = strings.ToLower(strings.TrimSpace(preferred))
	order := make([]string, 0, len(defaultOrder))
	for _, name := range defaultOrder {
		if name == preferred {
			order = append(order, name)
		}
	}
	for _, name := range defaultOrder {
		if name != preferred {
			order = append(order, name)
		}
	}
	return order
}

func names(providers []Provider) []string {
	out := make([]string, len(providers))
	for i, p := range providers {
		out[i] = p.Name()
	}
	return out
}

// Providers lists the configured chain in call order.
func (c *Client) Providers() []string { return names(c.providers) }

// call runs one provider under the per-call timeout.
func (c *Client) call(ctx context.Context, p Provider, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	engine.IncrLLMCalls()
	var raw string
	err := engine.TrackOperation(ctx, "codegen:"+p.Name(), 90*time.Second, func(ctx context.Context) error {
		var err error
		raw, err = p.Generate(ctx, system, user)
		return err
	})
	if err == nil && strings.TrimSpace(raw) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		engine.IncrLLMErrors()
		return "", err
	}
	return raw, nil
}

// Generate returns the first non-empty raw response in chain order along
// with the provider name. It fails only when every provider fails.
func (c *Client) Generate(ctx context.Context, title, transcript string) (string, string, error) {
	if len(c.providers) == 0 {
		return "", "", ErrNoProviders
	}
	user := BuildUserPrompt(title, transcript, c.cfg.TranscriptMaxChars)
	var errs []error
	for _, p := range c.providers {
		raw, err := c.call(ctx, p, SystemPrompt, user)
		if err != nil {
			slog.Warn("codegen: provider failed", slog.String("provider", p.Name()), slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		return raw, p.Name(), nil
	}
	return "", "", errors.Join(errs...)
}

// Extract turns a title and transcript into a normalized result. A provider
// whose output cannot be normalized counts as failed and the next one is tried.
// The returned source is the provider name or SourceFallback; the fallback
// project also carries any code snippets found in the transcript.
func (c *Client) Extract(ctx context.Context, title, transcript string) (engine.ExtractionResult, string) {
	user := BuildUserPrompt(title, transcript, c.cfg.TranscriptMaxChars)
	for _, p := range c.providers {
		raw, err := c.call(ctx, p, SystemPrompt, user)
		if err != nil {
			slog.Warn("codegen: provider failed", slog.String("provider", p.Name()), slog.Any("error", err))
			continue
		}
		result, err := NormalizeStrict(raw)
		if err != nil {
			slog.Warn("codegen: unusable provider output", slog.String("provider", p.Name()), slog.Any("error", err))
			continue
		}
		slog.Info("codegen: project generated",
			slog.String("provider", p.Name()), slog.Int("files", len(result.Files)))
		return result, p.Name()
	}

	engine.IncrFallbackGenerations()
	slog.Info("codegen: using template fallback", slog.String("title", title))
	return withSnippets(GenerateFallback(title), transcript), SourceFallback
}

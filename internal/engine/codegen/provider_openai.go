package codegen

import (
	"context"
	"net/http"

	"github.com/anatolykoptev/go-kit/llm"
)

// OpenAIConfig configures any OpenAI-compatible chat-completions endpoint.
type OpenAIConfig struct {
	BaseURL      string
	APIKey       string
	FallbackKeys []string
	Models       []string // tried in order on quota errors
}

func (c OpenAIConfig) configured() bool { return c.APIKey != "" && len(c.Models) > 0 }

// openAIProvider answers in the choices[0].message.content shape via go-kit/llm.
type openAIProvider struct {
	clients     map[string]*llm.Client
	models      []string
	temperature float64
	maxTokens   int
}

func newOpenAIProvider(c OpenAIConfig, hc *http.Client, temperature float64, maxTokens int) *openAIProvider {
	p := &openAIProvider{
		clients:     make(map[string]*llm.Client, len(c.Models)),
		models:      c.Models,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
	for _, model := range c.Models {
		p.clients[model] = llm.NewClient(c.BaseURL, c.APIKey, model,
			llm.WithFallbackKeys(c.FallbackKeys),
			llm.WithMaxTokens(maxTokens),
			llm.WithTemperature(temperature),
			llm.WithHTTPClient(hc),
		)
	}
	return p
}

func (p *openAIProvider) Name() string { return SourceOpenAI }

func (p *openAIProvider) Generate(ctx context.Context, system, user string) (string, error) {
	return tryModels(ctx, p.Name(), p.models, func(ctx context.Context, model string) (string, error) {
		return p.clients[model].Complete(ctx, system, user,
			llm.WithChatTemperature(p.temperature),
			llm.WithChatMaxTokens(p.maxTokens),
		)
	})
}

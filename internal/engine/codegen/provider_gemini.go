package codegen

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini API provider.
type GeminiConfig struct {
	APIKey string
	Models []string
}

func (c GeminiConfig) configured() bool { return c.APIKey != "" && len(c.Models) > 0 }

// geminiProvider answers in the candidates[0].content.parts[0].text shape via the genai SDK.
type geminiProvider struct {
	client      *genai.Client
	models      []string
	temperature float32
	maxTokens   int32
}

func newGeminiProvider(ctx context.Context, c GeminiConfig, hc *http.Client, temperature float64, maxTokens int) (*geminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &geminiProvider{
		client:      client,
		models:      c.Models,
		temperature: float32(temperature),
		maxTokens:   int32(maxTokens),
	}, nil
}

func (p *geminiProvider) Name() string { return SourceGemini }

func (p *geminiProvider) Generate(ctx context.Context, system, user string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(p.temperature),
		MaxOutputTokens:   p.maxTokens,
		ResponseMIMEType:  "application/json",
	}
	return tryModels(ctx, p.Name(), p.models, func(ctx context.Context, model string) (string, error) {
		resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(user), cfg)
		if err != nil {
			return "", err
		}
		if text := resp.Text(); text != "" {
			return text, nil
		}
		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
			return resp.Candidates[0].Content.Parts[0].Text, nil
		}
		return "", ErrEmptyResponse
	})
}

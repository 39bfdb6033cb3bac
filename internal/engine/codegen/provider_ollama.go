package codegen

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/JexSrs/go-ollama"
)

// OllamaConfig configures a local Ollama server.
type OllamaConfig struct {
	URL    string
	Models []string
}

func (c OllamaConfig) configured() bool { return c.URL != "" && len(c.Models) > 0 }

type ollamaProvider struct {
	client *ollama.Ollama
	models []string
}

func newOllamaProvider(c OllamaConfig) (*ollamaProvider, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("ollama url: %w", err)
	}
	return &ollamaProvider{client: ollama.New(*u), models: c.Models}, nil
}

func (p *ollamaProvider) Name() string { return SourceOllama }

type ollamaResult struct {
	text string
	err  error
}

// Generate runs the blocking ollama call in a goroutine so ctx can bound it.
// An abandoned call finishes on its own HTTP timeout.
func (p *ollamaProvider) Generate(ctx context.Context, system, user string) (string, error) {
	return tryModels(ctx, p.Name(), p.models, func(ctx context.Context, model string) (string, error) {
		done := make(chan ollamaResult, 1)
		go func() {
			res, err := p.client.Generate(
				p.client.Generate.WithModel(model),
				p.client.Generate.WithSystem(system),
				p.client.Generate.WithPrompt(user),
			)
			if err != nil {
				done <- ollamaResult{err: err}
				return
			}
			if !res.Done {
				done <- ollamaResult{err: errors.New("ollama: incomplete response")}
				return
			}
			done <- ollamaResult{text: res.Response}
		}()

		select {
		case r := <-done:
			return r.text, r.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})
}

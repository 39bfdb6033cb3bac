package codegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// Request styles for HTTPConfig.Style.
const (
	StyleChat   = "chat"   // {model, messages[]} → choices[0].message.content
	StyleGemini = "gemini" // {systemInstruction, contents[]} → candidates[0].content.parts[0].text
)

// HTTPConfig configures a generic provider reached by a plain JSON POST.
// URL may contain "{model}", replaced per attempt.
type HTTPConfig struct {
	URL    string
	APIKey string
	Style  string
	Models []string
}

func (c HTTPConfig) configured() bool { return c.URL != "" && len(c.Models) > 0 }

type httpProvider struct {
	cfg         HTTPConfig
	hc          *http.Client
	temperature float64
	maxTokens   int
}

func newHTTPProvider(c HTTPConfig, hc *http.Client, temperature float64, maxTokens int) *httpProvider {
	if c.Style == "" {
		c.Style = StyleChat
	}
	return &httpProvider{cfg: c, hc: hc, temperature: temperature, maxTokens: maxTokens}
}

func (p *httpProvider) Name() string { return SourceHTTP }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type textPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []textPart `json:"parts"`
}

// completionResp accepts both supported response shapes.
type completionResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Candidates []struct {
		Content struct {
			Parts []textPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Text returns the first non-empty payload of either shape.
func (r completionResp) Text() string {
	if len(r.Choices) > 0 && r.Choices[0].Message.Content != "" {
		return r.Choices[0].Message.Content
	}
	if len(r.Candidates) > 0 && len(r.Candidates[0].Content.Parts) > 0 {
		return r.Candidates[0].Content.Parts[0].Text
	}
	return ""
}

func (p *httpProvider) requestBody(model, system, user string) any {
	if p.cfg.Style == StyleGemini {
		return map[string]any{
			"systemInstruction": geminiContent{Parts: []textPart{{Text: system}}},
			"contents":          []geminiContent{{Role: "user", Parts: []textPart{{Text: user}}}},
			"generationConfig": map[string]any{
				"temperature":      p.temperature,
				"maxOutputTokens":  p.maxTokens,
				"responseMimeType": "application/json",
			},
		}
	}
	return map[string]any{
		"model": model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"temperature": p.temperature,
		"max_tokens":  p.maxTokens,
	}
}

func (p *httpProvider) Generate(ctx context.Context, system, user string) (string, error) {
	return tryModels(ctx, p.Name(), p.cfg.Models, func(ctx context.Context, model string) (string, error) {
		payload, err := json.Marshal(p.requestBody(model, system, user))
		if err != nil {
			return "", err
		}
		endpoint := strings.ReplaceAll(p.cfg.URL, "{model}", model)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", engine.UserAgentBot)
		if p.cfg.APIKey != "" {
			if p.cfg.Style == StyleGemini {
				req.Header.Set("x-goog-api-key", p.cfg.APIKey)
			} else {
				req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
			}
		}

		resp, err := p.hc.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		if err != nil {
			return "", err
		}

		var out completionResp
		_ = json.Unmarshal(body, &out)

		if resp.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %s", ErrQuotaExceeded, engine.TruncateRunes(string(body), 200, "..."))
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			if out.Error != nil && out.Error.Status == "RESOURCE_EXHAUSTED" {
				return "", fmt.Errorf("%w: %s", ErrQuotaExceeded, out.Error.Message)
			}
			return "", &engine.HTTPStatusError{StatusCode: resp.StatusCode}
		}
		if text := out.Text(); text != "" {
			return text, nil
		}
		return "", ErrEmptyResponse
	})
}

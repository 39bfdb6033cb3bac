// Package config resolves environment settings once at startup.
package config

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
	"github.com/anatolykoptev/go_ytcode/internal/engine/codegen"
	"github.com/anatolykoptev/go_ytcode/internal/extraction"
)

// Engine returns the ambient HTTP, YouTube and cache settings.
func Engine() engine.Config {
	return engine.Config{
		FetchTimeout:       env.Duration("FETCH_TIMEOUT", 10*time.Second),
		MetadataTimeout:    env.Duration("METADATA_TIMEOUT", 5*time.Second),
		RepoCheckTimeout:   env.Duration("REPO_CHECK_TIMEOUT", 8*time.Second),
		GithubToken:        env.Str("GITHUB_TOKEN", ""),
		TranscriptLang:     env.Str("TRANSCRIPT_LANG", "en"),
		TranscriptKind:     env.Str("TRANSCRIPT_KIND", "asr"),
		TranscriptMaxChars: env.Int("TRANSCRIPT_MAX_CHARS", 12000),
		YouTubeRPS:         env.Float("YOUTUBE_RPS", 2),
		YouTubeBurst:       env.Int("YOUTUBE_BURST", 4),
		CacheTTL:           env.Duration("CACHE_TTL", 6*time.Hour),
		CacheMaxBytes:      int64(env.Int("CACHE_MAX_MB", 64)) << 20,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

// Codegen returns the provider chain settings. Providers without credentials
// or models are skipped by codegen.NewClient.
func Codegen() codegen.Config {
	return codegen.Config{
		Preferred: env.Str("LLM_PROVIDER", ""),
		OpenAI: codegen.OpenAIConfig{
			BaseURL:      env.Str("LLM_API_BASE", "https://api.openai.com/v1"),
			APIKey:       env.Str("LLM_API_KEY", ""),
			FallbackKeys: env.List("LLM_API_KEY_FALLBACKS", ""),
			Models:       env.List("LLM_MODELS", "gpt-4o-mini"),
		},
		Gemini: codegen.GeminiConfig{
			APIKey: env.Str("GEMINI_API_KEY", ""),
			Models: env.List("GEMINI_MODELS", "gemini-2.5-flash,gemini-2.0-flash"),
		},
		Ollama: codegen.OllamaConfig{
			URL:    env.Str("OLLAMA_URL", ""),
			Models: env.List("OLLAMA_MODELS", "llama3.1"),
		},
		HTTP: codegen.HTTPConfig{
			URL:    env.Str("LLM_HTTP_URL", ""),
			APIKey: env.Str("LLM_HTTP_KEY", ""),
			Style:  env.Str("LLM_HTTP_STYLE", codegen.StyleChat),
			Models: env.List("LLM_HTTP_MODELS", "default"),
		},
		Timeout:            env.Duration("LLM_TIMEOUT", 3*time.Minute),
		Temperature:        env.Float("LLM_TEMPERATURE", 0.4),
		MaxTokens:          env.Int("LLM_MAX_TOKENS", 8000),
		TranscriptMaxChars: env.Int("TRANSCRIPT_MAX_CHARS", 12000),
	}
}

// Service returns the worker pool settings.
func Service() extraction.Config {
	return extraction.Config{
		Workers:    env.Int("WORKERS", 2),
		JobTimeout: env.Duration("JOB_TIMEOUT", 240*time.Second),
		ArchiveDir: env.Str("ARCHIVE_DIR", "data/downloads"),
	}
}

// Storage names the record store backend.
type Storage struct {
	DatabaseURL string // postgres when set
	SQLitePath  string
}

// Store returns the record store settings.
func Store() Storage {
	return Storage{
		DatabaseURL: env.Str("DATABASE_URL", ""),
		SQLitePath:  env.Str("SQLITE_PATH", "data/extractions.db"),
	}
}

// Cache returns the L2 Redis URL; empty keeps the cache in-process.
func Cache() string { return env.Str("REDIS_URL", "") }

// NATS returns the notification server URL and subject prefix; an empty URL disables notifications.
func NATS() (url, prefix string) {
	return env.Str("NATS_URL", ""), env.Str("NATS_SUBJECT", "ytcode.extractions")
}

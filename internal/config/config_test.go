package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCodegenFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODELS", "gemini-a,gemini-b")
	t.Setenv("LLM_MAX_TOKENS", "4096")

	c := Codegen()
	assert.Equal(t, "gemini", c.Preferred)
	assert.Equal(t, "test-key", c.Gemini.APIKey)
	assert.Equal(t, []string{"gemini-a", "gemini-b"}, c.Gemini.Models)
	assert.Equal(t, 4096, c.MaxTokens)
}

func TestServiceFromEnv(t *testing.T) {
	t.Setenv("WORKERS", "5")
	t.Setenv("JOB_TIMEOUT", "90s")
	t.Setenv("ARCHIVE_DIR", "/tmp/zips")

	c := Service()
	assert.Equal(t, 5, c.Workers)
	assert.Equal(t, 90*time.Second, c.JobTimeout)
	assert.Equal(t, "/tmp/zips", c.ArchiveDir)
}

func TestEngineCacheSize(t *testing.T) {
	t.Setenv("CACHE_MAX_MB", "8")
	assert.Equal(t, int64(8<<20), Engine().CacheMaxBytes)
}

package engine

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	HTTPClient       *http.Client
	FetchTimeout     time.Duration // watch page, caption track, timedtext
	MetadataTimeout  time.Duration // oEmbed
	RepoCheckTimeout time.Duration // HEAD against candidate repositories
	GithubToken      string

	TranscriptLang     string // timedtext lang param (default "en")
	TranscriptKind     string // timedtext kind param (default "asr")
	TranscriptMaxChars int    // max transcript runes sent to the model

	YouTubeRPS   float64 // outbound YouTube requests per second (0 = unlimited)
	YouTubeBurst int

	CacheTTL      time.Duration
	CacheMaxBytes int64
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, codegen, archive).
// Always points to the current cfg value.
var Cfg = &cfg

var ytLimiter *rate.Limiter

// Init initializes the engine with the given configuration, filling defaults
// for anything left zero.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.MetadataTimeout <= 0 {
		c.MetadataTimeout = 5 * time.Second
	}
	if c.RepoCheckTimeout <= 0 {
		c.RepoCheckTimeout = 8 * time.Second
	}
	if c.TranscriptLang == "" {
		c.TranscriptLang = "en"
	}
	if c.TranscriptKind == "" {
		c.TranscriptKind = "asr"
	}
	if c.TranscriptMaxChars <= 0 {
		c.TranscriptMaxChars = 12000
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 6 * time.Hour
	}
	cfg = c
	Cfg = &cfg

	ytLimiter = nil
	if c.YouTubeRPS > 0 {
		burst := c.YouTubeBurst
		if burst <= 0 {
			burst = 1
		}
		ytLimiter = rate.NewLimiter(rate.Limit(c.YouTubeRPS), burst)
	}
}

// WaitYouTube blocks until the YouTube rate limiter admits one more request.
// A nil limiter (rate limiting disabled) never blocks.
func WaitYouTube(ctx context.Context) error {
	if ytLimiter == nil {
		return nil
	}
	return ytLimiter.Wait(ctx)
}

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ExtractionsSubmitted atomic.Int64
	ExtractionsCompleted atomic.Int64
	ExtractionsNoCode    atomic.Int64
	ExtractionsFailed    atomic.Int64
	MetadataRequests     atomic.Int64
	MetadataErrors       atomic.Int64
	TranscriptRequests   atomic.Int64
	TranscriptFallbacks  atomic.Int64
	TranscriptMisses     atomic.Int64
	RepoChecks           atomic.Int64
	ReposDetected        atomic.Int64
	LLMCalls             atomic.Int64
	LLMErrors            atomic.Int64
	FallbackGenerations  atomic.Int64
	ArchiveBuilds        atomic.Int64
	ArchiveErrors        atomic.Int64
}

var metricKeys = []string{
	"extractions_submitted", "extractions_completed", "extractions_no_code", "extractions_failed",
	"metadata_requests", "metadata_errors",
	"transcript_requests", "transcript_fallbacks", "transcript_misses",
	"repo_checks", "repos_detected",
	"llm_calls", "llm_errors", "fallback_generations",
	"archive_builds", "archive_errors",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"extractions_submitted": metrics.ExtractionsSubmitted.Load(),
		"extractions_completed": metrics.ExtractionsCompleted.Load(),
		"extractions_no_code":   metrics.ExtractionsNoCode.Load(),
		"extractions_failed":    metrics.ExtractionsFailed.Load(),
		"metadata_requests":     metrics.MetadataRequests.Load(),
		"metadata_errors":       metrics.MetadataErrors.Load(),
		"transcript_requests":   metrics.TranscriptRequests.Load(),
		"transcript_fallbacks":  metrics.TranscriptFallbacks.Load(),
		"transcript_misses":     metrics.TranscriptMisses.Load(),
		"repo_checks":           metrics.RepoChecks.Load(),
		"repos_detected":        metrics.ReposDetected.Load(),
		"llm_calls":             metrics.LLMCalls.Load(),
		"llm_errors":            metrics.LLMErrors.Load(),
		"fallback_generations":  metrics.FallbackGenerations.Load(),
		"archive_builds":        metrics.ArchiveBuilds.Load(),
		"archive_errors":        metrics.ArchiveErrors.Load(),
		"cache_hits":            hits,
		"cache_misses":          misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for extraction/ and codeserver/.
func IncrExtractionsSubmitted() { metrics.ExtractionsSubmitted.Add(1) }
func IncrExtractionsCompleted() { metrics.ExtractionsCompleted.Add(1) }
func IncrExtractionsNoCode()    { metrics.ExtractionsNoCode.Add(1) }
func IncrExtractionsFailed()    { metrics.ExtractionsFailed.Add(1) }

// Incrementors for sources/ sub-package.
func IncrMetadataRequests()    { metrics.MetadataRequests.Add(1) }
func IncrMetadataErrors()      { metrics.MetadataErrors.Add(1) }
func IncrTranscriptRequests()  { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptFallbacks() { metrics.TranscriptFallbacks.Add(1) }
func IncrTranscriptMisses()    { metrics.TranscriptMisses.Add(1) }
func IncrRepoChecks()          { metrics.RepoChecks.Add(1) }
func IncrReposDetected()       { metrics.ReposDetected.Add(1) }

// Incrementors for codegen/ and archive/.
func IncrLLMCalls()            { metrics.LLMCalls.Add(1) }
func IncrLLMErrors()           { metrics.LLMErrors.Add(1) }
func IncrFallbackGenerations() { metrics.FallbackGenerations.Add(1) }
func IncrArchiveBuilds()       { metrics.ArchiveBuilds.Add(1) }
func IncrArchiveErrors()       { metrics.ArchiveErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}

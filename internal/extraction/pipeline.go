// Package extraction runs the video-to-project pipeline and tracks its records.
package extraction

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
	"github.com/anatolykoptev/go_ytcode/internal/engine/codegen"
	"github.com/anatolykoptev/go_ytcode/internal/engine/sources"
	"github.com/anatolykoptev/go_ytcode/internal/engine/store"
)

// Repository-backed results trust the stack but carry no generated files.
const (
	repoStackConfidence = 0.9
	repoFilesConfidence = 0.0
)

// Generator turns a title and transcript into a project. *codegen.Client implements it.
type Generator interface {
	Extract(ctx context.Context, title, transcript string) (engine.ExtractionResult, string)
}

// Stages are the upstream calls the pipeline makes. Each one degrades
// instead of failing.
type Stages struct {
	Metadata         func(ctx context.Context, videoID string) engine.VideoMeta
	Transcript       func(ctx context.Context, videoID string) string
	PageDescription  func(ctx context.Context, videoID string) string
	DetectRepository func(ctx context.Context, texts ...string) (string, bool)
	RepositoryStack  func(ctx context.Context, repoURL string) *engine.Stack
}

// DefaultStages wires the live YouTube and GitHub fetchers.
func DefaultStages() Stages {
	return Stages{
		Metadata:         sources.FetchVideoMeta,
		Transcript:       sources.FetchTranscript,
		PageDescription:  sources.FetchWatchDescription,
		DetectRepository: sources.DetectRepository,
		RepositoryStack:  repositoryStack,
	}
}

func repositoryStack(ctx context.Context, repoURL string) *engine.Stack {
	owner, repo, ok := sources.ExtractOwnerRepo(repoURL)
	if !ok {
		return nil
	}
	meta, err := sources.FetchRepoMeta(ctx, owner, repo)
	if err != nil {
		slog.Debug("extraction: repo metadata unavailable", slog.String("repo", repoURL), slog.Any("error", err))
		return nil
	}
	return sources.RepoStack(meta)
}

// Outcome is what one pipeline run produced.
type Outcome struct {
	Result engine.ExtractionResult
	Source string
	Status store.Status
}

// Pipeline runs transcript → repository detection → generation for one video.
type Pipeline struct {
	stages    Stages
	generator Generator
}

// NewPipeline returns a pipeline over stages; zero stage fields use the live fetchers.
func NewPipeline(stages Stages, gen Generator) *Pipeline {
	def := DefaultStages()
	if stages.Metadata == nil {
		stages.Metadata = def.Metadata
	}
	if stages.Transcript == nil {
		stages.Transcript = def.Transcript
	}
	if stages.PageDescription == nil {
		stages.PageDescription = def.PageDescription
	}
	if stages.DetectRepository == nil {
		stages.DetectRepository = def.DetectRepository
	}
	if stages.RepositoryStack == nil {
		stages.RepositoryStack = def.RepositoryStack
	}
	return &Pipeline{stages: stages, generator: gen}
}

// Metadata fetches title and description for videoID.
func (p *Pipeline) Metadata(ctx context.Context, videoID string) engine.VideoMeta {
	ctx, span := engine.StartSpan(ctx, "extraction.metadata", attribute.String("video_id", videoID))
	defer engine.EndSpan(span, nil)
	return p.stages.Metadata(ctx, videoID)
}

// Run executes the pipeline after metadata. It always returns an outcome.
func (p *Pipeline) Run(ctx context.Context, videoID string, meta engine.VideoMeta) Outcome {
	ctx, span := engine.StartSpan(ctx, "extraction.run", attribute.String("video_id", videoID))
	defer engine.EndSpan(span, nil)
	ctx = sources.WithWatchPageMemo(ctx)

	transcript := p.transcript(ctx, videoID)
	pageDesc := p.pageDescription(ctx, videoID)

	// Priority: video URL, transcript, then the two description sources.
	if repoURL, ok := p.detectRepository(ctx, sources.WatchURL(videoID), transcript, meta.Description, pageDesc); ok {
		result := engine.EmptyResult()
		result.RepositoryURL = repoURL
		result.Stack = p.stages.RepositoryStack(ctx, repoURL)
		result.Confidence = &engine.Confidence{Stack: repoStackConfidence, Files: repoFilesConfidence}
		result.Transcript = keptTranscript(transcript)
		slog.Info("extraction: repository found", slog.String("video_id", videoID), slog.String("repo", repoURL))
		return Outcome{Result: result, Source: codegen.SourceGitHub, Status: store.StatusCompleted}
	}

	genCtx, genSpan := engine.StartSpan(ctx, "extraction.generate")
	result, source := p.generator.Extract(genCtx, meta.Title, transcript)
	genSpan.SetAttributes(attribute.String("source", source), attribute.Int("files", len(result.Files)))
	engine.EndSpan(genSpan, nil)

	result.Transcript = keptTranscript(transcript)
	status := store.StatusCompleted
	if len(result.Files) == 0 {
		status = store.StatusNoCode
	}
	return Outcome{Result: result, Source: source, Status: status}
}

func (p *Pipeline) transcript(ctx context.Context, videoID string) string {
	ctx, span := engine.StartSpan(ctx, "extraction.transcript")
	defer engine.EndSpan(span, nil)
	t := p.stages.Transcript(ctx, videoID)
	span.SetAttributes(attribute.Bool("available", t != engine.TranscriptUnavailable))
	return t
}

func (p *Pipeline) pageDescription(ctx context.Context, videoID string) string {
	ctx, span := engine.StartSpan(ctx, "extraction.page_description")
	defer engine.EndSpan(span, nil)
	return p.stages.PageDescription(ctx, videoID)
}

func (p *Pipeline) detectRepository(ctx context.Context, texts ...string) (string, bool) {
	ctx, span := engine.StartSpan(ctx, "extraction.repository")
	defer engine.EndSpan(span, nil)
	return p.stages.DetectRepository(ctx, texts...)
}

func keptTranscript(t string) string {
	if t == engine.TranscriptUnavailable {
		return ""
	}
	return t
}

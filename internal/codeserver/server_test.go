package codeserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
	"github.com/anatolykoptev/go_ytcode/internal/engine/codegen"
	"github.com/anatolykoptev/go_ytcode/internal/engine/store"
	"github.com/anatolykoptev/go_ytcode/internal/extraction"
)

const sampleURL = "https://youtu.be/dQw4w9WgXcQ"

// newService builds an offline service: fixed metadata, no transcript, no
// repository and the template generator.
func newService(t *testing.T, title string) *extraction.Service {
	t.Helper()
	stages := extraction.Stages{
		Metadata: func(context.Context, string) engine.VideoMeta {
			return engine.VideoMeta{Title: title}
		},
		Transcript:       func(context.Context, string) string { return engine.TranscriptUnavailable },
		PageDescription:  func(context.Context, string) string { return "" },
		DetectRepository: func(context.Context, ...string) (string, bool) { return "", false },
		RepositoryStack:  func(context.Context, string) *engine.Stack { return nil },
	}
	gen := codegen.NewClientWithProviders(codegen.Config{})
	svc := extraction.NewService(extraction.Config{JobTimeout: 5 * time.Second, ArchiveDir: t.TempDir()},
		store.NewMemory(), extraction.NewPipeline(stages, gen), nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svc.Close(ctx)
	})
	return svc
}

func waitCompleted(t *testing.T, svc *extraction.Service, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		rec, err := svc.Get(context.Background(), id)
		return err == nil && rec.Status == store.StatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

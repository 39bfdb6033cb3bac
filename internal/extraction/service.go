package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
	"github.com/anatolykoptev/go_ytcode/internal/engine/archive"
	"github.com/anatolykoptev/go_ytcode/internal/engine/sources"
	"github.com/anatolykoptev/go_ytcode/internal/engine/store"
)

var (
	// ErrInvalidURL means no video ID could be resolved from the input.
	ErrInvalidURL = errors.New("extraction: not a valid YouTube URL or video ID")
	// ErrNotCompleted means the record has not reached the completed status.
	ErrNotCompleted = errors.New("extraction: not completed")
	// ErrNoCode means a completed record has neither files nor a repository.
	ErrNoCode = errors.New("extraction: no code available")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("extraction: service closed")
)

// awaitInterval is how often Extract re-reads a record another run owns.
const awaitInterval = 100 * time.Millisecond

// Config tunes the background worker pool.
type Config struct {
	Workers    int           // concurrent pipeline runs (default 2)
	JobTimeout time.Duration // per run (default 240s)
	ArchiveDir string        // where Download writes archives
}

// Service accepts extraction requests, runs them in the background and
// serves their records.
type Service struct {
	cfg      Config
	store    store.Store
	pipeline *Pipeline
	notifier Notifier

	sem    *semaphore.Weighted
	submit singleflight.Group
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool

	baseCtx context.Context
	cancel  context.CancelFunc
	now     func() time.Time
}

// NewService wires a service; a nil notifier drops events.
func NewService(cfg Config, st store.Store, p *Pipeline, n Notifier) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 240 * time.Second
	}
	if cfg.ArchiveDir == "" {
		cfg.ArchiveDir = "downloads"
	}
	if n == nil {
		n = NopNotifier{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:      cfg,
		store:    st,
		pipeline: p,
		notifier: n,
		sem:      semaphore.NewWeighted(int64(cfg.Workers)),
		baseCtx:  ctx,
		cancel:   cancel,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit registers an extraction for url and returns its record immediately.
// An existing record is returned as-is unless force is set; a queued or
// running extraction is never duplicated, even when forced.
func (s *Service) Submit(ctx context.Context, url string, force bool) (*store.Record, error) {
	videoID, ok := sources.ResolveVideoID(url)
	if !ok {
		return nil, ErrInvalidURL
	}
	key := videoID
	if force {
		key += "#force"
	}
	v, err, _ := s.submit.Do(key, func() (any, error) {
		rec, _, err := s.register(ctx, videoID, force, true)
		return rec, err
	})
	if err != nil {
		return nil, err
	}
	rec := *v.(*store.Record)
	return &rec, nil
}

// Extract runs the whole pipeline for url synchronously and returns the final record.
func (s *Service) Extract(ctx context.Context, url string) (*store.Record, error) {
	videoID, ok := sources.ResolveVideoID(url)
	if !ok {
		return nil, ErrInvalidURL
	}
	rec, created, err := s.register(ctx, videoID, true, false)
	if err != nil {
		return nil, err
	}
	if created {
		s.execute(ctx, rec)
		return s.store.Get(ctx, rec.ID)
	}
	// Another run owns this video; wait for it instead of starting a second one.
	return s.await(ctx, rec.ID)
}

// await polls the record until it leaves the in-flight statuses or ctx ends.
func (s *Service) await(ctx context.Context, id string) (*store.Record, error) {
	ticker := time.NewTicker(awaitInterval)
	defer ticker.Stop()
	for {
		rec, err := s.store.Get(ctx, id)
		if err != nil || !rec.InFlight() {
			return rec, err
		}
		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		case <-ticker.C:
		}
	}
}

// register returns the existing record or creates a queued one; created
// reports the latter. With background set the new record is handed to the
// worker pool.
func (s *Service) register(ctx context.Context, videoID string, force, background bool) (rec *store.Record, created bool, err error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, false, ErrClosed
	}

	existing, err := s.store.GetByVideoID(ctx, videoID)
	switch {
	case err == nil && (existing.InFlight() || !force):
		return existing, false, nil
	case err == nil:
		if err := s.store.Delete(ctx, existing.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, false, fmt.Errorf("extraction: replace record: %w", err)
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, fmt.Errorf("extraction: lookup: %w", err)
	}

	meta := s.pipeline.Metadata(ctx, videoID)
	now := s.now()
	rec = &store.Record{
		ID:          uuid.NewString(),
		VideoID:     videoID,
		Title:       meta.Title,
		Description: meta.Description,
		Status:      store.StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			existing, err := s.store.GetByVideoID(ctx, videoID)
			return existing, false, err
		}
		return nil, false, fmt.Errorf("extraction: create record: %w", err)
	}
	engine.IncrExtractionsSubmitted()
	slog.Info("extraction: submitted", slog.String("id", rec.ID), slog.String("video_id", videoID))

	if background {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			s.fail(rec, ErrClosed)
			return rec, true, nil
		}
		s.wg.Add(1)
		s.mu.Unlock()

		queued := *rec
		go func() {
			defer s.wg.Done()
			s.execute(s.baseCtx, &queued)
		}()
	}
	return rec, true, nil
}

// execute runs the pipeline for rec under the worker bound and job timeout,
// then persists the outcome.
func (s *Service) execute(parent context.Context, rec *store.Record) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		s.fail(rec, fmt.Errorf("waiting for a worker: %w", err))
		return
	}
	defer s.sem.Release(1)

	rec.Status = store.StatusExtracting
	rec.UpdatedAt = s.now()
	if err := s.store.Update(ctx, rec); err != nil {
		slog.Warn("extraction: status update failed", slog.String("id", rec.ID), slog.Any("error", err))
	}

	outcome, err := s.runSafely(ctx, rec)
	if err != nil {
		s.fail(rec, err)
		return
	}

	now := s.now()
	rec.Status = outcome.Status
	rec.Source = outcome.Source
	rec.Result = &outcome.Result
	rec.Error = ""
	rec.UpdatedAt = now
	rec.ExtractedAt = &now
	s.finish(rec)

	if rec.Status == store.StatusNoCode {
		engine.IncrExtractionsNoCode()
	} else {
		engine.IncrExtractionsCompleted()
	}
	slog.Info("extraction: finished",
		slog.String("id", rec.ID), slog.String("status", string(rec.Status)),
		slog.String("source", rec.Source), slog.Int("files", len(outcome.Result.Files)))
}

func (s *Service) runSafely(ctx context.Context, rec *store.Record) (out Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()
	meta := engine.VideoMeta{Title: rec.Title, Description: rec.Description}
	return s.pipeline.Run(ctx, rec.VideoID, meta), nil
}

func (s *Service) fail(rec *store.Record, err error) {
	engine.IncrExtractionsFailed()
	slog.Error("extraction: failed", slog.String("id", rec.ID), slog.Any("error", err))
	rec.Status = store.StatusFailed
	rec.Error = err.Error()
	rec.UpdatedAt = s.now()
	s.finish(rec)
}

// finish persists a terminal record and announces it. The job context may
// already be expired, so both use a fresh deadline.
func (s *Service) finish(rec *store.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.store.Update(ctx, rec); err != nil {
		slog.Error("extraction: persist failed", slog.String("id", rec.ID), slog.Any("error", err))
	}
	ev := Event{ID: rec.ID, VideoID: rec.VideoID, Status: string(rec.Status), Source: rec.Source, At: rec.UpdatedAt}
	if rec.Result != nil {
		ev.Files = len(rec.Result.Files)
		ev.Repository = rec.Result.RepositoryURL
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		slog.Warn("extraction: notify failed", slog.String("id", rec.ID), slog.Any("error", err))
	}
}

// Get returns the record with id.
func (s *Service) Get(ctx context.Context, id string) (*store.Record, error) {
	return s.store.Get(ctx, id)
}

// List returns the newest records first.
func (s *Service) List(ctx context.Context, limit int) ([]store.Record, error) {
	return s.store.List(ctx, limit)
}

// Download builds the archive for a completed record and returns its path.
func (s *Service) Download(ctx context.Context, id string) (string, *store.Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if rec.Status != store.StatusCompleted || rec.Result == nil {
		return "", rec, ErrNotCompleted
	}
	if !rec.HasFiles() && rec.Result.RepositoryURL == "" {
		return "", rec, ErrNoCode
	}
	p, err := archive.Build(s.cfg.ArchiveDir, rec.VideoID, *rec.Result)
	if err != nil {
		return "", rec, err
	}
	return p, rec, nil
}

// Close stops accepting work and waits for running jobs until ctx expires,
// after which they are cancelled.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.cancel()
	case <-ctx.Done():
		s.cancel()
		<-done
	}
	return s.notifier.Close()
}

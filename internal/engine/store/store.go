// Package store persists extraction records.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when a record for the same video already exists.
	ErrDuplicate = errors.New("store: record already exists for video")
)

// Status is the lifecycle state of a record.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusExtracting Status = "extracting"
	StatusCompleted  Status = "completed"
	StatusNoCode     Status = "no_code_detected"
	StatusFailed     Status = "failed"
)

// Record is one extraction request and its outcome. VideoID is unique.
type Record struct {
	ID          string                   `json:"id"`
	VideoID     string                   `json:"video_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Status      Status                   `json:"status"`
	Source      string                   `json:"source,omitempty"`
	Error       string                   `json:"error,omitempty"`
	Result      *engine.ExtractionResult `json:"result,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	ExtractedAt *time.Time               `json:"extracted_at,omitempty"`
}

// InFlight reports whether an extraction for the record is queued or running.
func (r *Record) InFlight() bool {
	return r.Status == StatusQueued || r.Status == StatusExtracting
}

// HasFiles reports whether the record carries at least one generated file.
func (r *Record) HasFiles() bool {
	return r.Result != nil && len(r.Result.Files) > 0
}

// HasValidCode reports whether the generated files are trusted: the run
// completed with files and a files confidence at or above the threshold.
func (r *Record) HasValidCode() bool {
	if r.Status != StatusCompleted || !r.HasFiles() || r.Result.Confidence == nil {
		return false
	}
	return r.Result.Confidence.Files >= engine.TrustedFilesConfidence
}

// Store is the persistence contract used by the extraction service.
type Store interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	GetByVideoID(ctx context.Context, videoID string) (*Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

const defaultListLimit = 50

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}

func encodeResult(r *engine.ExtractionResult) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

func decodeResult(data []byte) (*engine.ExtractionResult, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var r engine.ExtractionResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Files == nil {
		r.Files = []engine.CodeFile{}
	}
	if r.Dependencies == nil {
		r.Dependencies = map[string][]string{}
	}
	return &r, nil
}

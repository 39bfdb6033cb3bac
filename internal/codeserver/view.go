// Package codeserver exposes the extraction service over MCP and REST.
package codeserver

import (
	"context"
	"time"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
	"github.com/anatolykoptev/go_ytcode/internal/engine/sources"
	"github.com/anatolykoptev/go_ytcode/internal/engine/store"
)

// Extractor is the service surface both transports depend on.
type Extractor interface {
	Submit(ctx context.Context, url string, force bool) (*store.Record, error)
	Get(ctx context.Context, id string) (*store.Record, error)
	List(ctx context.Context, limit int) ([]store.Record, error)
	Download(ctx context.Context, id string) (string, *store.Record, error)
}

// RecordView is the wire form of a record.
type RecordView struct {
	ID           string                   `json:"id"`
	VideoID      string                   `json:"video_id"`
	URL          string                   `json:"url"`
	Title        string                   `json:"title"`
	Description  string                   `json:"description,omitempty"`
	Status       string                   `json:"status"`
	Source       string                   `json:"source,omitempty"`
	Error        string                   `json:"error,omitempty"`
	HasValidCode bool                     `json:"has_valid_code"`
	Files        int                      `json:"files"`
	CreatedAt    string                   `json:"created_at"`
	UpdatedAt    string                   `json:"updated_at"`
	ExtractedAt  string                   `json:"extracted_at,omitempty"`
	Result       *engine.ExtractionResult `json:"result,omitempty"`
}

// viewOf converts r; withResult controls whether the full result is embedded.
func viewOf(r *store.Record, withResult bool) RecordView {
	v := RecordView{
		ID:           r.ID,
		VideoID:      r.VideoID,
		URL:          sources.WatchURL(r.VideoID),
		Title:        r.Title,
		Description:  r.Description,
		Status:       string(r.Status),
		Source:       r.Source,
		Error:        r.Error,
		HasValidCode: r.HasValidCode(),
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
	if r.ExtractedAt != nil {
		v.ExtractedAt = r.ExtractedAt.Format(time.RFC3339)
	}
	if r.Result != nil {
		v.Files = len(r.Result.Files)
		if withResult {
			v.Result = r.Result
		}
	}
	return v
}

func viewsOf(records []store.Record) []RecordView {
	out := make([]RecordView, 0, len(records))
	for i := range records {
		out = append(out, viewOf(&records[i], false))
	}
	return out
}

// archiveFilename is the download name offered to clients.
func archiveFilename(r *store.Record) string {
	return engine.Slugify(r.Title) + "-code.zip"
}

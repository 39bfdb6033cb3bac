package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// Upstream endpoints. Package vars so tests can point them at httptest servers.
var (
	oembedEndpoint    = "https://www.youtube.com/oembed"
	timedTextEndpoint = "https://www.youtube.com/api/timedtext"
	watchPageEndpoint = "https://www.youtube.com/watch"
)

// UnknownTitle is the placeholder title when oEmbed metadata is unavailable.
const UnknownTitle = "Unknown Title"

type oembedResp struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// FetchVideoMeta returns title and author for a video via oEmbed.
// Never fails: any upstream problem yields the placeholder record.
func FetchVideoMeta(ctx context.Context, videoID string) engine.VideoMeta {
	engine.IncrMetadataRequests()

	cacheKey := engine.CacheKey("oembed", videoID)
	if meta, ok := engine.CacheLoadJSON[engine.VideoMeta](ctx, cacheKey); ok {
		return meta
	}

	meta, err := fetchOEmbed(ctx, videoID)
	if err != nil {
		engine.IncrMetadataErrors()
		slog.Warn("youtube: metadata fetch failed", slog.String("video", videoID), slog.Any("error", err))
		return engine.VideoMeta{Title: UnknownTitle}
	}
	engine.CacheStoreJSON(ctx, cacheKey, meta)
	return meta
}

func fetchOEmbed(ctx context.Context, videoID string) (engine.VideoMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.MetadataTimeout)
	defer cancel()

	if err := engine.WaitYouTube(ctx); err != nil {
		return engine.VideoMeta{}, err
	}

	q := url.Values{}
	q.Set("url", WatchURL(videoID))
	q.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oembedEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return engine.VideoMeta{}, err
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)
	req.Header.Set("Accept", "application/json")

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		return engine.VideoMeta{}, fmt.Errorf("oembed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return engine.VideoMeta{}, fmt.Errorf("oembed: %w", &engine.HTTPStatusError{StatusCode: resp.StatusCode})
	}

	var body oembedResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return engine.VideoMeta{}, fmt.Errorf("oembed decode: %w", err)
	}

	meta := engine.VideoMeta{Title: body.Title}
	if meta.Title == "" {
		meta.Title = UnknownTitle
	}
	if body.AuthorName != "" {
		meta.Description = "By " + body.AuthorName
	}
	return meta, nil
}

package sources

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// FetchWatchDescription returns the video description advertised in the watch page
// meta tags (og:description, then name=description). Returns "" on any failure.
func FetchWatchDescription(ctx context.Context, videoID string) string {
	cacheKey := engine.CacheKey("description", videoID)
	if data, ok := engine.CacheGet(ctx, cacheKey); ok {
		return string(data)
	}

	page, err := watchPage(ctx, videoID)
	if err != nil {
		slog.Debug("youtube: watch page fetch failed", slog.String("video", videoID), slog.Any("error", err))
		return ""
	}

	desc := MetaDescription(page)
	if desc != "" {
		engine.CacheSet(ctx, cacheKey, []byte(desc))
	}
	return desc
}

type watchPageKey struct{}

type watchPageEntry struct {
	once sync.Once
	page []byte
	err  error
}

type watchPageMemo struct {
	mu      sync.Mutex
	entries map[string]*watchPageEntry
}

// WithWatchPageMemo returns a context under which each watch page is fetched
// at most once, shared by the transcript and description stages.
func WithWatchPageMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, watchPageKey{}, &watchPageMemo{entries: map[string]*watchPageEntry{}})
}

// watchPage fetches the watch page, reusing the body memoized on ctx if any.
func watchPage(ctx context.Context, videoID string) ([]byte, error) {
	fetch := func() ([]byte, error) {
		return engine.FetchBody(ctx, watchPageEndpoint+"?v="+url.QueryEscape(videoID), true)
	}
	memo, ok := ctx.Value(watchPageKey{}).(*watchPageMemo)
	if !ok {
		return fetch()
	}
	memo.mu.Lock()
	e, ok := memo.entries[videoID]
	if !ok {
		e = &watchPageEntry{}
		memo.entries[videoID] = e
	}
	memo.mu.Unlock()

	e.once.Do(func() { e.page, e.err = fetch() })
	return e.page, e.err
}

// MetaDescription parses HTML and returns the og:description content,
// falling back to <meta name="description">.
func MetaDescription(page []byte) string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}

	var og, plain string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if og != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var key, content string
			for _, a := range n.Attr {
				switch strings.ToLower(a.Key) {
				case "property", "name", "itemprop":
					if key == "" || strings.EqualFold(a.Val, "og:description") {
						key = strings.ToLower(a.Val)
					}
				case "content":
					content = a.Val
				}
			}
			switch key {
			case "og:description":
				og = content
			case "description":
				if plain == "" {
					plain = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if og != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(plain)
}

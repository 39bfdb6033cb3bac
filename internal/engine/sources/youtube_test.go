package sources

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

func TestResolveVideoID(t *testing.T) {
	const want = "dQw4w9WgXcQ"
	valid := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42s",
		"https://youtu.be/dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=abc",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube.com/v/dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ",
		"https://m.youtube.com/shorts/dQw4w9WgXcQ?feature=share",
		"dQw4w9WgXcQ",
		"  dQw4w9WgXcQ \n",
	}
	for _, in := range valid {
		t.Run(in, func(t *testing.T) {
			got, ok := ResolveVideoID(in)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}

	invalid := []string{
		"",
		"not a url",
		"https://vimeo.com/123456789",
		"https://www.youtube.com/watch?v=short",
		"dQw4w9WgXc",
		"dQw4w9WgXcQX",
		"https://www.youtube.com/channel/",
	}
	for _, in := range invalid {
		t.Run("invalid/"+in, func(t *testing.T) {
			_, ok := ResolveVideoID(in)
			assert.False(t, ok)
		})
	}
}

func TestFetchVideoMeta(t *testing.T) {
	newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oembed", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Build a REST API with Spring Boot","author_name":"Dev Channel"}`))
	}))

	meta := FetchVideoMeta(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, "Build a REST API with Spring Boot", meta.Title)
	assert.Equal(t, "By Dev Channel", meta.Description)
}

func TestFetchVideoMetaDefaults(t *testing.T) {
	t.Run("upstream error", func(t *testing.T) {
		newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusNotFound)
		}))
		meta := FetchVideoMeta(context.Background(), "aaaaaaaaaaa")
		assert.Equal(t, engine.VideoMeta{Title: UnknownTitle}, meta)
	})

	t.Run("missing title", func(t *testing.T) {
		newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"author_name":"Someone"}`))
		}))
		meta := FetchVideoMeta(context.Background(), "bbbbbbbbbbb")
		assert.Equal(t, UnknownTitle, meta.Title)
		assert.Equal(t, "By Someone", meta.Description)
	})
}

const longCaptions = `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
	`<text start="0.0" dur="2.1">Hello everyone, today we&amp;#39;re building</text>` +
	`<text start="2.1" dur="3.0"><font color="#FFFFFF">a REST API</font> with Spring Boot
and Java from scratch</text></transcript>`

const longCaptionsText = "Hello everyone, today we're building a REST API with Spring Boot and Java from scratch"

func TestFetchTranscriptStageOne(t *testing.T) {
	var watchHits atomic.Int32
	newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/timedtext":
			assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
			assert.Equal(t, "en", r.URL.Query().Get("lang"))
			assert.Equal(t, "asr", r.URL.Query().Get("kind"))
			_, _ = w.Write([]byte(longCaptions))
		case "/watch":
			watchHits.Add(1)
			http.NotFound(w, r)
		}
	}))

	got := FetchTranscript(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, longCaptionsText, got)
	assert.Zero(t, watchHits.Load(), "watch page must not be fetched when stage 1 is usable")
}

func TestFetchTranscriptWatchPageFallback(t *testing.T) {
	watchPage := `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":` +
		`{"captionTracks":[{"baseUrl":"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ\u0026track=1\u0026lang=en","languageCode":"en"},` +
		`{"baseUrl":"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ\u0026track=2","languageCode":"de"}]}}};</script></html>`

	newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/timedtext" && r.URL.Query().Get("track") == "1":
			assert.Equal(t, "en", r.URL.Query().Get("lang"))
			_, _ = w.Write([]byte(longCaptions))
		case r.URL.Path == "/api/timedtext" && r.URL.Query().Get("track") == "2":
			t.Error("only the first caption track should be fetched")
		case r.URL.Path == "/api/timedtext":
			_, _ = w.Write([]byte(`<transcript><text>too short</text></transcript>`))
		case r.URL.Path == "/watch":
			_, _ = w.Write([]byte(watchPage))
		default:
			http.NotFound(w, r)
		}
	}))

	got := FetchTranscript(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, longCaptionsText, got)
}

func TestFetchTranscriptUnavailable(t *testing.T) {
	newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/timedtext":
			w.WriteHeader(http.StatusOK)
		case "/watch":
			_, _ = w.Write([]byte(`<html><body>no captions here</body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))

	got := FetchTranscript(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, engine.TranscriptUnavailable, got)
}

func TestFirstCaptionTrackURLFallsBackToRegex(t *testing.T) {
	page := []byte(`"captionTracks":[{"baseUrl":"https:\/\/www.youtube.com\/api\/timedtext?v=x\u0026lang=en", broken`)
	got, err := firstCaptionTrackURL(page)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/api/timedtext?v=x&lang=en", got)

	_, err = firstCaptionTrackURL([]byte("<html></html>"))
	assert.Error(t, err)
}

func TestParseCaptionXML(t *testing.T) {
	assert.Equal(t, "", ParseCaptionXML([]byte("")))
	assert.Equal(t, "a b", ParseCaptionXML([]byte(`<transcript><text>a</text><text>  </text><text>b</text></transcript>`)))
	assert.Equal(t, "Tom & Jerry", ParseCaptionXML([]byte(`<transcript><text>Tom &amp;amp; Jerry</text></transcript>`)))
}

func TestMetaDescription(t *testing.T) {
	page := `<html><head>
<meta name="description" content="plain description">
<meta property="og:description" content=" Code: https://github.com/acme/widgets ">
</head></html>`
	assert.Equal(t, "Code: https://github.com/acme/widgets", MetaDescription([]byte(page)))

	plainOnly := `<html><head><meta name="description" content="only plain"></head></html>`
	assert.Equal(t, "only plain", MetaDescription([]byte(plainOnly)))

	assert.Equal(t, "", MetaDescription([]byte(strings.Repeat("<div>", 3))))
}

func TestWatchPageMemoSharesOneFetch(t *testing.T) {
	watchPage := `<html><head><meta property="og:description" content="Repo: https://github.com/acme/widgets"></head>` +
		`<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":` +
		`{"captionTracks":[{"baseUrl":"https://www.youtube.com/api/timedtext?v=dQw4w9WgXcQ&track=1","languageCode":"en"}]}}};</script></html>`

	var watchHits atomic.Int32
	newUpstream(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/timedtext" && r.URL.Query().Get("track") == "1":
			_, _ = w.Write([]byte(longCaptions))
		case r.URL.Path == "/api/timedtext":
			http.NotFound(w, r)
		case r.URL.Path == "/watch":
			watchHits.Add(1)
			_, _ = w.Write([]byte(watchPage))
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := WithWatchPageMemo(context.Background())
	assert.Equal(t, longCaptionsText, FetchTranscript(ctx, "dQw4w9WgXcQ"))
	assert.Equal(t, "Repo: https://github.com/acme/widgets", FetchWatchDescription(ctx, "dQw4w9WgXcQ"))
	assert.Equal(t, int32(1), watchHits.Load())

	// Without the memo each stage fetches on its own.
	_ = FetchWatchDescription(context.Background(), "aaaaaaaaaaa")
	assert.Equal(t, int32(2), watchHits.Load())
}

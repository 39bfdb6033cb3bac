package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// Transcript fetching.
// Stage 1: timedtext API with lang/kind params.
// Stage 2: watch page HTML → "captionTracks" array → first baseUrl → caption XML.
// Anything under minTranscriptChars counts as no transcript.

const minTranscriptChars = 50

const captionTracksMarker = `"captionTracks":`

var (
	captionTextRe = regexp.MustCompile(`(?s)<text[^>]*>(.*?)</text>`)
	baseURLRe     = regexp.MustCompile(`"baseUrl":"([^"]+)"`)
)

type captionTrackRef struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// FetchTranscript returns plain transcript text for a video, or
// engine.TranscriptUnavailable when neither stage yields usable text.
func FetchTranscript(ctx context.Context, videoID string) string {
	engine.IncrTranscriptRequests()

	cacheKey := engine.CacheKey("transcript", videoID, engine.Cfg.TranscriptLang, engine.Cfg.TranscriptKind)
	if data, ok := engine.CacheGet(ctx, cacheKey); ok {
		return string(data)
	}

	text, err := fetchTimedTextAPI(ctx, videoID)
	if err != nil {
		slog.Debug("youtube: timedtext failed", slog.String("video", videoID), slog.Any("error", err))
	}

	if !usableTranscript(text) {
		engine.IncrTranscriptFallbacks()
		scraped, err := fetchTranscriptViaWatchPage(ctx, videoID)
		if err != nil {
			slog.Debug("youtube: watch page captions failed", slog.String("video", videoID), slog.Any("error", err))
		}
		text = scraped
	}

	if !usableTranscript(text) {
		engine.IncrTranscriptMisses()
		slog.Info("youtube: transcript unavailable", slog.String("video", videoID))
		return engine.TranscriptUnavailable
	}

	engine.CacheSet(ctx, cacheKey, []byte(text))
	return text
}

func usableTranscript(s string) bool {
	return utf8.RuneCountInString(s) >= minTranscriptChars
}

// fetchTimedTextAPI is stage 1.
func fetchTimedTextAPI(ctx context.Context, videoID string) (string, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", engine.Cfg.TranscriptLang)
	q.Set("kind", engine.Cfg.TranscriptKind)

	body, err := engine.FetchBody(ctx, timedTextEndpoint+"?"+q.Encode(), false)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", errors.New("empty timedtext body")
	}
	return ParseCaptionXML(body), nil
}

// fetchTranscriptViaWatchPage is stage 2.
func fetchTranscriptViaWatchPage(ctx context.Context, videoID string) (string, error) {
	page, err := watchPage(ctx, videoID)
	if err != nil {
		return "", err
	}

	trackURL, err := firstCaptionTrackURL(page)
	if err != nil {
		return "", err
	}

	body, err := engine.FetchBody(ctx, trackURL, false)
	if err != nil {
		return "", err
	}
	return ParseCaptionXML(body), nil
}

// firstCaptionTrackURL pulls the first track's baseUrl out of the watch page's captionTracks array.
func firstCaptionTrackURL(page []byte) (string, error) {
	idx := bytes.Index(page, []byte(captionTracksMarker))
	if idx < 0 {
		return "", errors.New("captionTracks not found in watch page")
	}
	rest := bytes.TrimLeft(page[idx+len(captionTracksMarker):], " \t\r\n")

	var raw string
	if arr := extractBalanced(rest, '[', ']'); arr != nil {
		var tracks []captionTrackRef
		if err := json.Unmarshal(arr, &tracks); err == nil && len(tracks) > 0 {
			raw = tracks[0].BaseURL
		}
	}
	if raw == "" {
		// Malformed array: fall back to the first baseUrl literal after the marker.
		m := baseURLRe.FindSubmatch(rest)
		if m == nil {
			return "", errors.New("no caption track baseUrl")
		}
		raw = string(m[1])
	}

	raw = strings.ReplaceAll(raw, `\u0026`, "&")
	raw = strings.ReplaceAll(raw, `\/`, "/")
	if strings.HasPrefix(raw, "/") {
		raw = "https://www.youtube.com" + raw
	}
	return raw, nil
}

// ParseCaptionXML extracts every <text> node, decodes it and joins with single spaces.
// Malformed XML falls back to a regex scan over the raw body.
func ParseCaptionXML(body []byte) string {
	lines, err := decodeTextNodes(body)
	if err != nil && len(lines) == 0 {
		for _, m := range captionTextRe.FindAllSubmatch(body, -1) {
			lines = append(lines, string(m[1]))
		}
	}

	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := engine.DecodeCaptionText(line); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// decodeTextNodes walks the token stream collecting the raw inner markup of every <text> element.
func decodeTextNodes(body []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var lines []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "text" {
			continue
		}
		var node struct {
			Inner string `xml:",innerxml"`
		}
		if err := dec.DecodeElement(&node, &start); err != nil {
			return lines, err
		}
		lines = append(lines, node.Inner)
	}
}

// extractBalanced returns the bracketed value starting at b[0] == open by tracking depth.
func extractBalanced(b []byte, open, closing byte) []byte {
	if len(b) == 0 || b[0] != open {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case open:
				depth++
			case closing:
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}

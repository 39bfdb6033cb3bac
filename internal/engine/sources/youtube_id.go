package sources

import (
	"regexp"
	"strings"
)

// videoIDPatterns are tried in order; the first capture of exactly 11
// characters from [A-Za-z0-9_-] wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`watch\?(?:[^#\s]*&)?v=([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	regexp.MustCompile(`/embed/([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	regexp.MustCompile(`/v/([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`),
	regexp.MustCompile(`^([A-Za-z0-9_-]{11})$`),
}

// ResolveVideoID extracts the 11-character video ID from a YouTube URL or a bare ID.
// ok is false when no pattern matches; callers treat that as invalid input.
func ResolveVideoID(input string) (id string, ok bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(input); len(m) >= 2 {
			return m[1], true
		}
	}
	return "", false
}

// WatchURL returns the canonical watch page URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

package engine

import (
	"html"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// UserAgentBot identifies API calls (oEmbed, GitHub, LLM endpoints).
const UserAgentBot = "YTCode/1.0"

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	slugStripRe  = regexp.MustCompile(`[^a-z0-9]+`)
)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// DecodeCaptionText turns one caption cue into plain text: entities are decoded
// (twice, timedtext double-escapes), tags dropped, runs of whitespace collapsed.
func DecodeCaptionText(s string) string {
	s = html.UnescapeString(html.UnescapeString(s))
	s = CleanHTML(s)
	return CollapseSpaces(s)
}

// CollapseSpaces replaces every run of whitespace with a single space and trims.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
// Returns "video" for input with nothing usable. The result is ASCII, at most 80 bytes.
func Slugify(s string) string {
	slug := strings.Trim(slugStripRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "video"
	}
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	return slug
}

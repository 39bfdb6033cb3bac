package sources

// YouTube access is split across files by responsibility:
//   youtube_id.go        : URL → 11-char video ID
//   youtube_oembed.go    : title/author via oEmbed, endpoint vars
//   youtube_transcript.go: timedtext API, then watch-page captionTracks fallback
//   youtube_page.go      : watch-page description (og:description)

package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

func TestBuildUserPrompt(t *testing.T) {
	got := BuildUserPrompt("React Hooks", "we start with useState", 1000)
	assert.True(t, strings.HasPrefix(got, "Video Title: React Hooks\n\nTranscript (if available):\nwe start with useState"))
	assert.Contains(t, got, "IMPORTANT: Generate a COMPLETE project structure")
}

func TestBuildUserPrompt_NoTranscript(t *testing.T) {
	for _, transcript := range []string{"", "  ", engine.TranscriptUnavailable} {
		got := BuildUserPrompt("React Hooks", transcript, 1000)
		assert.Contains(t, got, noTranscript)
		assert.NotContains(t, got, engine.TranscriptUnavailable)
	}
}

func TestBuildUserPrompt_Truncates(t *testing.T) {
	long := strings.Repeat("word ", 5000)
	got := BuildUserPrompt("t", long, 100)
	assert.Less(t, len(got), 1000)
}

func TestBuildUserPrompt_EmptyTitle(t *testing.T) {
	assert.Contains(t, BuildUserPrompt(" ", "x", 10), "Video Title: Untitled video")
}

func TestSystemPromptMentionsSchema(t *testing.T) {
	for _, key := range []string{"stack", "files", "setup_instructions", "dependencies", "tutorial_guide", "ide_recommendations", "prerequisites", "setup_guide", "run_guide"} {
		assert.Contains(t, SystemPrompt, `"`+key+`"`)
	}
}

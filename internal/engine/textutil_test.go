package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCaptionText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"double escaped", "it&amp;#39;s fine", "it's fine"},
		{"tags and whitespace", "<font color=\"#fff\">let's</font>\n  build", "let's build"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeCaptionText(tt.in))
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "react-hooks-in-10-minutes", Slugify("React Hooks in 10 Minutes!"))
	assert.Equal(t, "video", Slugify("!!!"))
	assert.Len(t, Slugify(strings.Repeat("a", 200)), 80)
}

func TestExtensionFor(t *testing.T) {
	tests := map[string]string{
		"javascript": "js",
		"TypeScript": "ts",
		"c#":         "cs",
		"csharp":     "cs",
		"c++":        "cpp",
		"shell":      "sh",
		"yaml":       "yml",
		"markdown":   "md",
		"cobol":      "txt",
		"":           "txt",
	}
	for lang, want := range tests {
		assert.Equal(t, want, ExtensionFor(lang), lang)
	}
}

func TestLanguageForPath(t *testing.T) {
	assert.Equal(t, "python", LanguageForPath("app/main.py"))
	assert.Equal(t, "go", LanguageForPath("cmd/server/main.go"))
	assert.Equal(t, "dockerfile", LanguageForPath("Dockerfile"))
	assert.Equal(t, "", LanguageForPath("LICENSE"))
}

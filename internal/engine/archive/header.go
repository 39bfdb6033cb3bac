package archive

import (
	"path"
	"strings"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

const headerTag = "Extracted from YouTube tutorial"

type commentStyle int

const (
	styleSlash commentStyle = iota
	styleDoc
	stylePython
	stylePHP
	styleMarkup
	styleCSS
	styleHash
	styleSQL
	styleNone
)

var languageStyles = map[string]commentStyle{
	"javascript": styleDoc, "typescript": styleDoc, "jsx": styleDoc, "tsx": styleDoc,
	"python": stylePython,
	"php":    stylePHP,
	"html":   styleMarkup, "xml": styleMarkup, "markdown": styleMarkup, "vue": styleMarkup, "svelte": styleMarkup,
	"css": styleCSS, "scss": styleCSS,
	"bash": styleHash, "shell": styleHash, "sh": styleHash, "yaml": styleHash, "ruby": styleHash,
	"toml": styleHash, "dockerfile": styleHash, "makefile": styleHash, "text": styleHash,
	"sql":  styleSQL,
	"json": styleNone,
}

// filenameStyles override the language for files whose syntax is fixed by name.
var filenameStyles = map[string]commentStyle{
	"go.mod":           styleSlash,
	"go.sum":           styleNone,
	"requirements.txt": styleHash,
	".gitignore":       styleHash,
	".env":             styleHash,
	".env.example":     styleHash,
	"license":          styleNone,
}

// directivePrefixes must stay on the first line; files starting with one get no header.
var directivePrefixes = []string{"#!", "<?php", "<?xml", "<!doctype"}

// FileHeader returns the comment block placed before f's code in the archive.
func FileHeader(f engine.CodeFile) string {
	head := strings.ToLower(strings.TrimLeft(f.Code, " \t\r\n"))
	for _, prefix := range directivePrefixes {
		if strings.HasPrefix(head, prefix) {
			return ""
		}
	}

	desc := strings.TrimSpace(strings.ReplaceAll(f.Description, "\n", " "))
	blockDesc := strings.ReplaceAll(desc, "*/", "* /")
	style, ok := filenameStyles[strings.ToLower(path.Base(f.Path))]
	if !ok {
		style, ok = languageStyles[strings.ToLower(strings.TrimSpace(f.Language))]
	}
	if !ok {
		style = styleSlash
	}

	switch style {
	case styleDoc:
		return "/**\n * " + blockDesc + "\n * " + headerTag + "\n */\n\n"
	case stylePython:
		return "\"\"\"\n" + strings.ReplaceAll(desc, `"""`, `'''`) + "\n" + headerTag + "\n\"\"\"\n\n"
	case stylePHP:
		return "<?php\n/**\n * " + blockDesc + "\n * " + headerTag + "\n */\n\n"
	case styleMarkup:
		return "<!-- " + strings.ReplaceAll(desc, "--", "-") + " - " + headerTag + " -->\n\n"
	case styleCSS:
		return "/* " + blockDesc + " - " + headerTag + " */\n\n"
	case styleHash:
		return "# " + desc + "\n# " + headerTag + "\n\n"
	case styleSQL:
		return "-- " + desc + "\n-- " + headerTag + "\n\n"
	case styleNone:
		return ""
	}
	return "// " + desc + "\n// " + headerTag + "\n\n"
}

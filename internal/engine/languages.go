package engine

import (
	"path"
	"strings"
)

// languageExtensions maps a lowercased language name to exactly one file extension.
var languageExtensions = map[string]string{
	"javascript": "js",
	"typescript": "ts",
	"python":     "py",
	"php":        "php",
	"java":       "java",
	"csharp":     "cs",
	"c#":         "cs",
	"cpp":        "cpp",
	"c++":        "cpp",
	"c":          "c",
	"ruby":       "rb",
	"go":         "go",
	"rust":       "rs",
	"swift":      "swift",
	"kotlin":     "kt",
	"html":       "html",
	"css":        "css",
	"scss":       "scss",
	"sql":        "sql",
	"bash":       "sh",
	"shell":      "sh",
	"json":       "json",
	"xml":        "xml",
	"yaml":       "yml",
	"toml":       "toml",
	"markdown":   "md",
	"jsx":        "jsx",
	"tsx":        "tsx",
	"vue":        "vue",
	"svelte":     "svelte",
}

// extensionLanguages is the reverse lookup for files the model left untagged.
// Ambiguous extensions resolve to the first language listed here.
var extensionLanguages = map[string]string{
	"js": "javascript", "mjs": "javascript", "cjs": "javascript",
	"ts": "typescript", "py": "python", "php": "php", "java": "java",
	"cs": "csharp", "cpp": "cpp", "cc": "cpp", "c": "c", "h": "c",
	"rb": "ruby", "go": "go", "rs": "rust", "swift": "swift", "kt": "kotlin",
	"html": "html", "htm": "html", "css": "css", "scss": "scss", "sql": "sql",
	"sh": "bash", "json": "json", "xml": "xml", "yml": "yaml", "yaml": "yaml",
	"toml": "toml", "md": "markdown", "jsx": "jsx", "tsx": "tsx",
	"vue": "vue", "svelte": "svelte",
}

// ExtensionFor returns the file extension for a language, "txt" when unknown.
func ExtensionFor(language string) string {
	if ext, ok := languageExtensions[strings.ToLower(strings.TrimSpace(language))]; ok {
		return ext
	}
	return "txt"
}

// LanguageForPath guesses a language from a file path's extension.
// Returns "" when the extension is not recognized.
func LanguageForPath(p string) string {
	base := strings.ToLower(path.Base(p))
	switch base {
	case "dockerfile":
		return "dockerfile"
	case "makefile":
		return "makefile"
	}
	ext := strings.TrimPrefix(path.Ext(base), ".")
	return extensionLanguages[ext]
}

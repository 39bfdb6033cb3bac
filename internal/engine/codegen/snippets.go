package codegen

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// Snippet patterns, tried in order. Group 1 is an optional language tag,
// group 2 the code; patterns without groups use the whole match.
var (
	fencedRe   = regexp.MustCompile("```(\\w+)?[ \\t]*\\n([\\s\\S]*?)\\n```")
	functionRe = regexp.MustCompile(`(?:function|def|public|private|const)\s+\w+\s*\([^)]*\)\s*\{[^}]+\}`)
	importRe   = regexp.MustCompile(`(?:import|from|require|using)\s+['"][^"']+['"]`)
)

const minSnippetLen = 10

// languageIndicators are checked in order, case-insensitively; first hit wins.
var languageIndicators = []struct {
	language string
	keywords []string
}{
	{"javascript", []string{"const ", "let ", "var ", "function", "=>", "console.log"}},
	{"typescript", []string{"interface ", ": string", ": number", ": boolean", "<t>"}},
	{"python", []string{"def ", "import ", "from ", "print(", "if __name__"}},
	{"php", []string{"<?php", "<?=", "$_", "echo "}},
	{"java", []string{"public class", "public static", "system.out"}},
	{"csharp", []string{"using system", "namespace "}},
	{"html", []string{"<html", "<div", "<span", "<!doctype"}},
	{"css", []string{"color:", "background:", "margin:"}},
	{"sql", []string{"select", "insert", "update", "where"}},
}

// DetectLanguage guesses the language of a code fragment. Returns "text"
// when nothing matches.
func DetectLanguage(code string) string {
	lower := strings.ToLower(code)
	for _, li := range languageIndicators {
		for _, kw := range li.keywords {
			if strings.Contains(lower, kw) {
				return li.language
			}
		}
	}
	return "text"
}

// ExtractSnippets pulls code that was spoken or pasted into a transcript:
// fenced blocks, then function definitions, then import lines. Fragments of
// ten characters or fewer and repeats are dropped. Files are numbered in
// discovery order under snippets/.
func ExtractSnippets(transcript string) []engine.CodeFile {
	if strings.TrimSpace(transcript) == "" {
		return nil
	}
	var files []engine.CodeFile
	seen := map[string]bool{}
	add := func(language, code string) {
		code = strings.TrimSpace(code)
		if len(code) <= minSnippetLen || seen[code] {
			return
		}
		seen[code] = true
		language = strings.ToLower(language)
		if language == "" {
			language = DetectLanguage(code)
		}
		name := "snippet_" + strconv.Itoa(len(files)+1) + "." + engine.ExtensionFor(language)
		files = append(files, engine.CodeFile{
			Filename:    name,
			Language:    language,
			Path:        "snippets/" + name,
			Description: "Code snippet extracted from video",
			Code:        code,
		})
	}

	for _, m := range fencedRe.FindAllStringSubmatch(transcript, -1) {
		add(m[1], m[2])
	}
	for _, re := range []*regexp.Regexp{functionRe, importRe} {
		for _, m := range re.FindAllString(transcript, -1) {
			add("", m)
		}
	}
	return files
}

// withSnippets appends transcript snippets to a fallback project. Template
// files keep their paths; snippets live under their own directory.
func withSnippets(result engine.ExtractionResult, transcript string) engine.ExtractionResult {
	snippets := ExtractSnippets(transcript)
	if len(snippets) == 0 {
		return result
	}
	result.Files = append(result.Files, snippets...)
	if result.Stack != nil {
		for _, f := range snippets {
			if f.Language != "text" && !slices.Contains(result.Stack.Languages, f.Language) {
				result.Stack.Languages = append(result.Stack.Languages, f.Language)
			}
		}
	}
	return result
}

package codegen

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// ErrUnparseable is returned by NormalizeStrict when no JSON object can be recovered.
var ErrUnparseable = errors.New("codegen: response is not a JSON object")

// ErrNoProject is returned by NormalizeStrict for an object with neither stack nor files.
var ErrNoProject = errors.New("codegen: response has no stack and no files")

var fenceRe = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \t]*\r?\n?(.*?)\r?\n?[ \t]*```")

// Normalize maps raw model output onto an ExtractionResult. It never fails:
// anything unparseable yields the all-defaults result. No confidence is computed.
func Normalize(raw string) engine.ExtractionResult {
	doc, err := decodeDocument(raw)
	if err != nil {
		slog.Debug("codegen: normalize fell back to defaults", slog.Any("error", err))
		return engine.EmptyResult()
	}
	return fromDocument(doc)
}

// NormalizeStrict is Normalize plus confidence scoring. It reports an error
// instead of returning defaults so the caller can try another provider.
func NormalizeStrict(raw string) (engine.ExtractionResult, error) {
	if strings.TrimSpace(raw) == "" {
		return engine.EmptyResult(), ErrEmptyResponse
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return engine.EmptyResult(), err
	}
	result := fromDocument(doc)
	if result.Stack == nil && len(result.Files) == 0 {
		return result, ErrNoProject
	}
	result.Confidence = scoreConfidence(doc, result)
	return result, nil
}

// decodeDocument recovers a JSON object from raw text: as-is, then inside a
// code fence, then the widest {...} span.
func decodeDocument(raw string) (map[string]any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrUnparseable
	}

	candidates := []string{text}
	if unfenced := stripFences(text); unfenced != text {
		candidates = append(candidates, unfenced)
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	var lastErr error = ErrUnparseable
	for _, c := range candidates {
		var v any
		if err := json.Unmarshal([]byte(c), &v); err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrUnparseable, err)
			continue
		}
		if doc, ok := v.(map[string]any); ok {
			return doc, nil
		}
		lastErr = ErrUnparseable
	}
	return nil, lastErr
}

// stripFences removes a surrounding markdown code fence whatever its language tag.
// An unterminated leading fence (truncated output) is also dropped.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		body := s[3:]
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		} else {
			body = strings.TrimLeft(body, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
		body = strings.TrimSpace(body)
		body = strings.TrimSuffix(body, "```")
		return strings.TrimSpace(body)
	}
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}

func fromDocument(doc map[string]any) engine.ExtractionResult {
	result := engine.EmptyResult()
	result.Stack = decodeStack(doc["stack"])
	result.Files = decodeFiles(doc["files"])
	result.SetupInstructions = decodeText(doc["setup_instructions"])
	result.Dependencies = decodeDependencies(doc["dependencies"])
	result.TutorialGuide = decodeGuide[engine.TutorialGuide](doc["tutorial_guide"])
	result.IDERecommendations = decodeGuide[engine.IDERecommendations](doc["ide_recommendations"])
	result.Prerequisites = decodeGuide[engine.Prerequisites](doc["prerequisites"])
	result.SetupGuide = decodeGuide[engine.SetupGuide](doc["setup_guide"])
	result.RunGuide = decodeGuide[engine.RunGuide](doc["run_guide"])
	return result
}

func decodeStack(v any) *engine.Stack {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	stack := &engine.Stack{
		Primary:     strings.TrimSpace(asString(m["primary"])),
		Languages:   asStrings(m["languages"]),
		Frameworks:  asStrings(m["frameworks"]),
		Description: asString(m["description"]),
	}
	if f, ok := unitFloat(m["confidence"]); ok {
		stack.Confidence = &f
	}
	return stack
}

func decodeFiles(v any) []engine.CodeFile {
	items, ok := v.([]any)
	if !ok {
		return []engine.CodeFile{}
	}
	files := make([]engine.CodeFile, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		f := engine.CodeFile{
			Filename:    strings.TrimSpace(asString(m["filename"])),
			Language:    strings.ToLower(strings.TrimSpace(asString(m["language"]))),
			Path:        strings.TrimSpace(asString(m["path"])),
			Description: asString(m["description"]),
			Code:        asString(m["code"]),
		}
		if f.Path == "" {
			f.Path = f.Filename
		}
		if f.Language == "" {
			f.Language = engine.LanguageForPath(f.Path)
		}
		if f.Language == "" {
			f.Language = "text"
		}
		if f.Path == "" {
			f.Path = "file_" + strconv.Itoa(len(files)+1) + "." + engine.ExtensionFor(f.Language)
		}
		if f.Filename == "" {
			f.Filename = path.Base(f.Path)
		}
		files = append(files, f)
	}
	return files
}

func decodeText(v any) string {
	if items, ok := v.([]any); ok {
		return strings.Join(asStrings(items), "\n")
	}
	return asString(v)
}

func decodeDependencies(v any) map[string][]string {
	deps := map[string][]string{}
	m, ok := v.(map[string]any)
	if !ok {
		return deps
	}
	for eco, list := range m {
		key := strings.ToLower(strings.TrimSpace(eco))
		if key == "" {
			continue
		}
		switch list.(type) {
		case []any, string:
			deps[key] = asStrings(list)
		}
	}
	return deps
}

// decodeGuide re-decodes an object into T. Mistyped fields are skipped;
// anything that is not an object yields nil.
func decodeGuide[T any](v any) *T {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return nil
		}
	}
	return &out
}

// scoreConfidence implements the trust scores for provider output.
func scoreConfidence(doc map[string]any, result engine.ExtractionResult) *engine.Confidence {
	c := &engine.Confidence{}
	switch {
	case result.Stack != nil && result.Stack.Confidence != nil:
		c.Stack = *result.Stack.Confidence
	case result.Stack != nil:
		c.Stack = 0.8
	}

	if len(result.Files) == 0 {
		c.Files = 0
		return c
	}
	if m, ok := doc["confidence"].(map[string]any); ok {
		if f, ok := unitFloat(m["files"]); ok {
			c.Files = f
			return c
		}
	}
	withCode := 0
	for _, f := range result.Files {
		if strings.TrimSpace(f.Code) != "" {
			withCode++
		}
	}
	c.Files = float64(withCode) / float64(len(result.Files))
	return c
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func asStrings(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if s := strings.TrimSpace(asString(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(x); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func unitFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

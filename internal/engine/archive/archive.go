// Package archive packages an extraction result as a downloadable ZIP.
package archive

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

// ErrEmptyName is returned when the archive name has no usable characters.
var ErrEmptyName = errors.New("archive: empty name")

// entryTime stamps every entry so rebuilding the same result yields identical bytes.
var entryTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Entry is one file inside the archive.
type Entry struct {
	Path    string
	Content string
}

// Build writes result to <dir>/<name>.zip and returns the path. An existing
// archive at that location is replaced atomically.
func Build(dir, name string, result engine.ExtractionResult) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", ErrEmptyName
	}
	out, err := write(dir, name+".zip", Entries(result))
	if err != nil {
		engine.IncrArchiveErrors()
		slog.Error("archive: build failed", slog.String("name", name), slog.Any("error", err))
		return "", err
	}
	engine.IncrArchiveBuilds()
	slog.Debug("archive: built", slog.String("path", out), slog.Int("files", len(result.Files)))
	return out, nil
}

func write(dir, filename string, entries []Entry) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filename+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("archive: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	zw := zip.NewWriter(tmp)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Path, Method: zip.Deflate, Modified: entryTime})
		if err != nil {
			tmp.Close()
			return "", fmt.Errorf("archive: add %s: %w", e.Path, err)
		}
		if _, err := w.Write([]byte(e.Content)); err != nil {
			tmp.Close()
			return "", fmt.Errorf("archive: write %s: %w", e.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("archive: finish: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("archive: close temp: %w", err)
	}

	target := filepath.Join(dir, filename)
	if err := os.Rename(tmpName, target); err != nil {
		return "", fmt.Errorf("archive: rename: %w", err)
	}
	return target, nil
}

// Entries lays out the archive contents in write order. Code files keep their
// declared paths; generated files never overwrite a code file.
func Entries(result engine.ExtractionResult) []Entry {
	var entries []Entry
	index := map[string]int{}
	put := func(p, content string) {
		if i, ok := index[p]; ok {
			entries[i].Content = content
			return
		}
		index[p] = len(entries)
		entries = append(entries, Entry{Path: p, Content: content})
	}

	files := make([]engine.CodeFile, len(result.Files))
	for i, f := range result.Files {
		f.Path = EntryPath(f, i)
		files[i] = f
		put(f.Path, FileHeader(f)+f.Code)
	}

	generated := []Entry{{Path: "README.md", Content: readme(result, files)}}
	if strings.TrimSpace(result.SetupInstructions) != "" {
		generated = append(generated, Entry{Path: "SETUP.md",
			Content: "# Setup Instructions\n\n```bash\n" + result.SetupInstructions + "\n```\n"})
	}
	if len(files) == 0 && result.RepositoryURL != "" {
		generated = append(generated, Entry{Path: "REPOSITORY.md", Content: repositoryNote(result)})
	}
	generated = append(generated, manifests(result.Dependencies)...)

	for _, g := range generated {
		if _, taken := index[g.Path]; taken {
			slog.Debug("archive: generated file shadowed by code file", slog.String("path", g.Path))
			continue
		}
		put(g.Path, g.Content)
	}
	return entries
}

// EntryPath returns a safe relative path for f. Absolute paths and paths that
// escape the archive root are re-rooted to their base name; i numbers files
// with no usable name.
func EntryPath(f engine.CodeFile, i int) string {
	p := f.Path
	if strings.TrimSpace(p) == "" {
		p = f.Filename
	}
	p = path.Clean(strings.ReplaceAll(strings.TrimSpace(p), `\`, "/"))
	if strings.HasPrefix(p, "/") || p == ".." || strings.HasPrefix(p, "../") || hasDriveLetter(p) {
		p = path.Base(p)
	}
	if p == "." || p == ".." || p == "/" || p == "" {
		p = "file_" + strconv.Itoa(i+1) + "." + engine.ExtensionFor(f.Language)
	}
	return p
}

func hasDriveLetter(p string) bool {
	return len(p) >= 2 && p[1] == ':' && (p[0] >= 'A' && p[0] <= 'Z' || p[0] >= 'a' && p[0] <= 'z')
}

func readme(result engine.ExtractionResult, files []engine.CodeFile) string {
	var sb strings.Builder
	sb.WriteString("# Code Extracted from YouTube Video\n\n")
	sb.WriteString("Generated by YouTube Code Extractor\n\n")

	if s := result.Stack; s != nil {
		sb.WriteString("## Tech Stack\n\n")
		fmt.Fprintf(&sb, "- **Primary**: %s\n", s.Primary)
		if len(s.Languages) > 0 {
			fmt.Fprintf(&sb, "- **Languages**: %s\n", strings.Join(s.Languages, ", "))
		}
		if len(s.Frameworks) > 0 {
			fmt.Fprintf(&sb, "- **Frameworks**: %s\n", strings.Join(s.Frameworks, ", "))
		}
		if s.Description != "" {
			fmt.Fprintf(&sb, "- **Description**: %s\n", s.Description)
		}
		sb.WriteString("\n")
	}

	if len(files) > 0 {
		sb.WriteString("## Files\n\n")
		for _, f := range files {
			fmt.Fprintf(&sb, "### `%s`\n%s\n\n", f.Path, f.Description)
		}
	}

	if result.RepositoryURL != "" {
		fmt.Fprintf(&sb, "## Repository\n\n%s\n\n", result.RepositoryURL)
	}

	if strings.TrimSpace(result.SetupInstructions) != "" {
		sb.WriteString("## Setup\n\n```bash\n" + result.SetupInstructions + "\n```\n")
	}
	return sb.String()
}

func repositoryNote(result engine.ExtractionResult) string {
	var sb strings.Builder
	sb.WriteString("# Source Repository\n\n")
	sb.WriteString("The video links to a public repository. Clone it to get the original code:\n\n")
	fmt.Fprintf(&sb, "```bash\ngit clone %s\n```\n", result.RepositoryURL)
	return sb.String()
}

type npmManifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies"`
}

type composerManifest struct {
	Name    string            `json:"name"`
	Require map[string]string `json:"require"`
}

// manifests synthesizes dependency files for the npm, pip and composer ecosystems.
func manifests(deps map[string][]string) []Entry {
	var out []Entry
	if pkgs := nonEmpty(deps["npm"]); len(pkgs) > 0 {
		out = append(out, Entry{Path: "package.json", Content: marshal(npmManifest{
			Name:         "youtube-extracted-code",
			Version:      "1.0.0",
			Dependencies: anyVersion(pkgs),
		})})
	}
	if pkgs := nonEmpty(deps["pip"]); len(pkgs) > 0 {
		out = append(out, Entry{Path: "requirements.txt", Content: strings.Join(pkgs, "\n") + "\n"})
	}
	if pkgs := nonEmpty(deps["composer"]); len(pkgs) > 0 {
		out = append(out, Entry{Path: "composer.json", Content: marshal(composerManifest{
			Name:    "youtube/extracted-code",
			Require: anyVersion(pkgs),
		})})
	}
	return out
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func anyVersion(pkgs []string) map[string]string {
	m := make(map[string]string, len(pkgs))
	for _, p := range pkgs {
		m[p] = "*"
	}
	return m
}

func marshal(v any) string {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "{}\n"
	}
	return string(data) + "\n"
}

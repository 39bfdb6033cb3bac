package archive

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

func readZip(t *testing.T, p string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(p)
	require.NoError(t, err)
	defer zr.Close()

	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
	}
	return out
}

func sampleResult() engine.ExtractionResult {
	r := engine.EmptyResult()
	r.Stack = &engine.Stack{Primary: "node", Languages: []string{"javascript"}, Frameworks: []string{"Express"}, Description: "API server"}
	r.Files = []engine.CodeFile{
		{Filename: "index.js", Language: "javascript", Path: "src/index.js", Description: "Entry point", Code: "console.log(1);\n"},
		{Filename: "app.py", Language: "python", Path: "tools/app.py", Description: "Helper", Code: "print(1)\n"},
		{Filename: "style.css", Language: "css", Path: "public/style.css", Description: "Styles", Code: "body{}\n"},
		{Filename: "data.json", Language: "json", Path: "data.json", Description: "Data", Code: "{}\n"},
	}
	r.SetupInstructions = "npm install\nnpm start"
	r.Dependencies = map[string][]string{"npm": {"express", "cors"}, "pip": {"requests"}}
	return r
}

func TestBuild_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	result := sampleResult()

	p, err := Build(dir, "dQw4w9WgXcQ", result)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dQw4w9WgXcQ.zip"), p)

	entries := readZip(t, p)
	for _, f := range result.Files {
		got, ok := entries[f.Path]
		require.True(t, ok, "missing %s", f.Path)
		assert.Equal(t, FileHeader(f)+f.Code, got)
	}

	assert.Contains(t, entries["README.md"], "- **Primary**: node")
	assert.Contains(t, entries["README.md"], "### `src/index.js`")
	assert.Contains(t, entries["SETUP.md"], "npm install\nnpm start")
	assert.Equal(t, "requests\n", entries["requirements.txt"])
	assert.NotContains(t, entries, "composer.json")

	var pkg npmManifest
	require.NoError(t, json.Unmarshal([]byte(entries["package.json"]), &pkg))
	assert.Equal(t, map[string]string{"express": "*", "cors": "*"}, pkg.Dependencies)
}

func TestBuild_OverwritesPreviousArchive(t *testing.T) {
	dir := t.TempDir()
	first := sampleResult()
	_, err := Build(dir, "vid", first)
	require.NoError(t, err)

	second := engine.EmptyResult()
	second.Files = []engine.CodeFile{{Path: "main.go", Language: "go", Code: "package main\n"}}
	p, err := Build(dir, "vid", second)
	require.NoError(t, err)

	entries := readZip(t, p)
	assert.Contains(t, entries, "main.go")
	assert.NotContains(t, entries, "src/index.js")

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestBuild_Reproducible(t *testing.T) {
	a, err := Build(t.TempDir(), "vid", sampleResult())
	require.NoError(t, err)
	b, err := Build(t.TempDir(), "vid", sampleResult())
	require.NoError(t, err)

	first, err := os.ReadFile(a)
	require.NoError(t, err)
	second, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_IOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Build(filepath.Join(blocker, "sub"), "vid", sampleResult())
	assert.Error(t, err)
}

func TestBuild_EmptyName(t *testing.T) {
	_, err := Build(t.TempDir(), "  ", sampleResult())
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestEntries_CodeFileWinsOverGenerated(t *testing.T) {
	r := engine.EmptyResult()
	r.Files = []engine.CodeFile{
		{Path: "package.json", Language: "json", Code: `{"name":"mine"}`},
		{Path: "README.md", Language: "markdown", Description: "Docs", Code: "# Mine\n"},
	}
	r.Dependencies = map[string][]string{"npm": {"react"}}

	got := map[string]string{}
	for _, e := range Entries(r) {
		_, dup := got[e.Path]
		require.False(t, dup, "duplicate entry %s", e.Path)
		got[e.Path] = e.Content
	}
	assert.Equal(t, `{"name":"mine"}`, got["package.json"])
	assert.Equal(t, "<!-- Docs - Extracted from YouTube tutorial -->\n\n# Mine\n", got["README.md"])
}

func TestEntries_RepositoryOnly(t *testing.T) {
	r := engine.EmptyResult()
	r.RepositoryURL = "https://github.com/acme/widgets"

	got := map[string]string{}
	for _, e := range Entries(r) {
		got[e.Path] = e.Content
	}
	assert.Contains(t, got["REPOSITORY.md"], "git clone https://github.com/acme/widgets")
	assert.Contains(t, got["README.md"], "https://github.com/acme/widgets")
}

func TestEntryPath(t *testing.T) {
	cases := []struct {
		file engine.CodeFile
		want string
	}{
		{engine.CodeFile{Path: "src/app.js"}, "src/app.js"},
		{engine.CodeFile{Path: "./src/../lib/x.js"}, "lib/x.js"},
		{engine.CodeFile{Path: "/etc/passwd"}, "passwd"},
		{engine.CodeFile{Path: "../../secret.txt"}, "secret.txt"},
		{engine.CodeFile{Path: `src\win\file.cs`}, "src/win/file.cs"},
		{engine.CodeFile{Path: "C:/Users/me/app.py"}, "app.py"},
		{engine.CodeFile{Filename: "only.rb"}, "only.rb"},
		{engine.CodeFile{Path: "..", Language: "go"}, "file_3.go"},
		{engine.CodeFile{Language: "python"}, "file_3.py"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EntryPath(tc.file, 2), "file %+v", tc.file)
	}
}

func TestFileHeader(t *testing.T) {
	cases := []struct {
		file engine.CodeFile
		want string
	}{
		{engine.CodeFile{Language: "javascript", Path: "a.js", Description: "Entry"}, "/**\n * Entry\n * Extracted from YouTube tutorial\n */\n\n"},
		{engine.CodeFile{Language: "python", Path: "a.py", Description: "Entry"}, "\"\"\"\nEntry\nExtracted from YouTube tutorial\n\"\"\"\n\n"},
		{engine.CodeFile{Language: "php", Path: "a.php", Description: "Entry", Code: "echo 1;"}, "<?php\n/**\n * Entry\n * Extracted from YouTube tutorial\n */\n\n"},
		{engine.CodeFile{Language: "php", Path: "a.php", Description: "Entry", Code: "<?php echo 1;"}, ""},
		{engine.CodeFile{Language: "html", Path: "a.html", Description: "Page"}, "<!-- Page - Extracted from YouTube tutorial -->\n\n"},
		{engine.CodeFile{Language: "css", Path: "a.css", Description: "Styles"}, "/* Styles - Extracted from YouTube tutorial */\n\n"},
		{engine.CodeFile{Language: "bash", Path: "run.sh", Description: "Run", Code: "#!/bin/sh\necho"}, ""},
		{engine.CodeFile{Language: "yaml", Path: "a.yml", Description: "Config"}, "# Config\n# Extracted from YouTube tutorial\n\n"},
		{engine.CodeFile{Language: "sql", Path: "a.sql", Description: "Schema"}, "-- Schema\n-- Extracted from YouTube tutorial\n\n"},
		{engine.CodeFile{Language: "json", Path: "a.json", Description: "Data"}, ""},
		{engine.CodeFile{Language: "text", Path: "go.mod", Description: "Module"}, "// Module\n// Extracted from YouTube tutorial\n\n"},
		{engine.CodeFile{Language: "go", Path: "main.go", Description: "Main"}, "// Main\n// Extracted from YouTube tutorial\n\n"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FileHeader(tc.file), "file %s (%s)", tc.file.Path, tc.file.Language)
	}
}

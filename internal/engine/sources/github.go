package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
)

var githubAPIBase = "https://api.github.com"

// RepoMeta holds GitHub repository metadata from the REST API.
type RepoMeta struct {
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Stars         int      `json:"stargazers_count"`
	Language      string   `json:"language"`
	Topics        []string `json:"topics"`
	DefaultBranch string   `json:"default_branch"`
	Archived      bool     `json:"archived"`
	HTMLURL       string   `json:"html_url"`
}

// ownerRepoRe matches github.com/:owner/:repo (with optional trailing path).
var ownerRepoRe = regexp.MustCompile(`(?i)github\.com/([A-Za-z0-9._-]+)/([A-Za-z0-9._-]+)`)

// repoLinkRe finds repository links in free text.
var repoLinkRe = regexp.MustCompile(`https?://(?:www\.)?github\.com/[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+/?`)

// ExtractOwnerRepo extracts owner and repo from any github.com URL.
func ExtractOwnerRepo(u string) (owner, repo string, ok bool) {
	m := ownerRepoRe.FindStringSubmatch(u)
	if m == nil {
		return "", "", false
	}
	repo = strings.TrimSuffix(m[2], ".git")
	// Skip non-repo GitHub pages (e.g. github.com/topics/golang, github.com/explore)
	for _, skip := range []string{"topics", "explore", "trending", "search", "settings", "notifications", "sponsors", "orgs"} {
		if strings.EqualFold(m[1], skip) || strings.EqualFold(m[2], skip) {
			return "", "", false
		}
	}
	return m[1], repo, true
}

// DetectRepository scans texts in priority order for github.com/<owner>/<repo> links
// and returns the first one answering a HEAD request with 2xx. Once a candidate
// validates nothing else is checked. Trailing slashes are stripped from the result.
func DetectRepository(ctx context.Context, texts ...string) (string, bool) {
	checked := make(map[string]bool)
	for _, text := range texts {
		if text == "" || text == engine.TranscriptUnavailable {
			continue
		}
		for _, candidate := range repoLinkRe.FindAllString(text, -1) {
			candidate = strings.TrimRight(candidate, "/.")
			if _, _, ok := ExtractOwnerRepo(candidate); !ok {
				continue
			}
			key := strings.ToLower(candidate)
			if checked[key] {
				continue
			}
			checked[key] = true

			if repoReachable(ctx, candidate) {
				engine.IncrReposDetected()
				slog.Info("github: repository detected", slog.String("url", candidate))
				return candidate, true
			}
		}
	}
	return "", false
}

// repoReachable issues a single HEAD with the repo-check timeout.
func repoReachable(ctx context.Context, repoURL string) bool {
	engine.IncrRepoChecks()

	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.RepoCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, repoURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		slog.Debug("github: repo check failed", slog.String("url", repoURL), slog.Any("error", err))
		return false
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// FetchRepoMeta fetches repository metadata from GitHub REST API.
func FetchRepoMeta(ctx context.Context, owner, repo string) (*RepoMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.FetchTimeout)
	defer cancel()

	cacheKey := engine.CacheKey("repo", strings.ToLower(owner), strings.ToLower(repo))
	if meta, ok := engine.CacheLoadJSON[RepoMeta](ctx, cacheKey); ok {
		return &meta, nil
	}

	apiURL := fmt.Sprintf("%s/repos/%s/%s", githubAPIBase, owner, repo)
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		req.Header.Set("User-Agent", engine.UserAgentBot)
		if engine.Cfg.GithubToken != "" {
			req.Header.Set("Authorization", "Bearer "+engine.Cfg.GithubToken)
		}
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API status %d for %s/%s", resp.StatusCode, owner, repo)
	}

	var meta RepoMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, err
	}
	engine.CacheStoreJSON(ctx, cacheKey, meta)
	return &meta, nil
}

// RepoStack builds a stack record from repository metadata.
// The language may be empty; topics double as framework hints.
func RepoStack(meta *RepoMeta) *engine.Stack {
	stack := &engine.Stack{
		Languages:   []string{},
		Frameworks:  []string{},
		Description: "Source code available in the linked repository.",
	}
	if meta == nil {
		return stack
	}
	if meta.Language != "" {
		stack.Primary = strings.ToLower(meta.Language)
		stack.Languages = []string{stack.Primary}
	}
	if len(meta.Topics) > 0 {
		stack.Frameworks = append(stack.Frameworks, meta.Topics...)
	}
	if meta.Description != "" {
		stack.Description = meta.Description
	}
	return stack
}

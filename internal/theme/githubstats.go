package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/refdocs/internal/logfields"
)

// StatsFileName is the prefetched stats file the GitHub widget reads
// before falling back to a client-side API call.
const StatsFileName = "github-stats.json"

// RepoStats is the shape of the prefetched stats file.
type RepoStats struct {
	Owner     string    `json:"owner"`
	Repo      string    `json:"repo"`
	Stars     int       `json:"stars"`
	Forks     int       `json:"forks"`
	Issues    int       `json:"issues"`
	ETag      string    `json:"etag,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

const statsTimeout = 5 * time.Second

// githubAPIBaseURL is swapped out in tests.
var githubAPIBaseURL = "https://api.github.com"

// PrefetchRepoStats fetches repository stats from the GitHub API and
// writes them into staticDir. A previously fetched ETag is replayed so an
// unchanged repository costs a 304. Failures only log; the widget then
// falls back to its client-side fetch.
func PrefetchRepoStats(ctx context.Context, staticDir, owner, repo string) {
	path := filepath.Join(staticDir, StatsFileName)
	prev := readStats(path)

	etag := ""
	if prev != nil && prev.Owner == owner && prev.Repo == repo {
		etag = prev.ETag
	}
	stats, err := fetchRepoStats(ctx, owner, repo, etag)
	if err != nil {
		slog.Debug("github stats prefetch failed",
			slog.String("repo", owner+"/"+repo), logfields.Error(err))
		return
	}
	if stats == nil {
		// Not modified; the file on disk is current.
		return
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		slog.Debug("github stats write failed", logfields.Error(err))
	}
}

func readStats(path string) *RepoStats {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var stats RepoStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil
	}
	return &stats
}

// fetchRepoStats returns nil stats without error on a 304 response.
func fetchRepoStats(ctx context.Context, owner, repo, etag string) (*RepoStats, error) {
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/repos/%s/%s", githubAPIBaseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned %s", resp.Status)
	}

	var payload struct {
		StargazersCount int `json:"stargazers_count"`
		ForksCount      int `json:"forks_count"`
		OpenIssuesCount int `json:"open_issues_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &RepoStats{
		Owner:     owner,
		Repo:      repo,
		Stars:     payload.StargazersCount,
		Forks:     payload.ForksCount,
		Issues:    payload.OpenIssuesCount,
		ETag:      resp.Header.Get("ETag"),
		FetchedAt: time.Now().UTC(),
	}, nil
}

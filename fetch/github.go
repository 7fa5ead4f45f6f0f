package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// GitHubProvider is the provider name used in errors and outcomes.
const GitHubProvider = "GitHub"

const githubAPI = "https://api.github.com"

// GitHubSource downloads a file from the newest Actions artifact of a branch.
type GitHubSource struct {
	client  *http.Client
	apiBase string // overrides the API root derived from the target
}

// NewGitHubSource creates a GitHubSource using client.
func NewGitHubSource(client *http.Client) *GitHubSource {
	return &GitHubSource{client: client}
}

// WithAPIBase returns a copy of s that talks to apiBase instead of the API
// derived from the request target.
func (s *GitHubSource) WithAPIBase(apiBase string) *GitHubSource {
	return &GitHubSource{client: s.client, apiBase: strings.TrimRight(apiBase, "/")}
}

type githubArtifact struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	SizeInBytes        int64     `json:"size_in_bytes"`
	ArchiveDownloadURL string    `json:"archive_download_url"`
	Expired            bool      `json:"expired"`
	CreatedAt          time.Time `json:"created_at"`
	WorkflowRun        struct {
		HeadBranch string `json:"head_branch"`
	} `json:"workflow_run"`
}

type githubArtifactList struct {
	TotalCount int              `json:"total_count"`
	Artifacts  []githubArtifact `json:"artifacts"`
}

// Fetch implements Source.
func (s *GitHubSource) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.Project == "" || req.ArtifactName == "" {
		return nil, errors.NewConfigurationError("incomplete github request",
			"GitHub requests need project and artifact_name.")
	}

	header := http.Header{}
	header.Set("Accept", "application/vnd.github+json")
	header.Set("X-GitHub-Api-Version", "2022-11-28")
	if req.Token != "" {
		header.Set("Authorization", "Bearer "+req.Token)
	}

	listURL := s.api(req.Target) + "/repos/" + escapeSegments(req.Project) +
		"/actions/artifacts?per_page=100&name=" + url.QueryEscape(req.ArtifactName)
	body, err := get(ctx, s.client, GitHubProvider, listURL, header)
	if err != nil {
		return nil, err
	}

	var list githubArtifactList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, errors.NewProviderError(GitHubProvider, 0, "unexpected artifact list payload", err)
	}
	artifact, ok := newestArtifact(list.Artifacts, req.ArtifactName, req.Branch)
	if !ok {
		return nil, errors.NewRetrievalError(GitHubProvider,
			fmt.Sprintf("no artifact named '%s' for branch '%s'", req.ArtifactName, req.Branch), nil)
	}

	archive, err := get(ctx, s.client, GitHubProvider, artifact.ArchiveDownloadURL, header)
	if err != nil {
		return nil, err
	}
	return extractMember(archive, req.ArtifactPath)
}

func (s *GitHubSource) api(target string) string {
	if s.apiBase != "" {
		return s.apiBase
	}
	host := strings.TrimSpace(target)
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	host = strings.TrimRight(host, "/")
	if host == "" || host == "github.com" || host == "api.github.com" {
		return githubAPI
	}
	return "https://" + host + "/api/v3"
}

// newestArtifact picks the most recent unexpired artifact built from branch.
func newestArtifact(artifacts []githubArtifact, name, branch string) (githubArtifact, bool) {
	var best githubArtifact
	found := false
	for _, a := range artifacts {
		if a.Expired || a.Name != name || a.WorkflowRun.HeadBranch != branch {
			continue
		}
		if !found || a.CreatedAt.After(best.CreatedAt) {
			best = a
			found = true
		}
	}
	return best, found
}

// extractMember returns the file at member inside a zip archive. An empty
// member selects the only file of the archive.
func extractMember(archive []byte, member string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, errors.NewRetrievalError(GitHubProvider, "artifact is not a zip archive", err)
	}

	var files []*zip.File
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() {
			files = append(files, f)
		}
	}

	var target *zip.File
	member = strings.TrimPrefix(member, "/")
	switch {
	case member == "" && len(files) == 1:
		target = files[0]
	case member == "":
		return nil, errors.NewRetrievalError(GitHubProvider,
			fmt.Sprintf("artifact contains %d files; artifact_path is required", len(files)), nil)
	default:
		for _, f := range files {
			if f.Name == member {
				target = f
				break
			}
		}
		if target == nil {
			for _, f := range files {
				if path.Base(f.Name) == path.Base(member) {
					target = f
					break
				}
			}
		}
	}
	if target == nil {
		return nil, errors.NewRetrievalError(GitHubProvider,
			fmt.Sprintf("file '%s' not found in artifact", member), nil)
	}

	rc, err := target.Open()
	if err != nil {
		return nil, errors.NewRetrievalError(GitHubProvider, "cannot open artifact member", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, MaxArtifactBytes))
	if err != nil {
		return nil, errors.NewRetrievalError(GitHubProvider, "cannot read artifact member", err)
	}
	return data, nil
}

package fetch

import (
	"context"
	"net/http"
	"net/url"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// GitLabProvider is the provider name used in errors and outcomes.
const GitLabProvider = "GitLab"

// GitLabSource downloads a single file from the latest successful job
// artifacts of a branch through the GitLab v4 API.
type GitLabSource struct {
	client *http.Client
}

// NewGitLabSource creates a GitLabSource using client.
func NewGitLabSource(client *http.Client) *GitLabSource {
	return &GitLabSource{client: client}
}

// Fetch implements Source.
func (s *GitLabSource) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.Project == "" || req.ArtifactPath == "" || req.JobName == "" {
		return nil, errors.NewConfigurationError("incomplete gitlab request",
			"GitLab requests need project, artifact_path and job_name.")
	}

	u := baseURL(req.Target) + "/api/v4/projects/" + url.PathEscape(req.Project) +
		"/jobs/artifacts/" + url.PathEscape(req.Branch) +
		"/raw/" + escapeSegments(req.ArtifactPath) +
		"?job=" + url.QueryEscape(req.JobName)

	header := http.Header{}
	if req.Token != "" {
		header.Set("PRIVATE-TOKEN", req.Token)
	}
	return get(ctx, s.client, GitLabProvider, u, header)
}

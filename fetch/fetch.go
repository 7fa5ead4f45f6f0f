// Package fetch retrieves dataset artifacts produced by CI jobs.
//
// Every failure is returned as one of the classified errors of pkg/errors so
// the caller can map it to an outcome without knowing which provider failed:
// AuthenticationError, RetrievalError or ProviderError.
package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
	"github.com/YuminosukeSato/icaprobe/pkg/log"
)

// Repository types understood by the Router.
const (
	RepoGitLab = "gitlab"
	RepoGitHub = "github"
	RepoFile   = "file"
	RepoGCS    = "gcs"
)

const (
	// DefaultTimeout bounds a single HTTP exchange with a provider.
	DefaultTimeout = 60 * time.Second
	// MaxArtifactBytes caps how much of an artifact is read into memory.
	MaxArtifactBytes = 1 << 30
)

// Request identifies one artifact. Which fields matter depends on RepoType.
type Request struct {
	RepoType     string
	Target       string // provider host, base URL, local directory or GCS bucket
	Project      string
	Branch       string
	ArtifactPath string
	JobName      string // gitlab only
	ArtifactName string // github only
	Token        string
}

// Source fetches artifacts from one kind of repository.
type Source interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// Router dispatches requests to the Source registered for their repo type.
type Router struct {
	sources map[string]Source
	logger  log.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithSource registers (or replaces) the source for repoType.
func WithSource(repoType string, src Source) RouterOption {
	return func(r *Router) {
		r.sources[repoType] = src
	}
}

// WithHTTPClient makes the default GitLab and GitHub sources use client.
func WithHTTPClient(client *http.Client) RouterOption {
	return func(r *Router) {
		r.sources[RepoGitLab] = NewGitLabSource(client)
		r.sources[RepoGitHub] = NewGitHubSource(client)
	}
}

// NewRouter returns a Router with the gitlab, github, file and gcs sources.
func NewRouter(opts ...RouterOption) *Router {
	client := &http.Client{Timeout: DefaultTimeout}
	r := &Router{
		sources: map[string]Source{
			RepoGitLab: NewGitLabSource(client),
			RepoGitHub: NewGitHubSource(client),
			RepoFile:   NewFileSource(),
			RepoGCS:    NewGCSSource(),
		},
		logger: log.GetLoggerWithName("fetch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch retrieves the artifact described by req.
func (r *Router) Fetch(ctx context.Context, req Request) ([]byte, error) {
	src, ok := r.sources[req.RepoType]
	if !ok {
		return nil, errors.NewConfigurationError("unsupported repo type",
			"Unsupported repo_type '%s'.", req.RepoType)
	}

	start := time.Now()
	data, err := src.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	r.logger.Info("artifact fetched",
		log.RepoTypeKey, req.RepoType,
		log.DataSizeKey, len(data),
		log.DurationMsKey, time.Since(start),
	)
	return data, nil
}

package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"cloud.google.com/go/storage"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

const csvBody = "f1,f2,y\n1,2,a\n3,4,b\n"

func TestGitLabSource_Fetch(t *testing.T) {
	var gotPath, gotQuery, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.Query().Get("job")
		gotToken = r.Header.Get("PRIVATE-TOKEN")
		_, _ = w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	src := NewGitLabSource(srv.Client())
	data, err := src.Fetch(context.Background(), Request{
		Target:       srv.URL,
		Project:      "group/dataset",
		Branch:       "main",
		ArtifactPath: "out/data.csv",
		JobName:      "build data",
		Token:        "glpat-x",
	})
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(data))
	assert.Equal(t, "/api/v4/projects/group%2Fdataset/jobs/artifacts/main/raw/out/data.csv", gotPath)
	assert.Equal(t, "build data", gotQuery)
	assert.Equal(t, "glpat-x", gotToken)
}

func TestGitLabSource_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   errors.Kind
		msg    string
	}{
		{http.StatusUnauthorized, `{"message":"401 Unauthorized"}`, errors.KindAuthentication, "401 Unauthorized"},
		{http.StatusForbidden, `{"message":"403 Forbidden"}`, errors.KindProvider, "403 Forbidden"},
		{http.StatusTooManyRequests, ``, errors.KindProvider, "429 Too Many Requests"},
		{http.StatusNotFound, `{"message":"404 Not found"}`, errors.KindRetrieval, "404 Not found"},
		{http.StatusInternalServerError, `oops`, errors.KindRetrieval, "500 Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGitLabSource(srv.Client()).Fetch(context.Background(), Request{
				Target: srv.URL, Project: "p", Branch: "master", ArtifactPath: "d.csv", JobName: "j",
			})
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
			assert.Contains(t, err.Error(), GitLabProvider)
		})
	}
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func githubServer(t *testing.T, archive []byte, listStatus int) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer ghp-x" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		switch r.URL.Path {
		case "/repos/acme/data/actions/artifacts":
			if listStatus != http.StatusOK {
				w.WriteHeader(listStatus)
				_, _ = w.Write([]byte(`{"message":"API rate limit exceeded"}`))
				return
			}
			now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			list := map[string]any{
				"total_count": 3,
				"artifacts": []map[string]any{
					{"id": 1, "name": "dataset", "expired": false, "created_at": now.Add(-time.Hour),
						"archive_download_url": srv.URL + "/download/1", "workflow_run": map[string]any{"head_branch": "main"}},
					{"id": 2, "name": "dataset", "expired": false, "created_at": now,
						"archive_download_url": srv.URL + "/download/2", "workflow_run": map[string]any{"head_branch": "main"}},
					{"id": 3, "name": "dataset", "expired": true, "created_at": now.Add(time.Hour),
						"archive_download_url": srv.URL + "/download/3", "workflow_run": map[string]any{"head_branch": "main"}},
				},
			}
			_ = json.NewEncoder(w).Encode(list)
		case "/download/2":
			_, _ = w.Write(archive)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}
	}))
	return srv
}

func TestGitHubSource_Fetch(t *testing.T) {
	archive := zipOf(t, map[string]string{"data/train.csv": csvBody, "README": "x"})
	srv := githubServer(t, archive, http.StatusOK)
	defer srv.Close()

	src := NewGitHubSource(srv.Client()).WithAPIBase(srv.URL)
	req := Request{Project: "acme/data", Branch: "main", ArtifactName: "dataset", ArtifactPath: "data/train.csv", Token: "ghp-x"}

	data, err := src.Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(data))

	req.ArtifactPath = "train.csv"
	data, err = src.Fetch(context.Background(), req)
	require.NoError(t, err, "base name match")
	assert.Equal(t, csvBody, string(data))
}

func TestGitHubSource_Errors(t *testing.T) {
	single := zipOf(t, map[string]string{"only.csv": csvBody})
	tests := []struct {
		name       string
		listStatus int
		mutate     func(*Request)
		want       errors.Kind
		msg        string
	}{
		{"bad credentials", http.StatusOK, func(r *Request) { r.Token = "wrong" }, errors.KindAuthentication, "Bad credentials"},
		{"rate limited", http.StatusForbidden, nil, errors.KindProvider, "rate limit"},
		{"unknown repo", http.StatusOK, func(r *Request) { r.Project = "acme/other" }, errors.KindRetrieval, "Not Found"},
		{"no branch match", http.StatusOK, func(r *Request) { r.Branch = "dev" }, errors.KindRetrieval, "no artifact named 'dataset' for branch 'dev'"},
		{"missing member", http.StatusOK, func(r *Request) { r.ArtifactPath = "nope.csv" }, errors.KindRetrieval, "not found in artifact"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := githubServer(t, single, tt.listStatus)
			defer srv.Close()

			req := Request{Project: "acme/data", Branch: "main", ArtifactName: "dataset", Token: "ghp-x"}
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			_, err := NewGitHubSource(srv.Client()).WithAPIBase(srv.URL).Fetch(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.KindOf(err), "err = %v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestGitHubSource_SingleMemberWithoutPath(t *testing.T) {
	srv := githubServer(t, zipOf(t, map[string]string{"only.csv": csvBody}), http.StatusOK)
	defer srv.Close()

	data, err := NewGitHubSource(srv.Client()).WithAPIBase(srv.URL).Fetch(context.Background(),
		Request{Project: "acme/data", Branch: "main", ArtifactName: "dataset", Token: "ghp-x"})
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(data))
}

func TestGitHubSource_APIBase(t *testing.T) {
	s := NewGitHubSource(http.DefaultClient)
	assert.Equal(t, "https://api.github.com", s.api("github.com"))
	assert.Equal(t, "https://api.github.com", s.api(""))
	assert.Equal(t, "https://ghe.example.com/api/v3", s.api("https://ghe.example.com/"))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte(csvBody), 0o600))

	data, err := NewFileSource().Fetch(context.Background(), Request{Target: dir, ArtifactPath: "data.csv"})
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(data))

	_, err = NewFileSource().Fetch(context.Background(), Request{Target: dir, ArtifactPath: "missing.csv"})
	assert.Equal(t, errors.KindRetrieval, errors.KindOf(err))
}

func TestClassifyGCSError(t *testing.T) {
	req := Request{Target: "bucket", ArtifactPath: "data.csv"}
	tests := []struct {
		name string
		err  error
		want errors.Kind
	}{
		{"object missing", storage.ErrObjectNotExist, errors.KindRetrieval},
		{"bucket missing", storage.ErrBucketNotExist, errors.KindRetrieval},
		{"unauthorized", &googleapi.Error{Code: 401, Message: "Invalid Credentials"}, errors.KindAuthentication},
		{"forbidden", &googleapi.Error{Code: 403, Message: "denied"}, errors.KindProvider},
		{"other", fmt.Errorf("dial tcp: timeout"), errors.KindProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.KindOf(classifyGCSError(req, tt.err)))
		})
	}
}

type stubSource struct {
	data []byte
	got  Request
}

func (s *stubSource) Fetch(_ context.Context, req Request) ([]byte, error) {
	s.got = req
	return s.data, nil
}

func TestRouter(t *testing.T) {
	stub := &stubSource{data: []byte(csvBody)}
	r := NewRouter(WithSource(RepoGitLab, stub))

	data, err := r.Fetch(context.Background(), Request{RepoType: RepoGitLab, Project: "p"})
	require.NoError(t, err)
	assert.Equal(t, csvBody, string(data))
	assert.Equal(t, "p", stub.got.Project)

	_, err = r.Fetch(context.Background(), Request{RepoType: "svn"})
	assert.Equal(t, errors.KindConfiguration, errors.KindOf(err))
	assert.Contains(t, err.Error(), "svn")
}

package fetch

import (
	"context"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// GCSProvider is the provider name used in errors and outcomes.
const GCSProvider = "GCS"

// GCSSource reads an object from Google Cloud Storage. Target is the bucket
// and ArtifactPath the object name. A request token is used as an OAuth2
// bearer token; without one, application default credentials apply.
type GCSSource struct {
	opts []option.ClientOption
}

// NewGCSSource creates a GCSSource. opts are passed to every storage client.
func NewGCSSource(opts ...option.ClientOption) *GCSSource {
	return &GCSSource{opts: opts}
}

// Fetch implements Source.
func (s *GCSSource) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.Target == "" || req.ArtifactPath == "" {
		return nil, errors.NewConfigurationError("incomplete gcs request",
			"GCS requests need target (bucket) and artifact_path (object).")
	}

	opts := append([]option.ClientOption(nil), s.opts...)
	if req.Token != "" {
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: req.Token})))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.NewProviderError(GCSProvider, 0, "failed to create storage client", err)
	}
	defer client.Close()

	rc, err := client.Bucket(req.Target).Object(req.ArtifactPath).NewReader(ctx)
	if err != nil {
		return nil, classifyGCSError(req, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxArtifactBytes))
	if err != nil {
		return nil, classifyGCSError(req, err)
	}
	return data, nil
}

func classifyGCSError(req Request, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return errors.NewRetrievalError(GCSProvider, "gs://"+req.Target+"/"+req.ArtifactPath+" does not exist", err)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return errors.NewAuthenticationError(GCSProvider, apiErr.Message)
		case http.StatusNotFound:
			return errors.NewRetrievalError(GCSProvider, apiErr.Message, err)
		default:
			return errors.NewProviderError(GCSProvider, apiErr.Code, apiErr.Message, err)
		}
	}
	return errors.NewProviderError(GCSProvider, 0, "storage request failed", err)
}

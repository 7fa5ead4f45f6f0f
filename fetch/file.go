package fetch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// FileProvider is the provider name used in errors and outcomes.
const FileProvider = "File"

// FileSource reads artifacts from the local filesystem. Target, when set, is
// the directory ArtifactPath is relative to.
type FileSource struct{}

// NewFileSource creates a FileSource.
func NewFileSource() *FileSource { return &FileSource{} }

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewRetrievalError(FileProvider, "cancelled", err)
	}
	if req.ArtifactPath == "" {
		return nil, errors.NewConfigurationError("incomplete file request", "File requests need artifact_path.")
	}

	p := req.ArtifactPath
	if req.Target != "" && !filepath.IsAbs(p) {
		p = filepath.Join(req.Target, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewRetrievalError(FileProvider, "no such file "+p, nil)
		}
		return nil, errors.NewRetrievalError(FileProvider, "cannot read "+p, err)
	}
	return data, nil
}

package decomposition

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// Decompose extracts min(maxComponents, n_features) independent components
// from X and returns them as an (n_samples, k) matrix. X is not modified.
func Decompose(X mat.Matrix, maxComponents int, opts ...Option) (*mat.Dense, error) {
	if maxComponents < 1 {
		return nil, errors.NewDecompositionError("Decompose",
			fmt.Sprintf("max_components must be at least 1, got %d", maxComponents), nil)
	}
	_, m := X.Dims()
	k := maxComponents
	if m < k {
		k = m
	}

	ica := NewFastICA(append(opts, WithNComponents(k))...)
	S, err := ica.FitTransform(X)
	if err != nil {
		return nil, err
	}
	return S.(*mat.Dense), nil
}

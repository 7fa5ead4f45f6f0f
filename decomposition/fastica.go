package decomposition

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/icaprobe/core/model"
	"github.com/YuminosukeSato/icaprobe/core/parallel"
	"github.com/YuminosukeSato/icaprobe/pkg/errors"
	"github.com/YuminosukeSato/icaprobe/pkg/log"
)

const (
	// DefaultMaxIter is the iteration cap used when none is configured
	DefaultMaxIter = 200
	// DefaultTol is the convergence tolerance used when none is configured
	DefaultTol = 1e-4

	// whitening directions with eigenvalue <= rankTol*max are dropped (zeroed)
	rankTol = 1e-12
	// smallest eigenvalue allowed in the symmetric decorrelation
	eigenFloor = 2.2250738585072014e-308
)

// FastICA implements scikit-learn compatible FastICA with the parallel
// (symmetric) algorithm and the logcosh contrast function.
type FastICA struct {
	model.BaseEstimator

	// Configuration parameters
	nComponents int
	maxIter     int
	tol         float64
	randomState int64
	alpha       float64

	// Model attributes (scikit-learn compatible naming)
	Components_ *mat.Dense // Unmixing matrix (n_components, n_features)
	Whitening_  *mat.Dense // Pre-whitening matrix (n_components, n_features)
	Mean_       []float64  // Per-feature mean removed before whitening
	NIter_      int        // Iterations run by the fixed-point solver
	Converged_  bool       // Whether the tolerance was met within max_iter

	logger log.Logger
}

// NewFastICA creates a new FastICA estimator
func NewFastICA(opts ...Option) *FastICA {
	ica := &FastICA{
		maxIter: DefaultMaxIter,
		tol:     DefaultTol,
		alpha:   1.0,
		logger:  log.GetLoggerWithName("decomposition"),
	}
	for _, opt := range opts {
		opt(ica)
	}
	return ica
}

// Fit estimates the unmixing matrix from X (n_samples, n_features)
func (ica *FastICA) Fit(X mat.Matrix) error {
	_, err := ica.fit(X)
	return err
}

// FitTransform estimates the unmixing matrix and returns the sources of X
// (n_samples, n_components)
func (ica *FastICA) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	S, err := ica.fit(X)
	if err != nil {
		return nil, err
	}
	return S, nil
}

// Transform recovers the sources of X with the fitted unmixing matrix
func (ica *FastICA) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !ica.IsFitted() {
		return nil, errors.NewNotFittedError("FastICA", "Transform")
	}
	n, m := X.Dims()
	if m != ica.NFeaturesIn {
		return nil, errors.NewDimensionError("FastICA.Transform", ica.NFeaturesIn, m, 1)
	}

	Xc := center(X, ica.Mean_)
	k, _ := ica.Components_.Dims()
	S := mat.NewDense(n, k, nil)
	S.Mul(Xc, ica.Components_.T())
	return S, nil
}

// GetParams returns the estimator hyperparameters
func (ica *FastICA) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_components": ica.nComponents,
		"max_iter":     ica.maxIter,
		"tol":          ica.tol,
		"random_state": ica.randomState,
		"fun":          "logcosh",
		"alpha":        ica.alpha,
		"algorithm":    "parallel",
	}
}

// String returns a short description of the estimator
func (ica *FastICA) String() string {
	return fmt.Sprintf("FastICA(n_components=%d, max_iter=%d, tol=%g)", ica.nComponents, ica.maxIter, ica.tol)
}

var _ model.Estimator = (*FastICA)(nil)

func (ica *FastICA) validate(n, m int) error {
	switch {
	case m < 1:
		return errors.NewDecompositionError("FastICA.Fit", "feature matrix has no columns", nil)
	case n < 2:
		return errors.NewDecompositionError("FastICA.Fit",
			fmt.Sprintf("need at least 2 rows to estimate components, got %d", n), nil)
	case ica.nComponents < 0:
		return errors.NewDecompositionError("FastICA.Fit",
			fmt.Sprintf("n_components must be positive, got %d", ica.nComponents), nil)
	case ica.maxIter < 1:
		return errors.NewDecompositionError("FastICA.Fit",
			fmt.Sprintf("max_iter must be at least 1, got %d", ica.maxIter), nil)
	case ica.tol <= 0 || math.IsNaN(ica.tol):
		return errors.NewDecompositionError("FastICA.Fit", fmt.Sprintf("tol must be positive, got %g", ica.tol), nil)
	case ica.alpha < 1 || ica.alpha > 2:
		return errors.NewDecompositionError("FastICA.Fit", fmt.Sprintf("alpha must be in [1, 2], got %g", ica.alpha), nil)
	}
	return nil
}

func (ica *FastICA) fit(X mat.Matrix) (*mat.Dense, error) {
	n, m := X.Dims()
	if err := ica.validate(n, m); err != nil {
		return nil, err
	}
	if err := errors.CheckMatrix("FastICA.Fit", X, n, m, 0); err != nil {
		return nil, errors.NewDecompositionError("FastICA.Fit", "input contains non-finite values", err)
	}
	ica.Reset()

	k := m
	if ica.nComponents > 0 && ica.nComponents < m {
		k = ica.nComponents
	}

	mean := make([]float64, m)
	col := make([]float64, n)
	for j := 0; j < m; j++ {
		mat.Col(col, j, X)
		mean[j] = stat.Mean(col, nil)
	}
	Xc := center(X, mean)

	K, err := whitening(Xc, k)
	if err != nil {
		return nil, err
	}

	// X1 (n, k): whitened data, unit variance on every non-degenerate column
	X1 := mat.NewDense(n, k, nil)
	X1.Mul(Xc, K.T())

	W, nIter, converged, err := ica.parallelICA(X1, ica.initialUnmixing(k))
	if err != nil {
		return nil, err
	}

	// S = X1 Wᵀ, rescaled to unit variance like scikit-learn's whiten="unit-variance"
	S := mat.NewDense(n, k, nil)
	S.Mul(X1, W.T())
	components := mat.NewDense(k, m, nil)
	components.Mul(W, K)
	for j := 0; j < k; j++ {
		mat.Col(col, j, S)
		std := math.Sqrt(stat.PopVariance(col, nil))
		if std == 0 {
			continue
		}
		floats.Scale(1/std, col)
		S.SetCol(j, col)
		row := components.RawRowView(j)
		floats.Scale(1/std, row)
	}

	if err := errors.CheckMatrix("FastICA.Fit", S, n, k, nIter); err != nil {
		return nil, errors.NewDecompositionError("FastICA.Fit", "independent components contain non-finite values", err)
	}

	ica.Components_ = components
	ica.Whitening_ = K
	ica.Mean_ = mean
	ica.NIter_ = nIter
	ica.Converged_ = converged
	ica.SetFitted(n, m)

	ica.logger.Debug("FastICA fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.FeaturesKey, m,
		log.ComponentsKey, k,
		log.IterationKey, nIter,
		log.ConvergedKey, converged,
	)
	return S, nil
}

func (ica *FastICA) initialUnmixing(k int) *mat.Dense {
	seed := ica.randomState
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, k*k)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return mat.NewDense(k, k, data)
}

// parallelICA runs the symmetric fixed-point iteration on whitened data X1 (n, k).
func (ica *FastICA) parallelICA(X1 *mat.Dense, W0 *mat.Dense) (*mat.Dense, int, bool, error) {
	n, k := X1.Dims()
	W, err := symDecorrelation(W0)
	if err != nil {
		return nil, 0, false, err
	}

	U := mat.NewDense(n, k, nil)
	G := mat.NewDense(n, k, nil)
	GPrime := mat.NewDense(n, k, nil)
	gwtx := mat.NewDense(k, k, nil)
	W1 := mat.NewDense(k, k, nil)
	gMean := make([]float64, k)
	col := make([]float64, n)
	a := ica.alpha

	for iter := 1; iter <= ica.maxIter; iter++ {
		U.Mul(X1, W.T())

		// logcosh: g(u) = tanh(a u), g'(u) = a (1 - tanh²(a u)); disjoint row writes only
		parallel.ParallelizeWithThreshold(n, parallel.DefaultRowThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				for j := 0; j < k; j++ {
					t := math.Tanh(a * U.At(i, j))
					G.Set(i, j, t)
					GPrime.Set(i, j, a*(1-t*t))
				}
			}
		})

		for j := 0; j < k; j++ {
			mat.Col(col, j, GPrime)
			gMean[j] = stat.Mean(col, nil)
		}

		// W1 = (Gᵀ X1)/n - diag(gMean) W
		gwtx.Mul(G.T(), X1)
		gwtx.Scale(1/float64(n), gwtx)
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				W1.Set(i, j, gwtx.At(i, j)-gMean[i]*W.At(i, j))
			}
		}

		next, err := symDecorrelation(W1)
		if err != nil {
			return nil, iter, false, err
		}
		if err := errors.CheckMatrix("fastica_update", next, k, k, iter); err != nil {
			return nil, iter, false, errors.NewDecompositionError("FastICA.Fit", "unmixing update diverged", err)
		}

		// lim = max |(|diag(W1 Wᵀ)| - 1)|
		lim := 0.0
		for i := 0; i < k; i++ {
			d := math.Abs(math.Abs(floats.Dot(next.RawRowView(i), W.RawRowView(i))) - 1)
			if d > lim {
				lim = d
			}
		}
		W = next

		if lim < ica.tol {
			return W, iter, true, nil
		}
	}

	errors.Warn(errors.NewConvergenceWarning("FastICA", ica.maxIter, ""))
	return W, ica.maxIter, false, nil
}

// whitening returns K (k, m) such that Xc Kᵀ has identity covariance on its
// non-degenerate directions. Directions whose eigenvalue is negligible relative
// to the largest are left as zero rows.
func whitening(Xc *mat.Dense, k int) (*mat.Dense, error) {
	n, m := Xc.Dims()

	var C mat.SymDense
	C.SymOuterK(1/float64(n), Xc.T())

	var eig mat.EigenSym
	if ok := eig.Factorize(&C, true); !ok {
		return nil, errors.NewDecompositionError("FastICA.Fit", "eigendecomposition of the covariance failed", nil)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// values are ascending
	maxVal := values[m-1]
	if maxVal <= 0 {
		return nil, errors.NewDecompositionError("FastICA.Fit", "all feature columns are constant", nil)
	}

	K := mat.NewDense(k, m, nil)
	for r := 0; r < k; r++ {
		idx := m - 1 - r
		d := values[idx]
		if d <= rankTol*maxVal {
			continue
		}
		scale := 1 / math.Sqrt(d)
		for j := 0; j < m; j++ {
			K.Set(r, j, vectors.At(j, idx)*scale)
		}
	}
	return K, nil
}

// symDecorrelation returns (W Wᵀ)^(-1/2) W.
func symDecorrelation(W *mat.Dense) (*mat.Dense, error) {
	k, _ := W.Dims()

	var WWt mat.SymDense
	WWt.SymOuterK(1, W)

	var eig mat.EigenSym
	if ok := eig.Factorize(&WWt, true); !ok {
		return nil, errors.NewDecompositionError("FastICA.Fit", "symmetric decorrelation failed", nil)
	}
	s := eig.Values(nil)
	var u mat.Dense
	eig.VectorsTo(&u)

	scaled := mat.NewDense(k, k, nil)
	for j := 0; j < k; j++ {
		v := math.Max(s[j], eigenFloor)
		f := 1 / math.Sqrt(v)
		for i := 0; i < k; i++ {
			scaled.Set(i, j, u.At(i, j)*f)
		}
	}

	var inv mat.Dense
	inv.Mul(scaled, u.T())
	out := mat.NewDense(k, k, nil)
	out.Mul(&inv, W)
	return out, nil
}

func center(X mat.Matrix, mean []float64) *mat.Dense {
	n, m := X.Dims()
	Xc := mat.NewDense(n, m, nil)
	parallel.ParallelizeWithThreshold(n, parallel.DefaultRowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < m; j++ {
				Xc.Set(i, j, X.At(i, j)-mean[j])
			}
		}
	})
	return Xc
}

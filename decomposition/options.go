package decomposition

// Option is a function that configures FastICA
type Option func(*FastICA)

// WithNComponents sets the number of components to extract (0 keeps all features)
func WithNComponents(n int) Option {
	return func(ica *FastICA) {
		ica.nComponents = n
	}
}

// WithMaxIter sets the maximum number of fixed-point iterations
func WithMaxIter(n int) Option {
	return func(ica *FastICA) {
		ica.maxIter = n
	}
}

// WithTol sets the convergence tolerance on the unmixing matrix update
func WithTol(tol float64) Option {
	return func(ica *FastICA) {
		ica.tol = tol
	}
}

// WithRandomState seeds the initial unmixing matrix. A negative seed uses the clock.
func WithRandomState(seed int64) Option {
	return func(ica *FastICA) {
		ica.randomState = seed
	}
}

// WithAlpha sets the logcosh contrast parameter, expected in [1, 2]
func WithAlpha(alpha float64) Option {
	return func(ica *FastICA) {
		ica.alpha = alpha
	}
}

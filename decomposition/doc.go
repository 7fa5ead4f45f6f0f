/*
Package decomposition separates a feature matrix into statistically
independent components.

FastICA follows scikit-learn's estimator: data are centred and whitened
through an eigendecomposition of their covariance, then the parallel
fixed-point iteration with the logcosh contrast estimates an orthogonal
unmixing matrix. The returned sources have unit variance.

	S, err := decomposition.Decompose(Z, 20, decomposition.WithRandomState(0))

A run that reaches max_iter without meeting tol emits a ConvergenceWarning
through errors.Warn and still returns the last estimate.
*/
package decomposition

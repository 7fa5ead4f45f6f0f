// Package log defines standard attribute keys for probe operations.
//
// The keys follow a hierarchical naming convention (e.g. "ml.operation",
// "data.samples") so records from different components can be filtered the
// same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "StandardScaler", "FastICA"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "fit_transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	ComponentKey = "ml.component"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// TargetsKey indicates the number of label columns.
	TargetsKey = "data.targets"

	// ComponentsKey indicates the number of independent components requested or produced.
	ComponentsKey = "data.components"

	// DataSizeKey indicates the size of the raw artifact in bytes.
	DataSizeKey = "data.size_bytes"
)

// Performance and Convergence
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey records the number of iterations an iterative algorithm ran.
	IterationKey = "training.iteration"

	// ConvergedKey records whether an iterative algorithm met its tolerance.
	ConvergedKey = "training.converged"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Probe run context
const (
	// RunIDKey identifies a single probe invocation.
	RunIDKey = "probe.run_id"

	// StageKey names the pipeline stage (ParseConfig, LoadDataset, RunAnalysis).
	StageKey = "probe.stage"

	// RepoTypeKey names the artifact provider (gitlab, github, file, gcs).
	RepoTypeKey = "probe.repo_type"

	// VerdictKey records the final boolean verdict.
	VerdictKey = "probe.verdict"

	// ResultKey records the outcome code name.
	ResultKey = "probe.result"
)

// Error and Warning Context
const (
	// ErrorKey holds the error message.
	ErrorKey = "error"

	// ErrorTypeKey categorizes the error (taxonomy kind).
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Populated automatically when an error is passed to Logger.Error.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute value constants.
const (
	OperationFit          = "fit"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"
)

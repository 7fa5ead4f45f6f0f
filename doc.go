// Package icaprobe evaluates whether a tabular dataset produced by a CI job
// has statistically independent, informative features.
//
// The dataset artifact is fetched from GitLab, GitHub Actions, Google Cloud
// Storage or the local filesystem, split into a feature matrix and labels,
// standardized, decomposed with FastICA and scored with the excess kurtosis
// of each independent component. The dataset is considered good when every
// component is clearly non-Gaussian (kurtosis > 1 or < -1).
//
// # Quick Start
//
//	icaprobe run --input probe.yaml
//
// with a probe input such as:
//
//	config:
//	  target: gitlab.example.com
//	  repo_type: gitlab
//	  project: team/datasets
//	  branch: main
//	  artifact_path: out/train.csv
//	  job_name: export-dataset
//	  label_columns: [label]
//	credential:
//	  token: glpat-...
//
// The outcome is printed as JSON:
//
//	{
//	  "run_id": "…",
//	  "integer_result": 1,
//	  "result": "TRUE",
//	  "pretty_result": "The dataset is considered good.",
//	  "extra_data": {"kurtosis_details": {...}}
//	}
//
// # Library use
//
//	features, _, err := dataset.Load(raw, nil)
//	Z, err := preprocessing.Normalize(features.Data)
//	S, err := decomposition.Decompose(Z, 20, decomposition.WithRandomState(0))
//	verdict, err := evaluation.Score(S)
//
// # Packages
//
//   - dataset: CSV parsing and label separation
//   - preprocessing: StandardScaler
//   - decomposition: FastICA (parallel algorithm, logcosh contrast)
//   - metrics: excess kurtosis
//   - evaluation: the decision rule and verdict texts
//   - fetch: artifact sources (gitlab, github, file, gcs)
//   - report: component histograms
//   - probe: the staged run and its outcome
//   - core/model: Core interfaces and base types
//   - core/parallel: Parallel processing utilities
//   - pkg/errors, pkg/log: error taxonomy and structured logging
//
// # Performance
//
// Row-wise work inside the scaler and FastICA is parallelized for matrices
// with more than 1000 rows. Reductions stay sequential, so a fixed seed gives
// bit-identical results.
package icaprobe

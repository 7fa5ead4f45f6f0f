// Package probe runs the dataset independence evaluation end to end.
//
// A run has three stages, each executed at most once and never retried:
//
//	ParseConfig -> LoadDataset -> RunAnalysis
//
// Any error (or panic) leaving a stage ends the run with a failure Outcome
// chosen by the dispatch table; a run always produces exactly one Outcome.
package probe

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/icaprobe/dataset"
	"github.com/YuminosukeSato/icaprobe/decomposition"
	"github.com/YuminosukeSato/icaprobe/evaluation"
	"github.com/YuminosukeSato/icaprobe/fetch"
	"github.com/YuminosukeSato/icaprobe/metrics"
	"github.com/YuminosukeSato/icaprobe/pkg/errors"
	"github.com/YuminosukeSato/icaprobe/pkg/log"
	"github.com/YuminosukeSato/icaprobe/preprocessing"
	"github.com/YuminosukeSato/icaprobe/report"
)

// Stage names.
const (
	StageParseConfig = "ParseConfig"
	StageLoadDataset = "LoadDataset"
	StageRunAnalysis = "RunAnalysis"
)

// DefaultMaxComponents caps the number of independent components.
const DefaultMaxComponents = 20

// ArtifactFetcher retrieves the raw dataset artifact.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, req fetch.Request) ([]byte, error)
}

// Probe evaluates one dataset per Run.
type Probe struct {
	fetcher       ArtifactFetcher
	maxComponents int
	seed          int64
	maxIter       int
	tol           float64
	plotDir       string
	token         string
	logger        log.Logger
}

// Option configures a Probe.
type Option func(*Probe)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(p *Probe) { p.logger = l }
}

// WithMaxComponents sets the component cap (default 20).
func WithMaxComponents(n int) Option {
	return func(p *Probe) { p.maxComponents = n }
}

// WithSeed seeds the decomposition. A negative seed uses the clock.
func WithSeed(seed int64) Option {
	return func(p *Probe) { p.seed = seed }
}

// WithMaxIter sets the FastICA iteration cap.
func WithMaxIter(n int) Option {
	return func(p *Probe) { p.maxIter = n }
}

// WithTol sets the FastICA tolerance.
func WithTol(tol float64) Option {
	return func(p *Probe) { p.tol = tol }
}

// WithPlotDir enables component histograms written to dir.
func WithPlotDir(dir string) Option {
	return func(p *Probe) { p.plotDir = dir }
}

// WithToken overrides the credential token of the input.
func WithToken(token string) Option {
	return func(p *Probe) { p.token = token }
}

// New creates a Probe that loads artifacts through fetcher.
func New(fetcher ArtifactFetcher, opts ...Option) *Probe {
	p := &Probe{
		fetcher:       fetcher,
		maxComponents: DefaultMaxComponents,
		maxIter:       decomposition.DefaultMaxIter,
		tol:           decomposition.DefaultTol,
		logger:        log.GetLoggerWithName("probe"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the stages against input and returns the outcome.
func (p *Probe) Run(ctx context.Context, input []byte) *Outcome {
	runID := uuid.NewString()
	logger := p.logger.With(log.RunIDKey, runID)
	start := time.Now()

	var (
		in       *Input
		features *dataset.FeatureMatrix
		verdict  evaluation.Verdict
	)

	stages := []struct {
		name string
		fn   func() error
	}{
		{StageParseConfig, func() (err error) {
			in, err = ParseInput(input, p.token)
			return err
		}},
		{StageLoadDataset, func() (err error) {
			req := in.Request()
			raw, err := p.fetcher.Fetch(ctx, req)
			if err != nil {
				return err
			}
			features, _, err = dataset.Load(raw, in.Config.LabelColumns)
			return err
		}},
		{StageRunAnalysis, func() (err error) {
			verdict, _, err = p.analyze(features.Data, logger)
			return err
		}},
	}

	for _, st := range stages {
		stageStart := time.Now()
		if err := errors.SafeExecute(st.name, st.fn); err != nil {
			out := failureOutcome(runID, err)
			logger.Error("stage failed", err,
				log.StageKey, st.name,
				log.ErrorTypeKey, errors.KindOf(err).String(),
				log.ResultKey, out.Result,
			)
			return out
		}
		logger.Debug("stage completed", log.StageKey, st.name, log.DurationMsKey, time.Since(stageStart))
	}

	out := successOutcome(runID, verdict)
	logger.Info("dataset evaluated",
		log.VerdictKey, verdict.Good,
		log.ComponentsKey, verdict.NumComponents,
		log.ResultKey, out.Result,
		log.DurationMsKey, time.Since(start),
	)
	return out
}

// Analyze normalizes X, decomposes it and scores the components. It returns
// the verdict and the independent components.
func (p *Probe) Analyze(X *mat.Dense) (evaluation.Verdict, *mat.Dense, error) {
	return p.analyze(X, p.logger)
}

func (p *Probe) analyze(X *mat.Dense, logger log.Logger) (evaluation.Verdict, *mat.Dense, error) {
	Z, err := preprocessing.Normalize(X)
	if err != nil {
		return evaluation.Verdict{}, nil, err
	}

	S, err := decomposition.Decompose(Z, p.maxComponents,
		decomposition.WithRandomState(p.seed),
		decomposition.WithMaxIter(p.maxIter),
		decomposition.WithTol(p.tol),
	)
	if err != nil {
		return evaluation.Verdict{}, nil, err
	}

	kurtosis, err := metrics.ColumnExcessKurtosis(S)
	if err != nil {
		return evaluation.Verdict{}, nil, err
	}
	verdict := evaluation.Decide(kurtosis)

	if p.plotDir != "" {
		if _, err := report.WriteHistograms(p.plotDir, S, kurtosis); err != nil {
			logger.Warn("component histograms not written", log.ErrorKey, err)
		}
	}
	return verdict, S, nil
}

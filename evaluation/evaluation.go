// Package evaluation turns component kurtosis values into the dataset verdict.
package evaluation

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/icaprobe/metrics"
)

// Threshold bounds the rejection band [-Threshold, Threshold].
const Threshold = 1.0

// Fixed explanation and summary texts.
const (
	GoodEvaluation       = "All independent components have a kurtosis value greater than 1 or less than -1."
	NotOptimalEvaluation = "Some independent components have a kurtosis value of 1, -1, or close to 0."
	GoodSummary          = "The dataset is considered good."
	NotOptimalSummary    = "The dataset might not be optimal."
)

// Verdict is the outcome of scoring one set of independent components.
type Verdict struct {
	Good           bool
	NumComponents  int
	KurtosisValues []float64
	Evaluation     string
	Summary        string
}

// Decide applies the decision rule to precomputed kurtosis values: the
// dataset is good iff every value is strictly outside [-1, 1].
func Decide(values []float64) Verdict {
	good := true
	for _, k := range values {
		if !(k > Threshold || k < -Threshold) {
			good = false
			break
		}
	}

	v := Verdict{
		Good:           good,
		NumComponents:  len(values),
		KurtosisValues: append([]float64(nil), values...),
		Evaluation:     NotOptimalEvaluation,
		Summary:        NotOptimalSummary,
	}
	if good {
		v.Evaluation = GoodEvaluation
		v.Summary = GoodSummary
	}
	return v
}

// Score computes the excess kurtosis of every column of S and decides.
func Score(S mat.Matrix) (Verdict, error) {
	values, err := metrics.ColumnExcessKurtosis(S)
	if err != nil {
		return Verdict{}, err
	}
	return Decide(values), nil
}

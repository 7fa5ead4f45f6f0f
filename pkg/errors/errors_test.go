package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "StandardScaler.Fit",
			kind:    "empty data",
			err:     ErrEmptyData,
			wantMsg: "icaprobe: StandardScaler.Fit: empty data: empty data",
		},
		{
			name:    "without original error",
			op:      "FastICA.Transform",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "icaprobe: FastICA.Transform: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("StandardScaler.Transform", 5, 3, 1)

	want := "icaprobe: StandardScaler.Transform: dimension mismatch on axis 1 (features). Expected 5, got 3"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("FastICA", "Transform")

	want := "icaprobe: FastICA: this model is not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestNewConvergenceWarning(t *testing.T) {
	warn := NewConvergenceWarning("FastICA", 200, "")

	want := "FastICA failed to converge after 200 iterations. Consider increasing max_iter or tolerance."
	if warn.Error() != want {
		t.Errorf("Error() = %v, want %v", warn.Error(), want)
	}
}

func TestWarnRouting(t *testing.T) {
	var handled, structured []error
	SetWarningHandler(func(w error) { handled = append(handled, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewConvergenceWarning("FastICA", 10, ""))
	if len(handled) != 1 {
		t.Fatalf("expected fallback handler to receive 1 warning, got %d", len(handled))
	}

	SetZerologWarnFunc(func(w error) { structured = append(structured, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewConvergenceWarning("FastICA", 10, ""))
	if len(structured) != 1 || len(handled) != 1 {
		t.Errorf("zerolog func should take precedence: structured=%d handled=%d", len(structured), len(handled))
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"configuration", NewConfigurationError("no label column found", "The column '%s' does not exist in the dataset.", "y"), KindConfiguration},
		{"dataset", NewDatasetError(3, "f1", "not a number"), KindDataset},
		{"authentication", NewAuthenticationError("GitLab", "401 Unauthorized"), KindAuthentication},
		{"retrieval", NewRetrievalError("GitHub", "no artifact named data", nil), KindRetrieval},
		{"provider", NewProviderError("GitHub", 429, "rate limited", nil), KindProvider},
		{"decomposition", NewDecompositionError("FastICA.Fit", "need at least 2 rows", nil), KindDecomposition},
		{"wrapped", Wrap(NewRetrievalError("GitLab", "404 Not Found", nil), "load dataset"), KindRetrieval},
		{"plain", New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaxonomyMessages(t *testing.T) {
	cfgErr := NewConfigurationError("no label column found", "The column '%s' does not exist in the dataset.", "missing")
	if cfgErr.Error() != "The column 'missing' does not exist in the dataset." {
		t.Errorf("unexpected configuration message %q", cfgErr.Error())
	}
	var c Classified
	if !As(cfgErr, &c) || c.Detail() != "no label column found" {
		t.Errorf("configuration detail should be the reason, got %v", c)
	}

	dsErr := NewDatasetError(2, "f1", `cannot parse "abc" as a number`)
	if dsErr.Error() != `row 2, column 'f1': cannot parse "abc" as a number` {
		t.Errorf("unexpected dataset message %q", dsErr.Error())
	}

	provErr := NewProviderError("GitHub", 403, "API rate limit exceeded", nil)
	if provErr.Error() != "GitHub request failed (status 403): API rate limit exceeded" {
		t.Errorf("unexpected provider message %q", provErr.Error())
	}

	cause := fmt.Errorf("connection refused")
	retErr := NewRetrievalError("GitLab", "request failed", cause)
	if !Is(retErr, cause) {
		t.Error("retrieval error should unwrap to its cause")
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Fit", 10, 5)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in Fit: expected 10, got 5") {
		t.Errorf("unexpected wrapped message %q", wrapped.Error())
	}
}

func TestCheckMatrix(t *testing.T) {
	type dense [][]float64
	at := func(d dense) interface{ At(int, int) float64 } { return denseAt(d) }

	if err := CheckMatrix("op", at(dense{{1, 2}, {3, 4}}), 2, 2, 0); err != nil {
		t.Errorf("finite matrix should pass, got %v", err)
	}

	err := CheckMatrix("fastica_update", at(dense{{1, math.NaN()}, {3, 4}}), 2, 2, 7)
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if numErr.Iteration != 7 || len(numErr.Values) != 1 {
		t.Errorf("unexpected error contents %+v", numErr)
	}
}

type denseAt [][]float64

func (d denseAt) At(i, j int) float64 { return d[i][j] }

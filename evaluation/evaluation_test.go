package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		wantGood bool
	}{
		{"all outside band", []float64{2.5, -3.1, 1.2}, true},
		{"one inside band", []float64{2.5, 0.3, -3.1}, false},
		{"exactly one", []float64{2.5, 1.0}, false},
		{"exactly minus one", []float64{-1.0, -4}, false},
		{"just above one", []float64{math.Nextafter(1, 2)}, true},
		{"degenerate zero", []float64{0}, false},
		{"nan is not good", []float64{math.NaN(), 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Decide(tt.values)
			assert.Equal(t, tt.wantGood, v.Good)
			assert.Equal(t, len(tt.values), v.NumComponents)
			if tt.wantGood {
				assert.Equal(t, GoodEvaluation, v.Evaluation)
				assert.Equal(t, GoodSummary, v.Summary)
			} else {
				assert.Equal(t, NotOptimalEvaluation, v.Evaluation)
				assert.Equal(t, NotOptimalSummary, v.Summary)
			}
		})
	}
}

func TestDecide_CopiesValues(t *testing.T) {
	values := []float64{2, 3}
	v := Decide(values)
	values[0] = 0
	assert.Equal(t, 2.0, v.KurtosisValues[0])
}

func TestScore(t *testing.T) {
	// column 0: two-point (-2), column 1: 1..4 (-1.36)
	S := mat.NewDense(4, 2, []float64{-1, 1, 1, 2, -1, 3, 1, 4})
	v, err := Score(S)
	require.NoError(t, err)
	assert.True(t, v.Good)
	assert.Equal(t, 2, v.NumComponents)
	assert.InDelta(t, -2.0, v.KurtosisValues[0], 1e-12)

	_, err = Score(&mat.Dense{})
	assert.Error(t, err)
}

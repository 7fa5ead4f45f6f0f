package metrics

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestExcessKurtosis(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	uniform := make([]float64, 200000)
	for i := range uniform {
		uniform[i] = rng.Float64()
	}

	tests := []struct {
		name      string
		x         []float64
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "two point distribution",
			x:         []float64{-1, 1, -1, 1},
			want:      -2.0, // m2 = 1, m4 = 1
			tolerance: 1e-12,
		},
		{
			name:      "skewed sample",
			x:         []float64{1, 2, 3, 4, 10},
			want:      -0.212, // m2 = 10, m4 = 278.8
			tolerance: 1e-12,
		},
		{
			name:      "uniform approaches -1.2",
			x:         uniform,
			want:      -1.2,
			tolerance: 0.02,
		},
		{
			name:      "constant reports zero",
			x:         []float64{3, 3, 3},
			want:      0,
			tolerance: 0,
		},
		{
			name:    "empty",
			x:       nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExcessKurtosis(tt.x)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExcessKurtosis() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("ExcessKurtosis() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestColumnExcessKurtosis(t *testing.T) {
	S := mat.NewDense(4, 2, []float64{
		-1, 1,
		1, 2,
		-1, 3,
		1, 4,
	})
	got, err := ColumnExcessKurtosis(S)
	if err != nil {
		t.Fatalf("ColumnExcessKurtosis() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if math.Abs(got[0]+2) > 1e-12 {
		t.Errorf("column 0 = %v, want -2", got[0])
	}
	// 1..4: m2 = 1.25, m4 = 2.5625 -> 2.5625/1.5625 - 3 = -1.36
	if math.Abs(got[1]+1.36) > 1e-12 {
		t.Errorf("column 1 = %v, want -1.36", got[1])
	}

	again, _ := ColumnExcessKurtosis(S)
	for i := range got {
		if got[i] != again[i] {
			t.Error("kurtosis must be bit-identical across calls")
		}
	}

	if _, err := ColumnExcessKurtosis(&mat.Dense{}); err == nil {
		t.Error("expected error for empty matrix")
	}
}

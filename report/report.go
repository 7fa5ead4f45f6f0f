// Package report renders diagnostic plots of independent components.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// DefaultBins is the number of histogram bins per component.
const DefaultBins = 30

// FileName returns the image name of component i (0-based).
func FileName(i int) string {
	return fmt.Sprintf("component_%02d.png", i+1)
}

// WriteHistograms writes one PNG histogram per column of S into dir, titled
// with the component's kurtosis. It returns the written paths.
func WriteHistograms(dir string, S mat.Matrix, kurtosis []float64) ([]string, error) {
	n, k := S.Dims()
	if n == 0 || k == 0 {
		return nil, errors.NewModelError("WriteHistograms", "empty data", errors.ErrEmptyData)
	}
	if len(kurtosis) != k {
		return nil, errors.NewDimensionError("WriteHistograms", k, len(kurtosis), 1)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create plot directory %s", dir)
	}

	paths := make([]string, 0, k)
	for j := 0; j < k; j++ {
		values := make(plotter.Values, n)
		for i := 0; i < n; i++ {
			values[i] = S.At(i, j)
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("Component %d (excess kurtosis %.3f)", j+1, kurtosis[j])
		p.X.Label.Text = "value"
		p.Y.Label.Text = "count"

		h, err := plotter.NewHist(values, DefaultBins)
		if err != nil {
			return paths, errors.Wrapf(err, "histogram of component %d", j+1)
		}
		p.Add(h)

		path := filepath.Join(dir, FileName(j))
		if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
			return paths, errors.Wrapf(err, "save %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

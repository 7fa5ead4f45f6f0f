// Package metrics は独立成分の非ガウス性を測る統計量を提供する
package metrics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// ExcessKurtosis は超過尖度（Fisherの定義、m4/m2² - 3）を計算する。
// 中心モーメントは母集団モーメント（バイアス補正なし）。
// 分散が0の場合は0を返す（判定上は棄却帯に入る）。
func ExcessKurtosis(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, errors.NewModelError("ExcessKurtosis", "empty data", errors.ErrEmptyData)
	}

	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return 0, nil
	}
	m4 := stat.Moment(4, x, nil)

	k := m4/(m2*m2) - 3
	if err := errors.CheckScalar("ExcessKurtosis", k, 0); err != nil {
		return 0, err
	}
	return k, nil
}

// ColumnExcessKurtosis は行列の各列の超過尖度を計算する
func ColumnExcessKurtosis(S mat.Matrix) ([]float64, error) {
	r, c := S.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("ColumnExcessKurtosis", "empty data", errors.ErrEmptyData)
	}

	values := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, S)
		k, err := ExcessKurtosis(col)
		if err != nil {
			return nil, errors.Wrapf(err, "column %d", j)
		}
		values[j] = k
	}
	return values, nil
}

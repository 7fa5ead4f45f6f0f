package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/icaprobe/core/model"
	"github.com/YuminosukeSato/icaprobe/core/parallel"
	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// isConstant は分散が平均・分散の丸め誤差の範囲内かどうかを判定する。
// 閾値は相対的なので、スケールの小さい非定数列は定数扱いにならない。
func isConstant(variance, mean float64, n int) bool {
	eps := math.Nextafter(1, 2) - 1
	nf := float64(n)
	bound := nf*eps*variance + math.Pow(nf*mean*eps, 2)
	return variance <= bound
}

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する（母分散、ddof=0）
type StandardScaler struct {
	model.BaseEstimator

	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標準偏差。定数列では1
	Scale []float64

	// Constant は分散が丸め誤差以下の列。変換後は全て0になる
	Constant []bool

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから統計情報（平均、標準偏差）を計算する
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	if err := errors.CheckMatrix("StandardScaler.Fit", X, r, c, 0); err != nil {
		return err
	}

	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	s.Constant = make([]bool, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)

		if s.WithMean {
			s.Mean[j] = mean
		}
		s.Scale[j] = 1.0
		if isConstant(std*std, mean, r) {
			s.Constant[j] = true
			continue
		}
		if s.WithStd {
			s.Scale[j] = std
		}
	}

	s.SetFitted(r, c)
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する。
// 定数列は（WithMean時）全て0になる。
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeaturesIn {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeaturesIn, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	parallel.ParallelizeWithThreshold(r, parallel.DefaultRowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < c; j++ {
				if s.Constant[j] && s.WithMean {
					continue
				}
				result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
			}
		}
	})

	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// GetParams はスケーラーのパラメータを取得する
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// NConstant は定数列の数を返す
func (s *StandardScaler) NConstant() int {
	n := 0
	for _, c := range s.Constant {
		if c {
			n++
		}
	}
	return n
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeaturesIn)
}

var _ model.Estimator = (*StandardScaler)(nil)

// Normalize はXを列ごとに標準化した新しい行列を返す。Xは変更しない。
func Normalize(X mat.Matrix) (*mat.Dense, error) {
	scaled, err := NewStandardScalerDefault().FitTransform(X)
	if err != nil {
		return nil, err
	}
	return scaled.(*mat.Dense), nil
}

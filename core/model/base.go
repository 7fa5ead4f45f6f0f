// Package model は推定器（スケーラー、FastICAなど）が共有する基底型とインターフェースを提供します。
package model

// EstimatorState はモデルの学習状態を表す
type EstimatorState int

const (
	// NotFitted はモデルが未学習の状態
	NotFitted EstimatorState = iota
	// Fitted はモデルが学習済みの状態
	Fitted
)

// String は状態名を返す
func (s EstimatorState) String() string {
	if s == Fitted {
		return "fitted"
	}
	return "not_fitted"
}

// BaseEstimator は全ての推定器に埋め込む基底構造体
type BaseEstimator struct {
	state EstimatorState

	// NFeaturesIn はFit時に観測した特徴量の数
	NFeaturesIn int
	// NSamplesSeen はFit時に観測したサンプル数
	NSamplesSeen int
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// State は現在の学習状態を返す
func (e *BaseEstimator) State() EstimatorState {
	return e.state
}

// SetFitted はモデルを学習済み状態に設定し、観測した次元を記録する
func (e *BaseEstimator) SetFitted(nSamples, nFeatures int) {
	e.state = Fitted
	e.NSamplesSeen = nSamples
	e.NFeaturesIn = nFeatures
}

// Reset はモデルを初期状態にリセットする
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
	e.NFeaturesIn = 0
	e.NSamplesSeen = 0
}

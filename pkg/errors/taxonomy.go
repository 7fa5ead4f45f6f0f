package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// Kind はプローブ実行が終了しうる失敗カテゴリの閉じた集合です。
// パイプラインのステージから返るエラーは必ずいずれか1つのKindに分類されます。
type Kind int

const (
	// KindUnknown はこの分類を経由しないエラー（回復したパニックを含む）です。
	KindUnknown Kind = iota
	// KindConfiguration は呼び出し側の誤り（不正な入力、存在しないラベル列）です。
	KindConfiguration
	// KindDataset は数値CSVとして正しくないアーティファクトです。
	KindDataset
	// KindAuthentication はプロバイダに拒否された認証情報です。
	KindAuthentication
	// KindRetrieval はプロバイダが見つけられない、または返せないアーティファクトです。
	KindRetrieval
	// KindProvider はその他のプロバイダ側の失敗（レート制限、権限、5xx）です。
	KindProvider
	// KindDecomposition はICAを推定できない特徴量行列です。
	KindDecomposition
)

// String は分類名を返します。
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindDataset:
		return "DatasetError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindRetrieval:
		return "RetrievalError"
	case KindProvider:
		return "ProviderError"
	case KindDecomposition:
		return "DecompositionError"
	default:
		return "UnknownError"
	}
}

// Classified は分類された全てのエラーが実装するインターフェースです。
type Classified interface {
	error
	Kind() Kind
	// Detail は結果のextra dataに載せる短い説明を返します。
	Detail() string
}

// KindOf はエラーチェーンを辿り、最初に見つかった分類済みエラーのKindを返します。
func KindOf(err error) Kind {
	var c Classified
	if errors.As(err, &c) {
		return c.Kind()
	}
	return KindUnknown
}

// ConfigurationError は設定の誤り（存在しないラベル列など）を表すエラーです。
type ConfigurationError struct {
	// Reason は短い分類名（例: "no label column found"）
	Reason string
	// Message は人間向けの説明
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// Kind はClassifiedを実装します。
func (e *ConfigurationError) Kind() Kind { return KindConfiguration }

// Detail はClassifiedを実装します。
func (e *ConfigurationError) Detail() string { return e.Reason }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("reason", e.Reason).
		Str("message", e.Message).
		Str("type", "ConfigurationError")
}

// NewConfigurationError は新しいConfigurationErrorを作成し、スタックトレースを付与します。
func NewConfigurationError(reason, format string, args ...interface{}) error {
	return errors.WithStack(&ConfigurationError{Reason: reason, Message: fmt.Sprintf(format, args...)})
}

// DatasetError はデータセットの形式が不正な場合のエラーです。
type DatasetError struct {
	Row     int    // 1始まりのデータ行。行に依存しない場合は0
	Column  string // 列名。列に依存しない場合は空
	Message string
}

func (e *DatasetError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	case e.Row > 0:
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	default:
		return e.Message
	}
}

// Kind はClassifiedを実装します。
func (e *DatasetError) Kind() Kind { return KindDataset }

// Detail はClassifiedを実装します。
func (e *DatasetError) Detail() string { return e.Error() }

// NewDatasetError は新しいDatasetErrorを作成し、スタックトレースを付与します。
func NewDatasetError(row int, column, message string) error {
	return errors.WithStack(&DatasetError{Row: row, Column: column, Message: message})
}

// AuthenticationError はプロバイダが認証情報を拒否した場合のエラーです。
type AuthenticationError struct {
	Provider string
	Message  string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed: %s", e.Provider, e.Message)
}

// Kind はClassifiedを実装します。
func (e *AuthenticationError) Kind() Kind { return KindAuthentication }

// Detail はClassifiedを実装します。
func (e *AuthenticationError) Detail() string { return e.Error() }

// NewAuthenticationError は新しいAuthenticationErrorを作成し、スタックトレースを付与します。
func NewAuthenticationError(provider, message string) error {
	return errors.WithStack(&AuthenticationError{Provider: provider, Message: message})
}

// RetrievalError はアーティファクトが見つからない、または取得できない場合のエラーです。
type RetrievalError struct {
	Provider string
	Message  string
	Err      error
}

func (e *RetrievalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: could not get data: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: could not get data: %s", e.Provider, e.Message)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Kind はClassifiedを実装します。
func (e *RetrievalError) Kind() Kind { return KindRetrieval }

// Detail はClassifiedを実装します。
func (e *RetrievalError) Detail() string { return e.Error() }

// NewRetrievalError は新しいRetrievalErrorを作成し、スタックトレースを付与します。
func NewRetrievalError(provider, message string, err error) error {
	return errors.WithStack(&RetrievalError{Provider: provider, Message: message, Err: err})
}

// ProviderError はプロバイダ固有の失敗（レート制限、権限など）を表します。
type ProviderError struct {
	Provider   string
	StatusCode int // HTTPステータス。不明な場合は0
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s request failed", e.Provider)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Kind はClassifiedを実装します。
func (e *ProviderError) Kind() Kind { return KindProvider }

// Detail はClassifiedを実装します。
func (e *ProviderError) Detail() string { return e.Error() }

// NewProviderError は新しいProviderErrorを作成し、スタックトレースを付与します。
func NewProviderError(provider string, statusCode int, message string, err error) error {
	return errors.WithStack(&ProviderError{Provider: provider, StatusCode: statusCode, Message: message, Err: err})
}

// DecompositionError は特徴量行列から独立成分を推定できない場合のエラーです。
type DecompositionError struct {
	Op      string
	Message string
	Err     error
}

func (e *DecompositionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *DecompositionError) Unwrap() error { return e.Err }

// Kind はClassifiedを実装します。
func (e *DecompositionError) Kind() Kind { return KindDecomposition }

// Detail はClassifiedを実装します。
func (e *DecompositionError) Detail() string { return e.Error() }

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DecompositionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("message", e.Message).
		Str("type", "DecompositionError")
}

// NewDecompositionError は新しいDecompositionErrorを作成し、スタックトレースを付与します。
func NewDecompositionError(op, message string, err error) error {
	return errors.WithStack(&DecompositionError{Op: op, Message: message, Err: err})
}

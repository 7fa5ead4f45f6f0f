package probe

import (
	"github.com/google/uuid"

	"github.com/YuminosukeSato/icaprobe/evaluation"
	"github.com/YuminosukeSato/icaprobe/pkg/errors"
)

// ResultCode is the machine-checkable result of a run.
type ResultCode int

const (
	ResultFalse                 ResultCode = 0
	ResultTrue                  ResultCode = 1
	ResultInputError            ResultCode = 2
	ResultTargetConnectionError ResultCode = 3
	ResultGenericError          ResultCode = 4
)

// String returns the code name.
func (c ResultCode) String() string {
	switch c {
	case ResultFalse:
		return "FALSE"
	case ResultTrue:
		return "TRUE"
	case ResultInputError:
		return "INPUT_ERROR"
	case ResultTargetConnectionError:
		return "TARGET_CONNECTION_ERROR"
	default:
		return "GENERIC_ERROR"
	}
}

// IsError reports whether the code is one of the failure codes.
func (c ResultCode) IsError() bool {
	return c != ResultFalse && c != ResultTrue
}

// KurtosisDetails is the evidence attached to a successful run.
type KurtosisDetails struct {
	NumIndependentComponents int       `json:"num_independent_components"`
	KurtosisValues           []float64 `json:"kurtosis_values"`
	Evaluation               string    `json:"evaluation"`
}

// Outcome is the single terminal result of a run.
type Outcome struct {
	RunID         string         `json:"run_id"`
	IntegerResult ResultCode     `json:"integer_result"`
	Result        string         `json:"result"`
	PrettyResult  string         `json:"pretty_result"`
	ExtraData     map[string]any `json:"extra_data"`

	// Verdict is set on successful runs only.
	Verdict *evaluation.Verdict `json:"-"`
	// Err is the error that ended a failed run.
	Err error `json:"-"`
}

func successOutcome(runID string, v evaluation.Verdict) *Outcome {
	code := ResultFalse
	if v.Good {
		code = ResultTrue
	}
	return &Outcome{
		RunID:         runID,
		IntegerResult: code,
		Result:        code.String(),
		PrettyResult:  v.Summary,
		ExtraData: map[string]any{
			"kurtosis_details": KurtosisDetails{
				NumIndependentComponents: v.NumComponents,
				KurtosisValues:           v.KurtosisValues,
				Evaluation:               v.Evaluation,
			},
		},
		Verdict: &v,
	}
}

// FailureOutcome builds the outcome for an error raised before a run could
// start, such as unreadable input. It uses the same mapping as Run.
func FailureOutcome(err error) *Outcome {
	return failureOutcome(uuid.NewString(), err)
}

func failureOutcome(runID string, err error) *Outcome {
	code, pretty, detail := classify(err)
	return &Outcome{
		RunID:         runID,
		IntegerResult: code,
		Result:        code.String(),
		PrettyResult:  pretty,
		ExtraData:     map[string]any{"Error": detail},
		Err:           err,
	}
}

// failureMapping turns one kind of error into the outcome fields.
type failureMapping struct {
	code   ResultCode
	pretty func(err error) string
	detail func(err error) string
}

// dispatch is the single table from error kind to outcome. Every Kind has
// exactly one entry.
var dispatch = map[errors.Kind]failureMapping{
	errors.KindConfiguration: {
		code: ResultInputError,
		pretty: func(err error) string {
			var e *errors.ConfigurationError
			errors.As(err, &e)
			return "Configuration Error: " + e.Error()
		},
		detail: classifiedDetail,
	},
	errors.KindDataset: {
		code: ResultInputError,
		pretty: func(err error) string {
			var e *errors.DatasetError
			errors.As(err, &e)
			return "Dataset Error: " + e.Error()
		},
		detail: classifiedDetail,
	},
	errors.KindAuthentication: {
		code: ResultTargetConnectionError,
		pretty: func(err error) string {
			var e *errors.AuthenticationError
			errors.As(err, &e)
			return e.Provider + " Authentication Error: Unable to authenticate with " + e.Provider + "."
		},
		detail: classifiedDetail,
	},
	errors.KindRetrieval: {
		code: ResultTargetConnectionError,
		pretty: func(err error) string {
			var e *errors.RetrievalError
			errors.As(err, &e)
			return e.Provider + " Get Error: Unable to retrieve data from " + e.Provider + "."
		},
		detail: classifiedDetail,
	},
	errors.KindProvider: {
		code: ResultTargetConnectionError,
		pretty: func(err error) string {
			var e *errors.ProviderError
			errors.As(err, &e)
			return e.Provider + " Error: Unable to process " + e.Provider + " request."
		},
		detail: classifiedDetail,
	},
	errors.KindDecomposition: {
		code: ResultInputError,
		pretty: func(err error) string {
			var e *errors.DecompositionError
			errors.As(err, &e)
			return "Decomposition Error: " + e.Error()
		},
		detail: classifiedDetail,
	},
	errors.KindUnknown: {
		code: ResultGenericError,
		pretty: func(err error) string {
			return "Internal Error: " + err.Error()
		},
		detail: func(err error) string { return err.Error() },
	},
}

func classifiedDetail(err error) string {
	var c errors.Classified
	errors.As(err, &c)
	return c.Detail()
}

// classify looks the error up in the dispatch table. Recovered panics are
// always internal errors, whatever value they carried.
func classify(err error) (ResultCode, string, string) {
	kind := errors.KindOf(err)
	var pe *errors.PanicError
	if errors.As(err, &pe) {
		kind = errors.KindUnknown
	}
	m, ok := dispatch[kind]
	if !ok {
		m = dispatch[errors.KindUnknown]
	}
	return m.code, m.pretty(err), m.detail(err)
}

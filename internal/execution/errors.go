package execution

import "fmt"

// Kind classifies a pipeline failure. Everything except KindBroker is
// detected before any network call and is returned with no retry; broker
// failures are surfaced verbatim and never retried automatically.
type Kind string

const (
	KindAuth         Kind = "AUTH_ERROR"
	KindParse        Kind = "PARSE_ERROR"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindExchangeRule Kind = "EXCHANGE_RULE_VIOLATION"
	KindBroker       Kind = "BROKER_ERROR"
	KindLogging      Kind = "LOGGING_ERROR"
)

// PipelineError is the typed failure threaded through the order pipeline;
// each stage short-circuits on the first one.
type PipelineError struct {
	Kind Kind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *PipelineError {
	return &PipelineError{Kind: kind, Err: err}
}

func errorf(kind Kind, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

package pricing

import (
	"errors"
	"fmt"
)

// ErrorKind tags a pipeline failure so callers can branch without matching messages.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindModelUnavailable ErrorKind = "model_unavailable"
	KindInference        ErrorKind = "inference"
)

// Pipeline error sentinels, matched with errors.Is against any *PipelineError of the same kind.
var (
	ErrValidation       = errors.New("invalid car description")
	ErrModelUnavailable = errors.New("pricing model unavailable")
	ErrInference        = errors.New("price inference failed")
)

// PipelineError is the tagged failure returned by every pipeline operation.
type PipelineError struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of this error's kind.
func (e *PipelineError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrModelUnavailable:
		return e.Kind == KindModelUnavailable
	case ErrInference:
		return e.Kind == KindInference
	}
	return false
}

func newValidationError(field, format string, args ...any) *PipelineError {
	return &PipelineError{
		Kind:    KindValidation,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func newModelUnavailableError(message string, err error) *PipelineError {
	return &PipelineError{
		Kind:    KindModelUnavailable,
		Message: message,
		Err:     err,
	}
}

func newInferenceError(message string, err error) *PipelineError {
	return &PipelineError{
		Kind:    KindInference,
		Message: message,
		Err:     err,
	}
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsModelUnavailable(err error) bool {
	return errors.Is(err, ErrModelUnavailable)
}

func IsInferenceError(err error) bool {
	return errors.Is(err, ErrInference)
}

// ErrorKindOf returns the kind of the first PipelineError in err's chain, or "" if there is none.
func ErrorKindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

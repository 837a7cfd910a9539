package analyzer

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures for operator logs and metrics. End
// users never see a kind, only the uniform fallback answer.
type Kind string

const (
	KindSchemaIntrospection Kind = "schema_introspection_failure"
	KindQuestionRejected    Kind = "question_rejected"
	KindGeneration          Kind = "generation_failure"
	KindMalformedResponse   Kind = "malformed_response"
	KindNotASelect          Kind = "not_a_select_statement"
	KindUnsafeStatement     Kind = "unsafe_statement"
	KindExecution           Kind = "execution_error"
)

// PipelineError is a classified failure of one pipeline stage.
type PipelineError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error without an underlying cause.
func NewError(kind Kind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message}
}

// Errorf creates a classified error with a formatted message.
func Errorf(kind Kind, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(err error, kind Kind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Cause: err}
}

// KindOf extracts the kind from err, or "" when err is unclassified.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

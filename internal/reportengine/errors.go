package reportengine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTenant is returned when the caller carries no organisation.
var ErrMissingTenant = errors.New("reportengine: caller has no organisation")

// ValidationError reports a malformed definition. No query runs when one is returned.
type ValidationError struct {
	Field    string   `json:"field,omitempty"`
	Operator Operator `json:"operator,omitempty"`
	Reason   string   `json:"reason"`
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid report definition")
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Operator != "" {
		fmt.Fprintf(&b, " operator %q", e.Operator)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

func invalid(field string, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func invalidOp(field string, op Operator, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Operator: op, Reason: fmt.Sprintf(format, args...)}
}

// ExecutionError wraps a failure of the underlying data store.
type ExecutionError struct {
	DataSource string
	Err        error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("report query on %s failed: %v", e.DataSource, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

package filter

import (
	"fmt"

	"github.com/pkg/errors"
)

// InvalidFilterError is returned when a filter cannot be applied to its field.
// The request is rejected before the backend is touched.
type InvalidFilterError struct {
	Field    string
	Operator Operator
	Reason   string
}

func (e *InvalidFilterError) Error() string {
	if e.Operator == "" {
		return fmt.Sprintf("invalid filter on %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid filter %s on %q: %s", e.Operator, e.Field, e.Reason)
}

func invalidf(spec *Spec, format string, args ...any) error {
	return &InvalidFilterError{
		Field:    spec.Field,
		Operator: spec.Operator,
		Reason:   fmt.Sprintf(format, args...),
	}
}

// QueryExecutionError wraps a failure of the underlying collection.
type QueryExecutionError struct {
	Collection string
	Err        error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Collection, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

func (e *QueryExecutionError) Cause() error { return e.Err }

func IsInvalidFilter(err error) bool {
	var target *InvalidFilterError
	return errors.As(err, &target)
}

func IsQueryExecution(err error) bool {
	var target *QueryExecutionError
	return errors.As(err, &target)
}

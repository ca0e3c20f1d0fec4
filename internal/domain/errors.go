package domain

import (
	"errors"
	"fmt"
)

// FormatError reports a fixed-width or free-text field whose text does not
// match the numeric grammar it is decoded with.
type FormatError struct {
	Line  int    // 1-based line number in the source file
	Field string // e.g. "year", "pga", "reporting time"
	Value string // raw field text
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// NotFoundError reports that a report lacks a required element.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return e.What + " not found"
}

// Elements a report must contain.
const (
	ElementReportingTime = "reporting time"
	ElementSolution      = "solution line"
)

// InsufficientDataError reports a file with too few non-blank lines to hold
// a solution.
type InsufficientDataError struct {
	Lines int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d non-blank lines, need at least %d", e.Lines, minReportLines)
}

// FailureReason maps a report error to a short, stable label used for
// metrics and log attributes.
func FailureReason(err error) string {
	var (
		insufficient *InsufficientDataError
		notFound     *NotFoundError
		format       *FormatError
	)
	switch {
	case errors.As(err, &insufficient):
		return "insufficient_data"
	case errors.As(err, &notFound):
		switch notFound.What {
		case ElementReportingTime:
			return "reporting_time_not_found"
		case ElementSolution:
			return "solution_not_found"
		}
		return "not_found"
	case errors.As(err, &format):
		return "format"
	default:
		return "io"
	}
}

func formatErr(line int, field, value string, err error) *FormatError {
	return &FormatError{Line: line, Field: field, Value: value, Err: err}
}

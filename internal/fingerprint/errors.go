package fingerprint

import "errors"

var (
	// ErrDivisionByZero is returned when a trace has no incoming packets and
	// the in/out packet ratio is undefined.
	ErrDivisionByZero = errors.New("in/out ratio undefined: trace has no incoming packets")

	// ErrEmptyTrace is returned when no packets remain after size filtering.
	ErrEmptyTrace = errors.New("trace is empty after filtering")
)

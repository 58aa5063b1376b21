package compose

import (
	"errors"
	"fmt"
	"time"
)

// FailureKind classifies a pipeline failure for callers. Every kind except
// KindValidation is reported with elapsed processing time; validation
// failures happen before any work starts.
type FailureKind int

const (
	KindValidation FailureKind = iota
	KindSubtitle
	KindEncode
	KindEncodeTimeout
	KindOutputInvalid
)

func (k FailureKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSubtitle:
		return "subtitle"
	case KindEncode:
		return "encode"
	case KindEncodeTimeout:
		return "encode-timeout"
	case KindOutputInvalid:
		return "output-invalid"
	default:
		return "unknown"
	}
}

// Error is the single failure type surfaced by the pipeline.
type Error struct {
	Kind        FailureKind
	Message     string
	Diagnostics string // engine stderr tail, where available
	Elapsed     time.Duration
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the failure kind from any error returned by the pipeline.
// Non-pipeline errors classify as KindEncode, the catch-all.
func KindOf(err error) FailureKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindEncode
}

// DiagnosticsOf returns the engine diagnostics attached to err, if any.
func DiagnosticsOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Diagnostics
	}
	return ""
}

// ElapsedOf returns the processing time attached to err, if any.
func ElapsedOf(err error) time.Duration {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Elapsed
	}
	return 0
}

func failf(kind FailureKind, elapsed time.Duration, cause error, format string, a ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
		Elapsed: elapsed,
		cause:   cause,
	}
}

package wp

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed matches any non-2xx status, transport error or
	// undecodable body. Use errors.As with *RequestError for details.
	ErrRequestFailed = errors.New("wp: request failed")

	// ErrCancelled matches requests abandoned because their context ended.
	// It is an expected outcome and is never logged as an error.
	ErrCancelled = errors.New("wp: request cancelled")

	// ErrNotFound is returned when a lookup by slug yields no resource.
	ErrNotFound = errors.New("wp: not found")
)

// RequestError describes a failed request.
type RequestError struct {
	Op     string // client operation, e.g. "categories"
	URL    string
	Status int // 0 for transport or decode failures
	Err    error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("wp: %s: HTTP %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("wp: %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("wp: %s: request failed", e.Op)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is reports ErrRequestFailed so callers can match without errors.As.
func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

// CancelledError wraps the context error of an abandoned request.
type CancelledError struct {
	Op  string
	Err error // context.Canceled or context.DeadlineExceeded
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("wp: %s: cancelled: %v", e.Op, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

func (e *CancelledError) Is(target error) bool { return target == ErrCancelled }

func cancelled(op string, ctx context.Context) error {
	err := ctx.Err()
	if err == nil {
		err = context.Canceled
	}
	return &CancelledError{Op: op, Err: err}
}

// Outcome is the three-way result of a content request.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeFailed
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Classify maps an error returned by this package (or by code built on it)
// to an Outcome. A *RequestError is always a failure, even when its cause is
// a transport timeout matching context.DeadlineExceeded. Other context errors
// count as cancellation.
func Classify(err error) Outcome {
	var rerr *RequestError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrCancelled):
		return OutcomeCancelled
	case errors.As(err, &rerr):
		return OutcomeFailed
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}

// IsCancelled is shorthand for Classify(err) == OutcomeCancelled.
func IsCancelled(err error) bool {
	return Classify(err) == OutcomeCancelled
}

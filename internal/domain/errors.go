package domain

import (
	"errors"
	"fmt"
)

// ErrNoData marks an empty provider result: unknown ticker, delisted symbol,
// or a date range with no coverage. Callers render an empty state and
// continue; this never aborts a pipeline run.
var ErrNoData = errors.New("no data available")

// TransientError wraps a network or provider failure that is likely to
// succeed on a later attempt. The pipeline does not retry automatically; the
// UI surfaces a retry prompt instead.
type TransientError struct {
	Op  string // operation that failed, e.g. "fetch prices"
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError.
func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

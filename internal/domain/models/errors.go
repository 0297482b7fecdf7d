package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the recoverable failure classes. Loops log these and
// carry on; only startup failures are allowed to terminate a process.
var (
	// ErrStorageUnavailable marks connection or query failures against the
	// backing store. Recovered at cycle granularity.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidSelection marks an unrecognized price selection value.
	ErrInvalidSelection = errors.New("invalid price selection")

	// ErrQueueUnavailable marks transport failures sending or receiving.
	ErrQueueUnavailable = errors.New("queue unavailable")

	// ErrNoData is returned by reads that found nothing to return.
	ErrNoData = errors.New("no data available")
)

// ValidationError reports a malformed model at construction time.
type ValidationError struct {
	Model  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Model, e.Reason)
}

func newValidationError(model, reason string) *ValidationError {
	return &ValidationError{Model: model, Reason: reason}
}

// AggregationError wraps a query-level failure during aggregation with
// enough context to diagnose without crashing the owning loop.
type AggregationError struct {
	Instrument string
	Timescale  Timescale
	Err        error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate %s/%s: %v", e.Instrument, e.Timescale, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

// NewAggregationError wraps err with instrument and timescale context.
func NewAggregationError(instrument string, timescale Timescale, err error) *AggregationError {
	return &AggregationError{Instrument: instrument, Timescale: timescale, Err: err}
}

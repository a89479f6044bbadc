package store

import "errors"

var (
	// ErrNoSamples is returned when a pool has no metric samples in the
	// requested range.
	ErrNoSamples = errors.New("no samples for pool")

	// ErrInvalidRange is returned when a history query start is after its end.
	ErrInvalidRange = errors.New("start is after end")
)

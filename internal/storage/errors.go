package storage

import "errors"

// Sentinel errors returned across all store implementations. Callers match
// them with errors.Is; implementations wrap driver errors into these.
var (
	// ErrNotFound: the simulation ID (or progress key) has no record.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey: a result for this simulation ID already exists.
	// Completed results are write-once and never updated in place.
	ErrDuplicateKey = errors.New("duplicate key: store does not allow updates")

	// ErrInvalidInput: the caller passed an empty ID, a nil record, or a
	// progress value outside [0,100].
	ErrInvalidInput = errors.New("invalid input")
)

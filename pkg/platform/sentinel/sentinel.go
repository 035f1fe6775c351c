package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, locks and brokers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: record does not exist in the store
// - ErrConflict: a record with the same natural key already exists
// - ErrInUse: record is still referenced and cannot be removed
// - ErrLocked: a dedup run already holds the lock
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrInUse       = errors.New("in use")
	ErrLocked      = errors.New("locked")
	ErrUnavailable = errors.New("unavailable")
)

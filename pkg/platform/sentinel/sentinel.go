package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about stored objects, not validation
// failures:
//   - ErrNotFound: object does not exist in the store
//   - ErrAlreadyExists: an object with that key is already stored
//   - ErrInvalidState: object is in the wrong state for the requested mutation
//   - ErrUnavailable: backing service temporarily unreachable
//
// For validation failures (bad input, broken invariants), use
// pkg/domain-errors directly.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnavailable   = errors.New("unavailable")
)

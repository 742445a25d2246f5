package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store; this includes ids that fall
//   outside the time-partitioned backend's probe horizon, which is surfaced
//   uniformly so callers cannot infer storage internals
// - ErrConflict: entity already exists where it must not
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: backend or resource temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

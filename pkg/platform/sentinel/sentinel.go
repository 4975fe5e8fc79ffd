package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Caches and session contexts
// return these (optionally wrapped) so callers can branch without string
// matching:
// - ErrNotFound: entity does not exist in the store or cache
// - ErrTornDown: owning component was disposed; late responses are dropped
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound = errors.New("not found")
	ErrTornDown = errors.New("torn down")
)

package batching

import "errors"

// Domain errors surfaced by batch assembly and locking. The messages double
// as stable API error codes.
var (
	ErrOrderNotFound = errors.New("ORDER_NOT_FOUND")
	ErrBatchLocked   = errors.New("BATCH_LOCKED")
)

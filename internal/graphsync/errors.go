package graphsync

import "errors"

// Sentinel kinds for synchronization errors.
var (
	// ErrGraphUnavailable aborts a bulk resync whose writes would all no-op.
	ErrGraphUnavailable = errors.New("graph store unavailable")
)

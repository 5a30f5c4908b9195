package graphstore

import "errors"

// Sentinel kinds for graph store errors.
var (
	ErrConnect = errors.New("graph connect failed")
	ErrQuery   = errors.New("graph query failed")
)

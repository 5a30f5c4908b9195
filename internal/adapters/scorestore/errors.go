package scorestore

import "errors"

// Sentinel kinds for score store errors.
var (
	ErrInvalidRange = errors.New("invalid range")
)

package scorestore

import "time"

// MemOption applies a configuration option to the MemStore.
type MemOption func(*MemStore)

// WithClock overrides the clock used for key expiration. Tests use this to
// age keys without sleeping.
func WithClock(now func() time.Time) MemOption {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

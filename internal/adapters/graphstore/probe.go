package graphstore

import (
	"context"
	"sync"
	"time"
)

// ProbeState is the availability state of a graph backend.
type ProbeState int

// Probe states.
const (
	Unprobed ProbeState = iota
	Available
	Unavailable
)

func (s ProbeState) String() string {
	switch s {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "unprobed"
	}
}

// Prober memoizes a backend liveness check.
//
// The default policy probes once per instance: after the first failure the
// backend stays marked unavailable until the adapter is recreated. A re-probe
// interval turns that into a TTL policy where failures are re-checked, so a
// restored backend is picked up without a restart. A successful probe is
// always memoized for the instance's lifetime.
type Prober struct {
	mu        sync.Mutex
	state     ProbeState
	checkedAt time.Time
	reprobe   time.Duration
	probe     func(context.Context) error
	now       func() time.Time
}

// ProbeOption applies a configuration option to the Prober.
type ProbeOption func(*Prober)

// WithReprobeInterval re-checks a failed backend after the given interval.
// Zero keeps the probe-once policy.
func WithReprobeInterval(d time.Duration) ProbeOption {
	return func(p *Prober) {
		if d > 0 {
			p.reprobe = d
		}
	}
}

// WithProbeClock overrides the clock used for the re-probe policy.
func WithProbeClock(now func() time.Time) ProbeOption {
	return func(p *Prober) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProber wraps a liveness check in the memoizing state machine.
func NewProber(probe func(context.Context) error, opts ...ProbeOption) *Prober {
	p := &Prober{
		probe: probe,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Available runs or replays the probe according to the policy.
func (p *Prober) Available(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case Available:
		return true
	case Unavailable:
		if p.reprobe == 0 || p.now().Sub(p.checkedAt) < p.reprobe {
			return false
		}
	}
	return p.run(ctx)
}

// State reports the current machine state without probing.
func (p *Prober) State() ProbeState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Reset returns the machine to Unprobed so the next call probes again.
func (p *Prober) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Unprobed
}

// run executes the probe. Callers must hold mu.
func (p *Prober) run(ctx context.Context) bool {
	p.checkedAt = p.now()
	if err := p.probe(ctx); err != nil {
		p.state = Unavailable
		return false
	}
	p.state = Available
	return true
}

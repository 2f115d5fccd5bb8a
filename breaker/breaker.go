// Package breaker provides the circuit breaker used to shed load when the
// middleware behind it keeps failing.
//
//   - Closed: requests pass; consecutive failures are counted.
//   - Open: requests are rejected until OpenTimeout has elapsed.
//   - HalfOpen: up to HalfOpenMaxSuccess probes pass at a time; that many
//     successes close the breaker, any failure reopens it.
package breaker

import (
	"sync"
	"time"
)

// State is the breaker state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds the breaker thresholds. Zero fields take the package
// defaults.
type Config struct {
	// FailureThreshold is the number of consecutive failures that trip a
	// closed breaker.
	FailureThreshold int
	// OpenTimeout is how long the breaker stays open.
	OpenTimeout time.Duration
	// HalfOpenMaxSuccess is the number of probe successes needed to close
	// again, and the number of probes allowed in flight.
	HalfOpenMaxSuccess int
}

const (
	DefaultFailureThreshold   = 5
	DefaultOpenTimeout        = 30 * time.Second
	DefaultHalfOpenMaxSuccess = 1
)

func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = DefaultOpenTimeout
	}
	if c.HalfOpenMaxSuccess <= 0 {
		c.HalfOpenMaxSuccess = DefaultHalfOpenMaxSuccess
	}
	return c
}

// Breaker is safe for concurrent use.
type Breaker struct {
	mu  sync.Mutex
	cfg Config

	state     State
	failures  int // consecutive, while Closed
	successes int // while HalfOpen
	probes    int // in flight, while HalfOpen
	openedAt  time.Time

	now func() time.Time
}

// New returns a closed breaker.
func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg.withDefaults(), now: time.Now}
}

// State returns the current state, moving Open to HalfOpen once the timeout
// has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// Allow reports whether a request may pass. In HalfOpen every allowed
// request is a probe and must be followed by OnSuccess or OnFailure.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()

	switch b.state {
	case Closed:
		return true
	case HalfOpen:
		if b.probes+b.successes >= b.cfg.HalfOpenMaxSuccess {
			return false
		}
		b.probes++
		return true
	default:
		return false
	}
}

// OnSuccess records a successful request.
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures = 0
	case HalfOpen:
		b.endProbe()
		b.successes++
		if b.successes >= b.cfg.HalfOpenMaxSuccess {
			b.state = Closed
			b.failures, b.successes = 0, 0
		}
	}
}

// OnFailure records a failed request.
func (b *Breaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	case HalfOpen:
		b.trip()
	}
}

// RetryAfter returns the time left until an open breaker lets probes
// through, or 0 when it is not open.
func (b *Breaker) RetryAfter() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	if b.state != Open {
		return 0
	}
	return b.cfg.OpenTimeout - b.now().Sub(b.openedAt)
}

// advance must be called with b.mu held.
func (b *Breaker) advance() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.state = HalfOpen
		b.successes, b.probes = 0, 0
	}
}

func (b *Breaker) endProbe() {
	if b.probes > 0 {
		b.probes--
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.successes, b.probes = 0, 0
}

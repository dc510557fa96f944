// Package breaker implements the per-capability circuit breaker that stops
// routing to a capability after repeated failures and re-probes it after a
// recovery timeout.
package breaker

import (
	"log/slog"
	"sync"
	"time"
)

// State is a circuit breaker state.
type State string

const (
	// Closed allows routing; the capability is considered healthy.
	Closed State = "closed"
	// Open refuses routing until the recovery timeout elapses.
	Open State = "open"
	// HalfOpen allows a single probe request through.
	HalfOpen State = "half_open"
)

const (
	// DefaultFailureThreshold is the failure count that opens the circuit.
	DefaultFailureThreshold = 3
	// DefaultRecoveryTimeout is how long the circuit stays open before the
	// next state read moves it to HalfOpen.
	DefaultRecoveryTimeout = 30 * time.Second
)

// Breaker tracks failures for one named capability.
//
// The Open→HalfOpen transition happens lazily when CurrentState is read,
// not on a timer; there is no background goroutine.
type Breaker struct {
	name            string
	threshold       int
	recoveryTimeout time.Duration
	logger          *slog.Logger
	now             func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithThreshold overrides the failure threshold.
func WithThreshold(n int) Option {
	return func(b *Breaker) { b.threshold = n }
}

// WithRecoveryTimeout overrides the recovery timeout.
func WithRecoveryTimeout(d time.Duration) Option {
	return func(b *Breaker) { b.recoveryTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Breaker) { b.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// New creates a closed breaker for the named capability.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:            name,
		threshold:       DefaultFailureThreshold,
		recoveryTimeout: DefaultRecoveryTimeout,
		logger:          slog.Default(),
		now:             time.Now,
		state:           Closed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the capability name this breaker guards.
func (b *Breaker) Name() string { return b.name }

// CurrentState returns the breaker state, lazily transitioning Open to
// HalfOpen once the recovery timeout has elapsed since the last failure.
// Reading state is the only trigger for that transition.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentStateLocked()
}

func (b *Breaker) currentStateLocked() State {
	if b.state == Open && b.now().Sub(b.lastFailure) > b.recoveryTimeout {
		b.state = HalfOpen
		b.logger.Info("circuit breaker half-open",
			slog.String("capability", b.name),
		)
	}
	return b.state
}

// IsAvailable reports whether routing is allowed: true in Closed and
// HalfOpen, false only in Open.
func (b *Breaker) IsAvailable() bool {
	return b.CurrentState() != Open
}

// RecordSuccess closes the circuit and resets the failure count, from any
// state. A transition is logged only when the prior state was not Closed.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != Closed {
		b.logger.Info("circuit breaker closed",
			slog.String("capability", b.name),
		)
	}
	b.state = Closed
	b.failures = 0
}

// RecordFailure counts a failure and stamps its time. The circuit opens
// when the count reaches the threshold, or unconditionally from HalfOpen:
// a probe gets no second chance.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()

	if b.failures >= b.threshold || b.state == HalfOpen {
		if b.state != Open {
			b.logger.Warn("circuit breaker open",
				slog.String("capability", b.name),
				slog.Int("failures", b.failures),
			)
		}
		b.state = Open
	}
}

// FailureCount returns the current failure count.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

package breaker

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBreaker(threshold int, recovery time.Duration) (*Breaker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	b := New("recommendation",
		WithThreshold(threshold),
		WithRecoveryTimeout(recovery),
		WithClock(clock.Now),
	)
	return b, clock
}

func TestBreaker_StartsClosed(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second)

	if got := b.CurrentState(); got != Closed {
		t.Fatalf("expected Closed, got %s", got)
	}
	if !b.IsAvailable() {
		t.Error("expected availability while Closed")
	}
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	b, _ := newTestBreaker(3, 30*time.Second)

	b.RecordFailure()
	b.RecordFailure()
	if got := b.CurrentState(); got != Closed {
		t.Fatalf("expected Closed below threshold, got %s", got)
	}

	b.RecordFailure()
	if got := b.CurrentState(); got != Open {
		t.Fatalf("expected Open at threshold, got %s", got)
	}
	if b.IsAvailable() {
		t.Error("expected unavailability while Open")
	}
}

func TestBreaker_SuccessResetsFromAnyState(t *testing.T) {
	b, clock := newTestBreaker(2, 30*time.Second)

	// From Open.
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	if got := b.CurrentState(); got != Closed {
		t.Fatalf("expected Closed after success, got %s", got)
	}
	if got := b.FailureCount(); got != 0 {
		t.Errorf("expected failure count 0, got %d", got)
	}

	// From HalfOpen.
	b.RecordFailure()
	b.RecordFailure()
	clock.Advance(31 * time.Second)
	if got := b.CurrentState(); got != HalfOpen {
		t.Fatalf("expected HalfOpen after recovery timeout, got %s", got)
	}
	b.RecordSuccess()
	if got := b.CurrentState(); got != Closed {
		t.Fatalf("expected Closed after half-open success, got %s", got)
	}
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(3, 30*time.Second)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordFailure()
	clock.Advance(31 * time.Second)
	if got := b.CurrentState(); got != HalfOpen {
		t.Fatalf("expected HalfOpen, got %s", got)
	}

	// A single failure while HalfOpen reopens immediately, regardless of
	// the threshold.
	b.RecordFailure()
	if got := b.CurrentState(); got != Open {
		t.Fatalf("expected Open after half-open failure, got %s", got)
	}
}

func TestBreaker_HalfOpenIsAvailable(t *testing.T) {
	b, clock := newTestBreaker(1, 10*time.Second)

	b.RecordFailure()
	if b.IsAvailable() {
		t.Fatal("expected unavailability while Open")
	}

	clock.Advance(11 * time.Second)
	if !b.IsAvailable() {
		t.Fatal("expected availability for the half-open probe")
	}
}

func TestBreaker_RecoveryCycle(t *testing.T) {
	// threshold=2, short recovery: fail twice, wait, read state, succeed.
	b, clock := newTestBreaker(2, 10*time.Millisecond)

	b.RecordFailure()
	b.RecordFailure()
	if got := b.CurrentState(); got != Open {
		t.Fatalf("expected Open, got %s", got)
	}

	clock.Advance(20 * time.Millisecond)
	if got := b.CurrentState(); got != HalfOpen {
		t.Fatalf("expected HalfOpen, got %s", got)
	}

	b.RecordSuccess()
	if got := b.CurrentState(); got != Closed {
		t.Fatalf("expected Closed, got %s", got)
	}
	if got := b.FailureCount(); got != 0 {
		t.Errorf("expected failure count 0, got %d", got)
	}
}

func TestBreaker_Defaults(t *testing.T) {
	b := New("general")
	if b.threshold != DefaultFailureThreshold {
		t.Errorf("expected default threshold %d, got %d", DefaultFailureThreshold, b.threshold)
	}
	if b.recoveryTimeout != DefaultRecoveryTimeout {
		t.Errorf("expected default recovery timeout %s, got %s", DefaultRecoveryTimeout, b.recoveryTimeout)
	}
}

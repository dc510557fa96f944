package cache

import (
	"context"
	"testing"
	"time"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestMemory(defaultTTL time.Duration, maxSize int) (*Memory, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(defaultTTL, maxSize)
	m.now = clock.Now
	return m, clock
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(time.Hour, 10)

	m.Set(ctx, "k", "v", 0)

	got, ok := m.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit for freshly set key")
	}
	if got != "v" {
		t.Errorf("expected value %q, got %v", "v", got)
	}
}

func TestMemory_GetExpired(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory(time.Hour, 10)

	m.Set(ctx, "k", 42, time.Minute)
	clock.Advance(time.Minute + time.Second)

	if _, ok := m.Get(ctx, "k"); ok {
		t.Fatal("expected expired entry to be treated as absent")
	}
	// Expired entry is removed as a side effect of Get.
	if size := m.Size(ctx); size != 0 {
		t.Errorf("expected size 0 after expiry-check miss, got %d", size)
	}
}

func TestMemory_EvictsSoonestExpiry(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(time.Hour, 2)

	// "b" expires before "a" even though "a" was inserted first.
	m.Set(ctx, "a", 1, 2*time.Hour)
	m.Set(ctx, "b", 2, time.Minute)
	m.Set(ctx, "c", 3, time.Hour)

	if size := m.Size(ctx); size != 2 {
		t.Fatalf("expected size 2 after eviction, got %d", size)
	}
	if _, ok := m.Get(ctx, "b"); ok {
		t.Error("expected the soonest-expiring entry to be evicted")
	}
	if got, ok := m.Get(ctx, "a"); !ok || got != 1 {
		t.Errorf("expected a=1 to survive, got %v (ok=%v)", got, ok)
	}
	if got, ok := m.Get(ctx, "c"); !ok || got != 3 {
		t.Errorf("expected c=3 present, got %v (ok=%v)", got, ok)
	}
}

func TestMemory_CapacityNeverExceeded(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestMemory(time.Hour, 2)

	m.Set(ctx, "a", 1, 0)
	clock.Advance(time.Second)
	m.Set(ctx, "b", 2, 0)
	clock.Advance(time.Second)
	m.Set(ctx, "c", 3, 0)

	if size := m.Size(ctx); size != 2 {
		t.Fatalf("expected size 2, got %d", size)
	}
	if got, ok := m.Get(ctx, "c"); !ok || got != 3 {
		t.Errorf("expected c=3 present, got %v (ok=%v)", got, ok)
	}
	// With equal TTLs the earliest Set holds the nearest expiry.
	if _, ok := m.Get(ctx, "a"); ok {
		t.Error("expected a to be evicted")
	}
}

func TestMemory_OverwriteExistingKeyAtCapacity(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(time.Hour, 2)

	m.Set(ctx, "a", 1, 0)
	m.Set(ctx, "b", 2, 0)
	m.Set(ctx, "a", 10, 0)

	if size := m.Size(ctx); size != 2 {
		t.Fatalf("expected overwrite not to evict, size=%d", size)
	}
	if got, _ := m.Get(ctx, "a"); got != 10 {
		t.Errorf("expected a=10 after overwrite, got %v", got)
	}
	if got, _ := m.Get(ctx, "b"); got != 2 {
		t.Errorf("expected b=2 untouched, got %v", got)
	}
}

func TestMemory_ZeroMaxSizeUsesDefault(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(time.Hour, 0)

	m.Set(ctx, "a", 1, 0)
	m.Set(ctx, "b", 2, 0)

	// Without the capacity guard the first Set would already evict and the
	// store would never hold more than one entry.
	if size := m.Size(ctx); size != 2 {
		t.Fatalf("expected both entries retained, got size %d", size)
	}
	if got, ok := m.Get(ctx, "a"); !ok || got != 1 {
		t.Errorf("expected a=1 present, got %v (ok=%v)", got, ok)
	}
	if m.maxSize != DefaultMaxSize {
		t.Errorf("expected capacity %d, got %d", DefaultMaxSize, m.maxSize)
	}
}

func TestMemory_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMemory(time.Hour, 10)

	m.Set(ctx, "a", 1, 0)
	m.Set(ctx, "b", 2, 0)

	m.Delete(ctx, "a")
	if _, ok := m.Get(ctx, "a"); ok {
		t.Error("expected a to be deleted")
	}

	m.Clear(ctx)
	if size := m.Size(ctx); size != 0 {
		t.Errorf("expected empty cache after Clear, got size %d", size)
	}
}

func TestNewBackend_FallsBackToMemory(t *testing.T) {
	// Port 1 is never a reachable Redis; the probe must fail fast and
	// select the in-process store.
	store := NewBackend(context.Background(), Options{
		RedisURL:     "redis://127.0.0.1:1/0",
		Prefix:       "test:",
		DefaultTTL:   time.Minute,
		MaxSize:      10,
		ProbeTimeout: 200 * time.Millisecond,
	})

	if _, ok := store.(*Memory); !ok {
		t.Fatalf("expected fallback to *Memory, got %T", store)
	}
}

func TestNewBackend_NoRedisURL(t *testing.T) {
	store := NewBackend(context.Background(), Options{
		DefaultTTL: time.Minute,
		MaxSize:    5,
	})
	if _, ok := store.(*Memory); !ok {
		t.Fatalf("expected *Memory when Redis is disabled, got %T", store)
	}
}

package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     any
	expiresAt time.Time
}

// Memory is a thread-safe in-process cache with per-entry TTL.
// Used as the fallback when Redis is unavailable.
type Memory struct {
	mu         sync.Mutex
	store      map[string]memoryEntry
	defaultTTL time.Duration
	maxSize    int
	now        func() time.Time
}

// DefaultMaxSize caps the store when no explicit capacity is given.
const DefaultMaxSize = 1000

// NewMemory creates an in-process cache holding at most maxSize entries.
// maxSize <= 0 falls back to DefaultMaxSize; without the guard a
// zero-capacity store would evict on every Set and behave as capacity 1.
func NewMemory(defaultTTL time.Duration, maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Memory{
		store:      make(map[string]memoryEntry),
		defaultTTL: defaultTTL,
		maxSize:    maxSize,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.store[key]
	if !ok {
		return nil, false
	}
	if m.now().After(entry.expiresAt) {
		delete(m.store, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key. When the store is full and key is new, the
// entry due to expire soonest is evicted first. Soonest-expiry eviction is
// deliberate; it is not LRU and not insertion order.
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	expiresAt := m.now().Add(ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.maxSize {
		if _, exists := m.store[key]; !exists {
			m.evictSoonest()
		}
	}
	m.store[key] = memoryEntry{value: value, expiresAt: expiresAt}
}

// evictSoonest removes the single entry with the smallest expiresAt.
// O(n) scan, called with the lock held.
func (m *Memory) evictSoonest() {
	var victim string
	var victimExpiry time.Time
	first := true
	for key, entry := range m.store {
		if first || entry.expiresAt.Before(victimExpiry) {
			victim = key
			victimExpiry = entry.expiresAt
			first = false
		}
	}
	if !first {
		delete(m.store, victim)
	}
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
}

func (m *Memory) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]memoryEntry)
}

func (m *Memory) Size(_ context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// Package session keeps bounded per-session conversation memory and builds
// context-enriched queries for follow-up questions.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopassist/gateway/internal/cache"
)

const (
	// DefaultMaxPairs is the sliding-window size in user/assistant pairs.
	DefaultMaxPairs = 10
	// DefaultTTL is the total session lifetime, independent of the
	// result-cache TTL.
	DefaultTTL = 30 * time.Minute
)

// Message is a single transcript entry.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Manager stores conversation transcripts in a cache namespace and enforces
// a sliding window of the most recent turns.
type Manager struct {
	store    cache.Store
	ttl      time.Duration
	maxPairs int
	logger   *slog.Logger
	now      func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithMaxPairs overrides the sliding-window size.
func WithMaxPairs(n int) ManagerOption {
	return func(m *Manager) { m.maxPairs = n }
}

// WithTTL overrides the session lifetime.
func WithTTL(d time.Duration) ManagerOption {
	return func(m *Manager) { m.ttl = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a session manager over the given store. The store
// should be dedicated to sessions (its own key prefix) so Clear on other
// caches cannot touch transcripts.
func NewManager(store cache.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		ttl:      DefaultTTL,
		maxPairs: DefaultMaxPairs,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create allocates a fresh session id with an empty transcript.
func (m *Manager) Create(ctx context.Context) string {
	id := uuid.New().String()
	m.save(ctx, id, []Message{})
	return id
}

// History returns the stored transcript. A missing session or an
// unparsable payload both yield an empty slice: corruption is "no
// history", not an error.
func (m *Manager) History(ctx context.Context, id string) []Message {
	raw, ok := m.store.Get(ctx, id)
	if !ok {
		return []Message{}
	}

	payload, ok := raw.(string)
	if !ok {
		m.logger.Warn("session payload has unexpected type, returning empty",
			slog.String("session_id", id),
		)
		return []Message{}
	}

	var messages []Message
	if err := json.Unmarshal([]byte(payload), &messages); err != nil {
		m.logger.Warn("failed to parse session, returning empty",
			slog.String("session_id", id),
			slog.String("error", err.Error()),
		)
		return []Message{}
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages
}

// AppendTurn appends one user+assistant pair, truncates to the most recent
// maxPairs*2 messages (dropping the oldest pairs, no archival), and
// persists.
//
// Concurrent appends on the same id are last-write-wins: the transcript is
// read, extended, and written back without a per-session lock, so one of
// two racing turns can be lost. Sessions are assumed single-writer.
func (m *Manager) AppendTurn(ctx context.Context, id, userMsg, assistantMsg string) {
	now := m.now()
	messages := m.History(ctx, id)
	messages = append(messages,
		Message{Role: "user", Content: userMsg, Timestamp: now},
		Message{Role: "assistant", Content: assistantMsg, Timestamp: now},
	)

	if limit := m.maxPairs * 2; len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	m.save(ctx, id, messages)
}

// Clear empties the transcript and reports whether one existed beforehand.
func (m *Manager) Clear(ctx context.Context, id string) bool {
	_, existed := m.store.Get(ctx, id)
	m.save(ctx, id, []Message{})
	return existed
}

func (m *Manager) save(ctx context.Context, id string, messages []Message) {
	payload, err := json.Marshal(messages)
	if err != nil {
		m.logger.Error("failed to serialize session",
			slog.String("session_id", id),
			slog.String("error", err.Error()),
		)
		return
	}
	m.store.Set(ctx, id, string(payload), m.ttl)
}

// BuildEnrichedQuery flattens recent history and the current query into one
// text block so capabilities have context for follow-up questions:
//
//	[CONVERSATION HISTORY]
//	user: ...
//	assistant: ...
//	[CURRENT QUERY]
//	user: <query>
//
// With empty history the query is returned unchanged.
func BuildEnrichedQuery(query string, history []Message) string {
	if len(history) == 0 {
		return query
	}

	lines := make([]string, 0, len(history)+3)
	lines = append(lines, "[CONVERSATION HISTORY]")
	for _, msg := range history {
		lines = append(lines, msg.Role+": "+msg.Content)
	}
	lines = append(lines, "[CURRENT QUERY]", "user: "+query)
	return strings.Join(lines, "\n")
}

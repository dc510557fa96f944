// Package capability defines the request-handling contract and the concrete
// handlers behind each conversational intent.
package capability

import (
	"context"
	"sort"
)

// Capability handles one class of requests. Process returns a Response even
// for domain-level failures (product not found, empty results); a non-nil
// error means the capability itself broke and counts against its breaker.
type Capability interface {
	Name() string
	Process(ctx context.Context, query string, reqCtx map[string]any) (*Response, error)
}

// Response is the uniform result envelope every capability produces.
type Response struct {
	Success  bool           `json:"success"`
	Text     string         `json:"text"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// KnownNames is the closed set of routable capability names.
var KnownNames = []string{"general", "policy", "price", "recommendation", "review"}

// Registry maps capability names to handlers. Entries may be explicitly
// nil to mark a capability as configured-but-unavailable.
type Registry struct {
	caps map[string]Capability
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

// Set installs a handler under name. A nil handler registers the name as
// unavailable.
func (r *Registry) Set(name string, c Capability) {
	r.caps[name] = c
}

// Get returns the handler for name. ok is false when the name was never
// registered or was registered nil.
func (r *Registry) Get(name string) (Capability, bool) {
	c, present := r.caps[name]
	if !present || c == nil {
		return nil, false
	}
	return c, true
}

// Names returns the registered names in sorted order, including nil
// entries.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.caps))
	for name := range r.caps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// hints pulls the structured classifier hints out of the request context.
func hints(reqCtx map[string]any) map[string]any {
	h, _ := reqCtx["structured_hints"].(map[string]any)
	return h
}

func hintString(h map[string]any, key string) string {
	s, _ := h[key].(string)
	return s
}

func hintFloat(h map[string]any, key string) *float64 {
	switch v := h[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func compareMode(reqCtx map[string]any) bool {
	b, _ := reqCtx["compare_mode"].(bool)
	return b
}

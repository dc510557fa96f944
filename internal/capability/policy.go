package capability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopassist/gateway/internal/store"
)

// Policy answers questions about store policies by keyword lookup against
// the policy documents.
type Policy struct {
	catalog *store.Store
	logger  *slog.Logger
}

// NewPolicy creates the policy capability.
func NewPolicy(catalog *store.Store, logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{catalog: catalog, logger: logger}
}

func (p *Policy) Name() string { return "policy" }

func (p *Policy) Process(ctx context.Context, query string, reqCtx map[string]any) (*Response, error) {
	policies, err := p.catalog.SearchPolicies(ctx, query, 3)
	if err != nil {
		return nil, fmt.Errorf("policy lookup failed: %w", err)
	}

	if len(policies) == 0 {
		return &Response{
			Success: true,
			Text:    "I don't have a policy document covering that. Please contact customer support for details.",
		}, nil
	}

	var b strings.Builder
	for i, pol := range policies {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s: %s", pol.Title, pol.Body)
	}

	return &Response{
		Success: true,
		Text:    b.String(),
		Data:    map[string]any{"policies": policies},
	}, nil
}

package capability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopassist/gateway/internal/store"
)

const defaultRecommendationLimit = 5

// Recommendation searches the catalog using the classifier's structured
// hints. In compare mode it presents the matches side by side instead of
// as a ranked list.
type Recommendation struct {
	catalog *store.Store
	logger  *slog.Logger
}

// NewRecommendation creates the recommendation capability.
func NewRecommendation(catalog *store.Store, logger *slog.Logger) *Recommendation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommendation{catalog: catalog, logger: logger}
}

func (r *Recommendation) Name() string { return "recommendation" }

func (r *Recommendation) Process(ctx context.Context, query string, reqCtx map[string]any) (*Response, error) {
	h := hints(reqCtx)
	limit := defaultRecommendationLimit
	if n, ok := reqCtx["max_results"].(int); ok && n > 0 {
		limit = n
	}
	filter := store.ProductFilter{
		Category: hintString(h, "category"),
		NameLike: hintString(h, "product_name"),
		MinPrice: hintFloat(h, "min_price"),
		MaxPrice: hintFloat(h, "max_price"),
		Limit:    limit,
	}

	products, err := r.catalog.SearchProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}

	if len(products) == 0 {
		return &Response{
			Success: true,
			Text:    "I couldn't find any products matching that. Could you try a different category or price range?",
			Data:    map[string]any{"products": []store.Product{}},
		}, nil
	}

	compare := compareMode(reqCtx)
	resp := &Response{
		Success: true,
		Text:    r.describe(products, compare),
		Data: map[string]any{
			"products": products,
			"count":    len(products),
		},
	}
	if compare {
		resp.Data["compare_mode"] = true
	}
	return resp, nil
}

func (r *Recommendation) describe(products []store.Product, compare bool) string {
	var b strings.Builder
	if compare {
		b.WriteString("Here's how they compare:\n")
	} else {
		b.WriteString("Here's what I found:\n")
	}
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s (%s) $%.2f, rated %.1f/5\n", i+1, p.Name, p.Brand, p.Price, p.Rating)
	}
	return strings.TrimRight(b.String(), "\n")
}

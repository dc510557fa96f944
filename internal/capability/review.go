package capability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopassist/gateway/internal/cache"
	"github.com/shopassist/gateway/internal/store"
)

const maxReviewHighlights = 3

// Review summarizes customer reviews for a product. Summaries are memoized
// in the result cache under "review_summary:<product_id>" so repeated
// questions about the same product skip the aggregation.
type Review struct {
	catalog *store.Store
	cache   cache.Store
	logger  *slog.Logger
}

// NewReview creates the review capability.
func NewReview(catalog *store.Store, c cache.Store, logger *slog.Logger) *Review {
	if logger == nil {
		logger = slog.Default()
	}
	return &Review{catalog: catalog, cache: c, logger: logger}
}

func (r *Review) Name() string { return "review" }

func (r *Review) Process(ctx context.Context, query string, reqCtx map[string]any) (*Response, error) {
	name := hintString(hints(reqCtx), "product_name")
	if name == "" {
		name = query
	}

	product, err := r.catalog.FindProductByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}
	if product == nil {
		return &Response{
			Success: true,
			Text:    "I couldn't find that product in our catalog. Could you give me the exact product name?",
		}, nil
	}

	cacheKey := "review_summary:" + product.ID
	if cached, ok := r.cache.Get(ctx, cacheKey); ok {
		if text, ok := cached.(string); ok {
			return &Response{
				Success:  true,
				Text:     text,
				Data:     map[string]any{"product": product},
				Metadata: map[string]any{"cached": true},
			}, nil
		}
	}

	reviews, err := r.catalog.ReviewsForProduct(ctx, product.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}
	if len(reviews) == 0 {
		return &Response{
			Success: true,
			Text:    fmt.Sprintf("%s doesn't have any customer reviews yet.", product.Name),
			Data:    map[string]any{"product": product, "review_count": 0},
		}, nil
	}

	text := summarize(product, reviews)
	r.cache.Set(ctx, cacheKey, text, 0)

	return &Response{
		Success: true,
		Text:    text,
		Data: map[string]any{
			"product":        product,
			"review_count":   len(reviews),
			"average_rating": averageRating(reviews),
		},
	}, nil
}

func averageRating(reviews []store.Review) float64 {
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

func summarize(product *store.Product, reviews []store.Review) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has %d reviews averaging %.1f/5.", product.Name, len(reviews), averageRating(reviews))

	highlights := reviews
	if len(highlights) > maxReviewHighlights {
		highlights = highlights[:maxReviewHighlights]
	}
	b.WriteString(" Customers say:")
	for _, r := range highlights {
		title := r.Title
		if title == "" {
			title = r.Body
		}
		fmt.Fprintf(&b, "\n- %q (%d/5)", title, r.Rating)
	}
	return b.String()
}

package capability

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopassist/gateway/internal/cache"
	"github.com/shopassist/gateway/internal/store"
)

// priceQuoteTTL bounds how long a quote set stays fresh.
const priceQuoteTTL = time.Hour

// retailerVariations gives each mock retailer a band of price deltas
// relative to the catalog price. The actual delta is derived from a hash
// of retailer+product so repeated lookups return identical quotes.
var retailerVariations = map[string][2]float64{
	"Amazon":  {-0.08, -0.03},
	"BestBuy": {-0.02, 0.05},
	"Walmart": {-0.12, -0.05},
}

// Quote is one retailer's price for a product.
type Quote struct {
	Retailer string  `json:"retailer"`
	Price    float64 `json:"price"`
}

// Price produces deterministic multi-retailer quotes for a product and
// caches them under "price:<product_id>".
type Price struct {
	catalog *store.Store
	cache   cache.Store
	logger  *slog.Logger
}

// NewPrice creates the price capability.
func NewPrice(catalog *store.Store, c cache.Store, logger *slog.Logger) *Price {
	if logger == nil {
		logger = slog.Default()
	}
	return &Price{catalog: catalog, cache: c, logger: logger}
}

func (p *Price) Name() string { return "price" }

func (p *Price) Process(ctx context.Context, query string, reqCtx map[string]any) (*Response, error) {
	name := hintString(hints(reqCtx), "product_name")
	if name == "" {
		name = query
	}

	product, err := p.catalog.FindProductByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}
	if product == nil {
		return &Response{
			Success: true,
			Text:    "I couldn't find that product. Which product would you like prices for?",
		}, nil
	}

	cacheKey := "price:" + product.ID
	cached := false
	var quotes []Quote
	if raw, ok := p.cache.Get(ctx, cacheKey); ok {
		if qs, ok := decodeQuotes(raw); ok {
			quotes = qs
			cached = true
		}
	}
	if quotes == nil {
		quotes = QuotesFor(product.ID, product.Price)
		p.cache.Set(ctx, cacheKey, quotes, priceQuoteTTL)
	}

	return &Response{
		Success: true,
		Text:    describeQuotes(product, quotes),
		Data: map[string]any{
			"product": product,
			"quotes":  quotes,
		},
		Metadata: map[string]any{"cached": cached},
	}, nil
}

// decodeQuotes accepts both the in-process representation ([]Quote) and
// the shape a JSON-serializing backend hands back after a round trip
// ([]any of maps). Anything else reads as a miss and the quotes are
// recomputed.
func decodeQuotes(raw any) ([]Quote, bool) {
	if qs, ok := raw.([]Quote); ok {
		return qs, len(qs) > 0
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}
	var qs []Quote
	if err := json.Unmarshal(payload, &qs); err != nil || len(qs) == 0 {
		return nil, false
	}
	for _, q := range qs {
		if q.Retailer == "" || q.Price <= 0 {
			return nil, false
		}
	}
	return qs, true
}

// QuotesFor computes the retailer quotes for a product, cheapest first.
// The same product id and base price always yield the same quotes.
func QuotesFor(productID string, basePrice float64) []Quote {
	quotes := make([]Quote, 0, len(retailerVariations))
	for retailer, band := range retailerVariations {
		quotes = append(quotes, Quote{
			Retailer: retailer,
			Price:    quotePrice(retailer, productID, basePrice, band),
		})
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Price < quotes[j].Price })
	return quotes
}

func quotePrice(retailer, productID string, base float64, band [2]float64) float64 {
	sum := md5.Sum([]byte(retailer + ":" + productID))
	seed := binary.BigEndian.Uint64(sum[:8])
	frac := float64(seed%10000) / 10000

	variation := band[0] + frac*(band[1]-band[0])
	raw := base * (1 + variation)
	if raw > 1 {
		// Nudge to a .x9-style price point.
		raw -= 0.01
	}
	return math.Round(raw*100) / 100
}

func describeQuotes(product *store.Product, quotes []Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Prices for %s (list $%.2f):", product.Name, product.Price)
	for _, q := range quotes {
		fmt.Fprintf(&b, "\n- %s: $%.2f", q.Retailer, q.Price)
	}
	return b.String()
}

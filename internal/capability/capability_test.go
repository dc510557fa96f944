package capability

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopassist/gateway/internal/cache"
	"github.com/shopassist/gateway/internal/store"
)

func newTestCatalog(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	for _, p := range []store.Product{
		{ID: "p1", Name: "AeroBook 14", Brand: "Aero", Category: "laptop", Price: 749.99, Rating: 4.6},
		{ID: "p2", Name: "Pixelbook Go", Brand: "Google", Category: "laptop", Price: 649.00, Rating: 4.2},
		{ID: "p3", Name: "SoundCore Buds", Brand: "Anker", Category: "headphones", Price: 59.99, Rating: 4.4},
	} {
		if err := s.AddProduct(ctx, p); err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}
	for _, r := range []store.Review{
		{ProductID: "p1", Rating: 5, Title: "Great battery", Body: "Lasts all day"},
		{ProductID: "p1", Rating: 4, Title: "Solid", Body: "Good value"},
	} {
		if err := s.AddReview(ctx, r); err != nil {
			t.Fatalf("failed to seed review: %v", err)
		}
	}
	if err := s.AddPolicy(ctx, store.Policy{
		ID: "returns", PolicyType: "returns", Title: "Return policy",
		Body: "Items may be returned within 30 days with receipt.",
	}); err != nil {
		t.Fatalf("failed to seed policy: %v", err)
	}
	return s
}

func TestRegistry_NilEntriesAreUnavailable(t *testing.T) {
	r := NewRegistry()
	r.Set("general", NewGeneral(nil, nil))
	r.Set("recommendation", nil)

	if _, ok := r.Get("recommendation"); ok {
		t.Error("expected nil entry to be unavailable")
	}
	if _, ok := r.Get("never-registered"); ok {
		t.Error("expected unknown name to be unavailable")
	}
	if _, ok := r.Get("general"); !ok {
		t.Error("expected general to resolve")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "general" || names[1] != "recommendation" {
		t.Errorf("unexpected names %v", names)
	}
}

type fakeCompleter struct {
	text string
	err  error
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return f.text, f.err
}

func TestGeneral_NeverFails(t *testing.T) {
	ctx := context.Background()

	resp, err := NewGeneral(nil, nil).Process(ctx, "hello", nil)
	if err != nil || !resp.Success {
		t.Fatalf("expected canned success without completer, got %v / %+v", err, resp)
	}
	if resp.Metadata["source"] != "canned" {
		t.Errorf("expected canned source, got %v", resp.Metadata["source"])
	}

	resp, err = NewGeneral(&fakeCompleter{err: errors.New("boom")}, nil).Process(ctx, "hello", nil)
	if err != nil || !resp.Success {
		t.Fatalf("expected canned success when completer errors, got %v / %+v", err, resp)
	}

	resp, err = NewGeneral(&fakeCompleter{text: "hi!"}, nil).Process(ctx, "hello", nil)
	if err != nil || !resp.Success || resp.Text != "hi!" {
		t.Fatalf("expected completer text, got %v / %+v", err, resp)
	}
	if resp.Metadata["source"] != "llm" {
		t.Errorf("expected llm source, got %v", resp.Metadata["source"])
	}
}

func TestRecommendation_HonorsHints(t *testing.T) {
	ctx := context.Background()
	rec := NewRecommendation(newTestCatalog(t), nil)

	maxPrice := 800.0
	resp, err := rec.Process(ctx, "find laptops under $800", map[string]any{
		"structured_hints": map[string]any{
			"category":  "laptop",
			"max_price": maxPrice,
		},
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	products, ok := resp.Data["products"].([]store.Product)
	if !ok {
		t.Fatalf("expected products slice in data, got %T", resp.Data["products"])
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 laptops, got %d", len(products))
	}
	if products[0].ID != "p1" {
		t.Errorf("expected best-rated first, got %s", products[0].ID)
	}
}

func TestRecommendation_CompareMode(t *testing.T) {
	rec := NewRecommendation(newTestCatalog(t), nil)

	resp, err := rec.Process(context.Background(), "compare laptops", map[string]any{
		"structured_hints": map[string]any{"category": "laptop"},
		"compare_mode":     true,
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if resp.Data["compare_mode"] != true {
		t.Error("expected compare_mode flag in data")
	}
}

func TestRecommendation_NoMatchesStillSucceeds(t *testing.T) {
	rec := NewRecommendation(newTestCatalog(t), nil)

	resp, err := rec.Process(context.Background(), "find drones", map[string]any{
		"structured_hints": map[string]any{"category": "drone"},
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !resp.Success {
		t.Error("empty results should not be a capability failure")
	}
}

func TestReview_SummaryAndMemoization(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory(time.Hour, 100)
	rev := NewReview(newTestCatalog(t), c, nil)

	reqCtx := map[string]any{
		"structured_hints": map[string]any{"product_name": "AeroBook"},
	}
	resp, err := rev.Process(ctx, "reviews for the AeroBook", reqCtx)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.Data["review_count"] != 2 {
		t.Errorf("expected 2 reviews, got %v", resp.Data["review_count"])
	}
	if avg := resp.Data["average_rating"].(float64); avg != 4.5 {
		t.Errorf("expected average 4.5, got %f", avg)
	}

	resp2, err := rev.Process(ctx, "reviews for the AeroBook", reqCtx)
	if err != nil {
		t.Fatalf("second process failed: %v", err)
	}
	if resp2.Metadata["cached"] != true {
		t.Error("expected second lookup to hit the summary cache")
	}
	if resp2.Text != resp.Text {
		t.Error("cached summary should match the original")
	}
}

func TestReview_UnknownProduct(t *testing.T) {
	rev := NewReview(newTestCatalog(t), cache.NewMemory(time.Hour, 100), nil)

	resp, err := rev.Process(context.Background(), "reviews for the FooPhone", nil)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !resp.Success {
		t.Error("unknown product should not be a capability failure")
	}
}

func TestPrice_DeterministicQuotes(t *testing.T) {
	ctx := context.Background()
	p := NewPrice(newTestCatalog(t), cache.NewMemory(time.Hour, 100), nil)

	reqCtx := map[string]any{
		"structured_hints": map[string]any{"product_name": "SoundCore"},
	}
	resp, err := p.Process(ctx, "how much are the SoundCore buds?", reqCtx)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	quotes, ok := resp.Data["quotes"].([]Quote)
	if !ok || len(quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %v", resp.Data["quotes"])
	}
	for i := 1; i < len(quotes); i++ {
		if quotes[i-1].Price > quotes[i].Price {
			t.Error("expected quotes sorted cheapest first")
		}
	}

	if again := QuotesFor("p3", 59.99); len(again) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(again))
	} else {
		for i, q := range again {
			if q != quotes[i] {
				t.Errorf("quote %d not deterministic: %+v vs %+v", i, q, quotes[i])
			}
		}
	}

	resp2, err := p.Process(ctx, "how much are the SoundCore buds?", reqCtx)
	if err != nil {
		t.Fatalf("second process failed: %v", err)
	}
	if resp2.Metadata["cached"] != true {
		t.Error("expected second lookup to hit the quote cache")
	}
}

// jsonRoundTripStore serializes every value through JSON on Set, so reads
// come back as []any/map[string]any the way a distributed backend returns
// them.
type jsonRoundTripStore struct {
	inner cache.Store
}

func (s *jsonRoundTripStore) Get(ctx context.Context, key string) (any, bool) {
	return s.inner.Get(ctx, key)
}

func (s *jsonRoundTripStore) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return
	}
	s.inner.Set(ctx, key, decoded, ttl)
}

func (s *jsonRoundTripStore) Delete(ctx context.Context, key string) { s.inner.Delete(ctx, key) }
func (s *jsonRoundTripStore) Clear(ctx context.Context)              { s.inner.Clear(ctx) }
func (s *jsonRoundTripStore) Size(ctx context.Context) int           { return s.inner.Size(ctx) }

func TestPrice_CacheSurvivesJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &jsonRoundTripStore{inner: cache.NewMemory(time.Hour, 100)}
	p := NewPrice(newTestCatalog(t), store, nil)

	reqCtx := map[string]any{
		"structured_hints": map[string]any{"product_name": "SoundCore"},
	}
	resp, err := p.Process(ctx, "how much are the SoundCore buds?", reqCtx)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if resp.Metadata["cached"] != false {
		t.Fatal("first lookup should compute quotes")
	}
	first := resp.Data["quotes"].([]Quote)

	resp2, err := p.Process(ctx, "how much are the SoundCore buds?", reqCtx)
	if err != nil {
		t.Fatalf("second process failed: %v", err)
	}
	if resp2.Metadata["cached"] != true {
		t.Fatal("expected the serialized quotes to be decoded as a cache hit")
	}
	second := resp2.Data["quotes"].([]Quote)
	if len(second) != len(first) {
		t.Fatalf("expected %d cached quotes, got %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("quote %d changed across the round trip: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestPrice_QuoteBands(t *testing.T) {
	quotes := QuotesFor("p1", 100.0)
	bands := map[string][2]float64{
		"Amazon":  {92.0 - 0.02, 97.0},
		"BestBuy": {98.0 - 0.02, 105.0},
		"Walmart": {88.0 - 0.02, 95.0},
	}
	for _, q := range quotes {
		band, ok := bands[q.Retailer]
		if !ok {
			t.Fatalf("unexpected retailer %s", q.Retailer)
		}
		if q.Price < band[0] || q.Price > band[1] {
			t.Errorf("%s quote %.2f outside band [%.2f, %.2f]", q.Retailer, q.Price, band[0], band[1])
		}
	}
}

func TestPolicy_KeywordLookup(t *testing.T) {
	ctx := context.Background()
	pol := NewPolicy(newTestCatalog(t), nil)

	resp, err := pol.Process(ctx, "what is your return policy?", nil)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	policies, ok := resp.Data["policies"].([]store.Policy)
	if !ok || len(policies) == 0 {
		t.Fatalf("expected matched policies, got %v", resp.Data["policies"])
	}

	resp, err = pol.Process(ctx, "xyzzy", nil)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if !resp.Success {
		t.Error("no matching policy should not be a capability failure")
	}
	if _, present := resp.Data["policies"]; present {
		t.Error("expected no policies in data when nothing matched")
	}
}

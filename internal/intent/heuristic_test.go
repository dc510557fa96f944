package intent

import (
	"context"
	"testing"
)

func TestHeuristicClassifier_Intents(t *testing.T) {
	cases := []struct {
		query string
		want  Type
	}{
		{"Find laptops under $800", Recommendation},
		{"Show me wireless headphones", Recommendation},
		{"Compare iPhone vs Samsung", Comparison},
		{"What's the difference between the Pixel and the Galaxy?", Comparison},
		{"What do reviews say about the MacBook Air?", Review},
		{"What's the return policy?", Policy},
		{"Do you offer free shipping?", Policy},
		{"Best price for Galaxy S24?", Price},
		{"How much does the iPad cost?", Price},
		{"hello there", General},
	}

	h := NewHeuristicClassifier()
	for _, tc := range cases {
		got := h.Classify(context.Background(), tc.query)
		if got.Intent != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.query, got.Intent, tc.want)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Errorf("Classify(%q) confidence %f out of range", tc.query, got.Confidence)
		}
	}
}

func TestHeuristicClassifier_ExtractsHints(t *testing.T) {
	h := NewHeuristicClassifier()

	res := h.Classify(context.Background(), "Find laptops under $800")
	if res.Category != "laptop" {
		t.Errorf("expected category laptop, got %q", res.Category)
	}
	if res.MaxPrice == nil || *res.MaxPrice != 800 {
		t.Fatalf("expected max price 800, got %v", res.MaxPrice)
	}
	if res.MinPrice != nil {
		t.Errorf("expected no min price, got %v", *res.MinPrice)
	}

	res = h.Classify(context.Background(), "Recommend a camera over $250 and under $600")
	if res.MinPrice == nil || *res.MinPrice != 250 {
		t.Fatalf("expected min price 250, got %v", res.MinPrice)
	}
	if res.MaxPrice == nil || *res.MaxPrice != 600 {
		t.Fatalf("expected max price 600, got %v", res.MaxPrice)
	}
	if res.Category != "camera" {
		t.Errorf("expected category camera, got %q", res.Category)
	}
}

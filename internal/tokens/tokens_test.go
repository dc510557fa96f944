package tokens

import "testing"

func TestEstimator_Count(t *testing.T) {
	e, err := NewEstimator()
	if err != nil {
		t.Fatalf("failed to load encoding: %v", err)
	}

	if got := e.Count(""); got != 0 {
		t.Errorf("empty string should be 0 tokens, got %d", got)
	}

	short := e.Count("hello")
	if short < 1 || short > 3 {
		t.Errorf("expected 1-3 tokens for a single word, got %d", short)
	}

	long := e.Count("Find me the best rated laptops under eight hundred dollars with good battery life")
	if long <= short {
		t.Errorf("longer text should have more tokens: %d vs %d", long, short)
	}
}

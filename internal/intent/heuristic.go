package intent

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// HeuristicClassifier is a keyword-based classifier used when no model
// credentials are configured. It is deterministic, offline, and never
// fails, which also makes it the classifier of choice in tests.
type HeuristicClassifier struct{}

// NewHeuristicClassifier returns the offline keyword classifier.
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

var (
	maxPricePattern = regexp.MustCompile(`(?i)(?:under|below|less than|at most|up to|cheaper than)\s*\$?\s*(\d+(?:\.\d+)?)`)
	minPricePattern = regexp.MustCompile(`(?i)(?:over|above|more than|at least|starting at)\s*\$?\s*(\d+(?:\.\d+)?)`)
)

var categories = []string{
	"laptop", "phone", "smartphone", "headphones", "tablet",
	"monitor", "camera", "keyboard", "mouse", "speaker", "tv",
}

func (h *HeuristicClassifier) Classify(_ context.Context, query string) Result {
	q := strings.ToLower(query)

	result := Result{Confidence: 0.7, Reasoning: "Matched by keyword heuristics"}

	switch {
	case containsAny(q, "compare", " vs ", "versus", "difference between"):
		result.Intent = Comparison
	case containsAny(q, "review", "reviews", "what do people say", "opinions", "rating"):
		result.Intent = Review
	case containsAny(q, "return policy", "refund", "shipping", "warranty", "exchange policy", "policy"):
		result.Intent = Policy
	case containsAny(q, "price", "cheapest", "best deal", "cost of", "how much"):
		result.Intent = Price
	case containsAny(q, "recommend", "suggest", "find", "looking for", "show me", "best "):
		result.Intent = Recommendation
	default:
		result.Intent = General
		result.Confidence = 0.5
		result.Reasoning = "No routing keyword matched"
	}

	for _, cat := range categories {
		if strings.Contains(q, cat) {
			result.Category = cat
			break
		}
	}

	if m := maxPricePattern.FindStringSubmatch(query); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.MaxPrice = &v
		}
	}
	if m := minPricePattern.FindStringSubmatch(query); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			result.MinPrice = &v
		}
	}

	return result
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Package intent classifies free-text queries into the closed set of
// intents the orchestrator routes on, extracting structured hints along
// the way.
package intent

import "context"

// Type is one of the closed set of intent categories.
type Type string

const (
	Recommendation Type = "recommendation"
	Comparison     Type = "comparison"
	Review         Type = "review"
	Policy         Type = "policy"
	Price          Type = "price"
	General        Type = "general"
)

// Valid reports whether t is a member of the closed intent set.
func (t Type) Valid() bool {
	switch t {
	case Recommendation, Comparison, Review, Policy, Price, General:
		return true
	}
	return false
}

// Result is one classification outcome. Immutable once produced; never
// persisted.
type Result struct {
	Intent     Type    `json:"intent"`
	Confidence float64 `json:"confidence"`
	// Reasoning is a one-sentence human-readable explanation.
	Reasoning string `json:"reasoning"`

	// Extracted hints, all optional.
	ProductName string   `json:"product_name,omitempty"`
	Category    string   `json:"category,omitempty"`
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
}

// Classifier classifies a query. Implementations must never fail: any
// internal error is absorbed into a Result with Intent General and
// confidence 0, so callers need no error path for classification.
type Classifier interface {
	Classify(ctx context.Context, query string) Result
}

// Fallback builds the result every classifier returns when it cannot
// classify.
func Fallback(reason string) Result {
	return Result{
		Intent:     General,
		Confidence: 0.0,
		Reasoning:  reason,
	}
}

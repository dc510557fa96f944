// Package tokens estimates prompt sizes so request logs can track how much
// context each enriched query carries.
package tokens

import (
	"github.com/tiktoken-go/tokenizer"
)

// Estimator counts tokens using the cl100k_base encoding.
type Estimator struct {
	codec tokenizer.Codec
}

// NewEstimator loads the encoding. It is safe for concurrent use.
func NewEstimator() (*Estimator, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, err
	}
	return &Estimator{codec: codec}, nil
}

// Count returns the token count for text. On encoding failure it falls
// back to the rough 4-characters-per-token heuristic rather than erroring.
func (e *Estimator) Count(text string) int {
	ids, _, err := e.codec.Encode(text)
	if err != nil {
		return len(text) / 4
	}
	return len(ids)
}

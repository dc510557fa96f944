package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const defaultBaseURL = "https://api.openai.com/v1"

const classifierPrompt = `Classify user queries for a shopping assistant into one of:
- recommendation: wants product suggestions ("Find laptops under $800")
- comparison:     wants to compare products ("Compare iPhone vs Samsung")
- review:         wants customer opinion ("What do reviews say about X?")
- policy:         asks about store policies ("What's the return policy?")
- price:          wants price comparison across retailers ("Best price for Galaxy S24?")
- general:        anything else (greetings, service questions)

Extract entities: product_name, category, max_price (USD float), min_price (USD float).
Respond with a single JSON object:
{"intent": "...", "confidence": 0.0-1.0, "product_name": null, "category": null,
 "max_price": null, "min_price": null, "reasoning": "one sentence"}`

// OpenAIOption configures the OpenAI classifier.
type OpenAIOption func(*OpenAIClassifier)

// WithBaseURL sets a custom API base URL.
func WithBaseURL(baseURL string) OpenAIOption {
	return func(c *OpenAIClassifier) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) OpenAIOption {
	return func(c *OpenAIClassifier) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) OpenAIOption {
	return func(c *OpenAIClassifier) {
		c.logger = logger
	}
}

// OpenAIClassifier classifies queries with an OpenAI chat model producing
// structured JSON output. On any failure it falls back to the General
// intent instead of returning an error.
type OpenAIClassifier struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenAIClassifier creates a classifier using the given API key and model.
func NewOpenAIClassifier(apiKey, model string, opts ...OpenAIOption) *OpenAIClassifier {
	c := &OpenAIClassifier{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Classify sends the query to the model and parses the structured result.
// It never returns an error: any failure yields the General fallback with
// confidence 0.
func (c *OpenAIClassifier) Classify(ctx context.Context, query string) Result {
	result, err := c.classify(ctx, query)
	if err != nil {
		c.logger.Error("intent classification failed, defaulting to general",
			slog.String("error", err.Error()),
		)
		return Fallback(fmt.Sprintf("Classification failed: %v", err))
	}

	c.logger.Info("intent classified",
		slog.String("query", truncate(query, 60)),
		slog.String("intent", string(result.Intent)),
		slog.Float64("confidence", result.Confidence),
	)
	return result
}

func (c *OpenAIClassifier) classify(ctx context.Context, query string) (Result, error) {
	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: classifierPrompt},
			{Role: "user", Content: query},
		},
		Temperature:    0,
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return Result{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Result{}, fmt.Errorf("empty completion")
	}

	var result Result
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &result); err != nil {
		return Result{}, fmt.Errorf("failed to parse classification: %w", err)
	}
	if !result.Intent.Valid() {
		return Result{}, fmt.Errorf("model returned unknown intent %q", result.Intent)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return Result{}, fmt.Errorf("confidence %f out of range", result.Confidence)
	}

	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package capability

import (
	"context"
	"log/slog"
)

const generalSystemPrompt = `You are a friendly shopping assistant for an online electronics store.
Answer the customer's question helpfully and concisely. If the question is
about products, reviews, prices, or store policies, suggest what you can
help with.`

const cannedGeneralReply = "I can help you find products, compare options, check reviews and prices, or answer questions about store policies. What are you looking for today?"

// Completer produces a free-form answer for a prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// General answers anything the specialized capabilities do not cover. It is
// the designated last resort and never fails: with no completer, or when
// the completer errors, it falls back to a canned reply.
type General struct {
	completer Completer
	logger    *slog.Logger
}

// NewGeneral creates the general capability. completer may be nil.
func NewGeneral(completer Completer, logger *slog.Logger) *General {
	if logger == nil {
		logger = slog.Default()
	}
	return &General{completer: completer, logger: logger}
}

func (g *General) Name() string { return "general" }

func (g *General) Process(ctx context.Context, query string, reqCtx map[string]any) (*Response, error) {
	if g.completer != nil {
		text, err := g.completer.Complete(ctx, generalSystemPrompt, query)
		if err == nil && text != "" {
			return &Response{
				Success:  true,
				Text:     text,
				Metadata: map[string]any{"source": "llm"},
			}, nil
		}
		if err != nil {
			g.logger.Warn("general completion failed, using canned reply",
				slog.String("error", err.Error()),
			)
		}
	}

	return &Response{
		Success:  true,
		Text:     cannedGeneralReply,
		Metadata: map[string]any{"source": "canned"},
	}, nil
}

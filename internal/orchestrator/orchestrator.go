// Package orchestrator classifies each query, routes it to the matching
// capability, and tracks per-capability health through circuit breakers.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopassist/gateway/internal/breaker"
	"github.com/shopassist/gateway/internal/capability"
	"github.com/shopassist/gateway/internal/intent"
)

const lastResort = "general"

// Result pairs the classification with the response that was actually
// produced. Intent always reflects the original classification, even when
// the request was rerouted; Handler names the capability that answered.
type Result struct {
	Intent   intent.Result
	Handler  string
	Response *capability.Response
}

// Orchestrator owns the classify-route-record loop.
type Orchestrator struct {
	classifier  intent.Classifier
	registry    *capability.Registry
	logger      *slog.Logger
	breakerOpts []breaker.Option

	mu       sync.Mutex
	breakers map[string]*breaker.Breaker
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithBreakerOptions forwards options to every per-capability breaker.
func WithBreakerOptions(opts ...breaker.Option) Option {
	return func(o *Orchestrator) { o.breakerOpts = opts }
}

// New creates an orchestrator over the given classifier and registry. The
// registry must resolve "general": it is the unconditional fallback.
func New(classifier intent.Classifier, registry *capability.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		classifier: classifier,
		registry:   registry,
		logger:     slog.Default(),
		breakers:   make(map[string]*breaker.Breaker),
	}
	for _, opt := range opts {
		opt(o)
	}
	// One breaker per registered name, up front; names that appear later
	// (rerouted targets) get theirs lazily.
	for _, name := range registry.Names() {
		o.breakerFor(name)
	}
	return o
}

// Handle runs one query through classification, routing, and execution.
// It never returns an error: total failure is reported inside the
// Response.
func (o *Orchestrator) Handle(ctx context.Context, query string, reqCtx map[string]any) *Result {
	classified := o.classifier.Classify(ctx, query)

	merged := make(map[string]any, len(reqCtx)+2)
	for k, v := range reqCtx {
		merged[k] = v
	}
	merged["structured_hints"] = hintsFrom(classified)

	// Comparison shares the recommendation handler; the flag switches its
	// presentation.
	target := string(classified.Intent)
	if classified.Intent == intent.Comparison {
		target = "recommendation"
		merged["compare_mode"] = true
	}

	handlerName := target
	handler, ok := o.registry.Get(target)
	brk := o.breakerFor(target)
	if !ok || !brk.IsAvailable() {
		o.logger.Info("rerouting to general",
			slog.String("capability", target),
			slog.Bool("registered", ok),
			slog.String("breaker_state", string(brk.CurrentState())),
		)
		handlerName = lastResort
		handler, ok = o.registry.Get(lastResort)
		brk = o.breakerFor(lastResort)
		if !ok {
			return &Result{
				Intent:   classified,
				Handler:  handlerName,
				Response: totalFailure("no capability available"),
			}
		}
	}

	resp, err := handler.Process(ctx, query, merged)
	if err != nil {
		brk.RecordFailure()
		o.logger.Error("capability failed",
			slog.String("capability", handlerName),
			slog.String("error", err.Error()),
		)
		if handlerName != lastResort {
			if r := o.tryLastResort(ctx, query, merged); r != nil {
				return &Result{Intent: classified, Handler: lastResort, Response: r}
			}
		}
		return &Result{
			Intent:   classified,
			Handler:  handlerName,
			Response: totalFailure(err.Error()),
		}
	}

	if resp.Success {
		brk.RecordSuccess()
	} else {
		brk.RecordFailure()
	}
	return &Result{Intent: classified, Handler: handlerName, Response: resp}
}

func (o *Orchestrator) tryLastResort(ctx context.Context, query string, reqCtx map[string]any) *capability.Response {
	handler, ok := o.registry.Get(lastResort)
	if !ok {
		return nil
	}
	brk := o.breakerFor(lastResort)
	resp, err := handler.Process(ctx, query, reqCtx)
	if err != nil {
		brk.RecordFailure()
		o.logger.Error("last-resort capability failed",
			slog.String("error", err.Error()),
		)
		return nil
	}
	if resp.Success {
		brk.RecordSuccess()
	} else {
		brk.RecordFailure()
	}
	return resp
}

func (o *Orchestrator) breakerFor(name string) *breaker.Breaker {
	o.mu.Lock()
	defer o.mu.Unlock()
	b, ok := o.breakers[name]
	if !ok {
		opts := append([]breaker.Option{breaker.WithLogger(o.logger)}, o.breakerOpts...)
		b = breaker.New(name, opts...)
		o.breakers[name] = b
	}
	return b
}

// BreakerStates snapshots every breaker's state, for health reporting.
func (o *Orchestrator) BreakerStates() map[string]breaker.State {
	o.mu.Lock()
	breakers := make([]*breaker.Breaker, 0, len(o.breakers))
	for _, b := range o.breakers {
		breakers = append(breakers, b)
	}
	o.mu.Unlock()

	states := make(map[string]breaker.State, len(breakers))
	for _, b := range breakers {
		states[b.Name()] = b.CurrentState()
	}
	return states
}

func hintsFrom(r intent.Result) map[string]any {
	h := map[string]any{}
	if r.ProductName != "" {
		h["product_name"] = r.ProductName
	}
	if r.Category != "" {
		h["category"] = r.Category
	}
	if r.MinPrice != nil {
		h["min_price"] = *r.MinPrice
	}
	if r.MaxPrice != nil {
		h["max_price"] = *r.MaxPrice
	}
	return h
}

func totalFailure(detail string) *capability.Response {
	return &capability.Response{
		Success: false,
		Text:    "Something went wrong handling your request. Please try again.",
		Error:   detail,
	}
}

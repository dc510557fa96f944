package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shopassist/gateway/internal/api"
	"github.com/shopassist/gateway/internal/breaker"
	"github.com/shopassist/gateway/internal/cache"
	"github.com/shopassist/gateway/internal/capability"
	"github.com/shopassist/gateway/internal/config"
	"github.com/shopassist/gateway/internal/intent"
	"github.com/shopassist/gateway/internal/llm"
	"github.com/shopassist/gateway/internal/orchestrator"
	"github.com/shopassist/gateway/internal/server"
	"github.com/shopassist/gateway/internal/session"
	"github.com/shopassist/gateway/internal/store"
	"github.com/shopassist/gateway/internal/telemetry"
	"github.com/shopassist/gateway/internal/tokens"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer("shopassist-gateway", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	resultCache := cache.NewBackend(ctx, cache.Options{
		RedisURL:   cfg.Redis.URL,
		Prefix:     "shopassist:",
		DefaultTTL: cfg.Cache.TTL(),
		MaxSize:    cfg.Cache.MaxSize,
		Logger:     logger,
	})
	sessionCache := cache.NewBackend(ctx, cache.Options{
		RedisURL:   cfg.Redis.URL,
		Prefix:     "session:",
		DefaultTTL: cfg.Session.TTL(),
		MaxSize:    cfg.Session.MaxMemory,
		Logger:     logger,
	})

	catalog, err := store.New(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer catalog.Close()
	if err := catalog.SeedDemo(ctx); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	var classifier intent.Classifier
	var completer capability.Completer
	if cfg.OpenAI.APIKey != "" {
		classifier = intent.NewOpenAIClassifier(cfg.OpenAI.APIKey, cfg.OpenAI.Model, intent.WithLogger(logger))
		completer = llm.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, llm.WithLogger(logger))
		logger.Info("using LLM classifier", slog.String("model", cfg.OpenAI.Model))
	} else {
		classifier = intent.NewHeuristicClassifier()
		logger.Info("no API key configured, using heuristic classifier")
	}

	registry := capability.NewRegistry()
	registry.Set("general", capability.NewGeneral(completer, logger))
	registry.Set("recommendation", capability.NewRecommendation(catalog, logger))
	registry.Set("review", capability.NewReview(catalog, resultCache, logger))
	registry.Set("price", capability.NewPrice(catalog, resultCache, logger))
	registry.Set("policy", capability.NewPolicy(catalog, logger))

	orch := orchestrator.New(classifier, registry,
		orchestrator.WithLogger(logger),
		orchestrator.WithBreakerOptions(
			breaker.WithThreshold(cfg.Breaker.FailureThreshold),
			breaker.WithRecoveryTimeout(cfg.Breaker.RecoveryTimeout()),
			breaker.WithLogger(logger),
		),
	)

	sessions := session.NewManager(sessionCache,
		session.WithTTL(cfg.Session.TTL()),
		session.WithMaxPairs(cfg.Session.MaxPairs),
		session.WithLogger(logger),
	)

	estimator, err := tokens.NewEstimator()
	if err != nil {
		logger.Warn("token estimator unavailable", slog.String("error", err.Error()))
		estimator = nil
	}

	srv := server.New(cfg.Server.Port, logger)
	api.NewHandler(orch, sessions, estimator, logger).Register(srv.Router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	anthropicapi "github.com/tjfontaine/wirebridge/internal/api/anthropic"
	openaiapi "github.com/tjfontaine/wirebridge/internal/api/openai"
	"github.com/tjfontaine/wirebridge/internal/config"
	"github.com/tjfontaine/wirebridge/internal/overrides"
	"github.com/tjfontaine/wirebridge/internal/server"
	"github.com/tjfontaine/wirebridge/internal/storage"
	"github.com/tjfontaine/wirebridge/internal/storage/sqlite"
	"github.com/tjfontaine/wirebridge/internal/telemetry"
	"github.com/tjfontaine/wirebridge/internal/tokens"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init("wirebridge", logger)
		if err != nil {
			log.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
			}
		}()
	}

	var anthropicOpts []anthropicapi.ClientOption
	if cfg.Anthropic.BaseURL != "" {
		anthropicOpts = append(anthropicOpts, anthropicapi.WithBaseURL(cfg.Anthropic.BaseURL))
	}
	anthropicClient := anthropicapi.NewClient(cfg.Anthropic.APIKey, anthropicOpts...)

	var openaiOpts []openaiapi.ClientOption
	if cfg.OpenAI.BaseURL != "" {
		openaiOpts = append(openaiOpts, openaiapi.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	openaiClient := openaiapi.NewClient(cfg.OpenAI.APIKey, openaiOpts...)

	registry := tokens.NewRegistry()
	registry.Register(tokens.NewOpenAICounter())
	if cfg.Anthropic.APIKey != "" {
		registry.Register(tokens.NewAnthropicCounter(anthropicClient))
	}

	rules := make([]overrides.Rule, 0, len(cfg.Overrides))
	for _, r := range cfg.Overrides {
		rules = append(rules, overrides.Rule{Model: r.Model, Set: r.Set, Delete: r.Delete})
	}
	engine := overrides.NewEngine(rules)
	if !engine.Empty() {
		logger.Info("payload overrides enabled", slog.Int("rules", len(rules)))
	}

	var recorder storage.Recorder
	if cfg.Storage.Path != "" {
		recorder, err = sqlite.New(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("Failed to open exchange store: %v", err)
		}
		defer recorder.Close()
		logger.Info("exchange recording enabled", slog.String("path", cfg.Storage.Path))
	}

	handlers := server.NewHandlers(logger, anthropicClient, openaiClient, registry, engine, recorder)
	srv := server.New(cfg.Server.Port, logger, handlers)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case <-sigCh:
	}

	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"librarydesk/internal/agent"
	"librarydesk/internal/app"
	"librarydesk/internal/config"
	"librarydesk/internal/ratelimit"
	"librarydesk/internal/server"
	"librarydesk/internal/tools"
	"librarydesk/internal/util"
	"librarydesk/pkg/ai"
	"librarydesk/pkg/events"
	"librarydesk/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		util.Fatal("failed to init postgres store", "err", err)
	}

	var publisher events.Publisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			util.Fatal("failed to init amqp publisher", "err", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	registry := tools.NewRegistry(dataStore, publisher)

	systemPrompt := ""
	if cfg.SystemPromptPath != "" {
		raw, err := os.ReadFile(cfg.SystemPromptPath)
		if err != nil {
			util.Fatal("failed to read system prompt", "path", cfg.SystemPromptPath, "err", err)
		}
		systemPrompt = string(raw)
	}

	dispatcher, err := agent.New(agent.Config{
		Model:        ai.NewOpenAICompatChat(cfg.GenerationBaseURL, cfg.GenerationAPIKey, cfg.GenerationModel),
		Registry:     registry,
		SystemPrompt: systemPrompt,
		MaxSteps:     cfg.MaxToolSteps,
	})
	if err != nil {
		util.Fatal("failed to init agent", "err", err)
	}

	appCore, err := app.New(app.Config{
		Store:      dataStore,
		Dispatcher: dispatcher,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	var chatLimiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" {
		limit := cfg.ChatRateLimitPerMinute
		if limit <= 0 {
			limit = 30
		}
		chatLimiter, err = ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "librarydesk:ratelimit:chat", limit, time.Minute)
		if err != nil {
			util.Fatal("failed to init chat limiter", "err", err)
		}
	}

	httpServer := server.New(server.Config{
		App:         appCore,
		ChatLimiter: chatLimiter,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("library desk server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

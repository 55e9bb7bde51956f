package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sukanya-2000/fraud-detection-logger/internal/activity"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/api"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/config"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/engine"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/ingest"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/retry"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/rules"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/source/kafka"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/stats"
	"github.com/Sukanya-2000/fraud-detection-logger/internal/store"
)

func main() {
	cfgPath := flag.String("config", "configs/detector.yaml", "Path to detector YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Detection state ───────────────────────────────────────────────────────
	window := activity.New(time.Duration(cfg.Activity.WindowMs) * time.Millisecond)
	go window.Run(ctx, time.Duration(cfg.Activity.SweepIntervalMs)*time.Millisecond)

	evaluator := rules.NewEvaluator(window, thresholdsFrom(cfg))
	fraudStore := store.NewMemoryStore()
	pipeline := engine.New(evaluator, fraudStore, logger)

	// ── Retry coordinator ─────────────────────────────────────────────────────
	scheduler := retry.New(ctx,
		retry.Policy{
			BaseDelay:   time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond,
			MaxAttempts: cfg.Retry.MaxAttempts,
		},
		func(ctx context.Context, raw []byte) error {
			_, err := pipeline.Process(ctx, raw)
			return err
		},
		engine.Permanent,
		logger,
	)

	// ── Kafka ingestion loop ──────────────────────────────────────────────────
	src := kafka.NewSource(kafka.Config{
		Brokers:           cfg.Kafka.Brokers,
		Topic:             cfg.Kafka.Topic,
		GroupID:           cfg.Kafka.GroupID,
		HeartbeatInterval: time.Duration(cfg.Kafka.HeartbeatIntervalMs) * time.Millisecond,
		SessionTimeout:    time.Duration(cfg.Kafka.SessionTimeoutMs) * time.Millisecond,
	})
	loop := ingest.NewLoop(src, pipeline, scheduler, engine.Permanent, logger)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil {
			slog.Error("ingestion loop stopped", "err", err)
		}
	}()
	slog.Info("consuming", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)

	// ── Threshold hot-reload ──────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.Config) {
		if err := config.Validate(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		evaluator.SwapThresholds(thresholdsFrom(newCfg))
		slog.Info("rule thresholds hot-reloaded",
			"high_amount", newCfg.Rules.HighAmountThreshold,
			"round_divisor", newCfg.Rules.RoundAmountDivisor,
		)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	agg := stats.NewAggregator(fraudStore, window)
	handler := api.New(pipeline, fraudStore, agg, window, evaluator, scheduler, loader, logger)
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)

	cancel() // stop fetching; the loop finishes its in-flight message
	select {
	case <-loopDone:
	case <-time.After(10 * time.Second):
		slog.Warn("ingestion loop did not stop in time")
	}
	scheduler.Shutdown() // pending retry timers no-op from here on
	if err := src.Close(); err != nil {
		slog.Warn("source close failed", "err", err)
	}
	slog.Info("goodbye")
}

func thresholdsFrom(cfg *config.Config) rules.Thresholds {
	return rules.Thresholds{
		HighAmount:       decimal.NewFromInt(cfg.Rules.HighAmountThreshold),
		DomesticLocation: cfg.Rules.DomesticLocation,
		RoundDivisor:     decimal.NewFromInt(cfg.Rules.RoundAmountDivisor),
	}
}

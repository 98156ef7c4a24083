package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/smart-planner/internal/app"
	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	configPath := flag.String("config", os.Getenv(config.ConfigFileEnv), "Optional YAML/JSON/TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	if cfg.RabbitMQURL == "" {
		zapLogger.Fatal("rabbitmq_url_required_for_worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	planner, err := app.New(ctx, cfg, zapLogger, app.Options{RequireQueue: true, Debug: debugMode})
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_worker", zap.Error(err))
	}
	defer func() {
		if err := planner.Close(); err != nil {
			zapLogger.Warn("failed_to_close_connections", zap.Error(err))
		}
	}()

	dispatcher := workers.NewReminderDispatcher(planner.Store, planner.Deliverer(), planner.Queue, zapLogger)

	if dlqPurger, ok := planner.Queue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour, zapLogger)
		go func() {
			if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
	}

	zapLogger.Info("worker_started_consuming_reminders")
	if err := dispatcher.Run(ctx, cfg.RabbitMQPrefetch); err != nil {
		zapLogger.Error("worker_stopped_with_error", zap.Error(err))
		return
	}
	zapLogger.Info("worker_stopped")
}

// Package app wires storage, the reminder backend and the planner services
// from a loaded configuration. The server, the worker and the CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/notification"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/ai"
	"github.com/benvon/smart-planner/internal/storage"
	"github.com/benvon/smart-planner/internal/tasks"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	queueConnectAttempts = 10
	queueInitialDelay    = 2 * time.Second
	queueMaxDelay        = 30 * time.Second
)

// Options adjusts how the services are wired
type Options struct {
	// Deliverers receive reminders fired by the local notifier in addition
	// to the structured log (and Redis pub/sub when Redis is configured).
	Deliverers []notification.Deliverer
	// RequireQueue connects to RabbitMQ even when the notifier backend does
	// not publish to it (the worker consumes from it).
	RequireQueue bool
	// Debug enables LLM request/response previews
	Debug bool
}

// App holds the wired dependencies
type App struct {
	Config      *config.Config
	Log         *zap.Logger
	Store       storage.KV
	Redis       *redis.Client
	Queue       queue.JobQueue
	Notifier    notification.Notifier
	Tasks       *tasks.Service
	Suggestions *ai.SuggestionService
	Chat        *ai.ChatService

	closers []func() error
}

// New connects to the configured backends and builds the services.
// On error every connection opened so far is closed.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (a *App, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	a = &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if cfg.RedisURL != "" {
		a.Redis, err = storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.Redis.Close)
		log.Info("connected_to_redis")
	}

	if cfg.StorageBackend == storage.BackendRedis && a.Redis != nil {
		a.Store = storage.NewRedisStore(a.Redis, "planner:")
	} else {
		a.Store, err = storage.Open(ctx, cfg.StorageOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		a.closers = append(a.closers, a.Store.Close)
	}
	log.Info("storage_opened", zap.String("backend", cfg.StorageBackend))

	if cfg.NotifierBackend == notification.BackendQueue || opts.RequireQueue {
		a.Queue, err = connectQueue(ctx, cfg.RabbitMQURL, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.Queue.Close)
	}

	a.Notifier, err = notification.New(notification.Options{
		Backend:   cfg.NotifierBackend,
		Queue:     a.Queue,
		Registry:  a.Store,
		Deliverer: a.Deliverer(opts.Deliverers...),
		Log:       log,
	})
	if err != nil {
		return nil, err
	}

	binder := notification.NewBinder(a.Notifier, log)
	a.Tasks = tasks.NewService(tasks.NewStore(a.Store), binder, log)
	a.Suggestions = ai.NewSuggestionService(newSuggestionProvider(cfg, log, opts.Debug), cfg.OpenAIKey, log)
	a.Chat = ai.NewChatService(ai.NewClassifier(), ai.NewResponder(), nil)
	return a, nil
}

// Deliverer returns the reminder sink: the log, Redis pub/sub when
// available, then extra.
func (a *App) Deliverer(extra ...notification.Deliverer) notification.Deliverer {
	sinks := notification.MultiDeliverer{notification.NewLogDeliverer(a.Log)}
	if a.Redis != nil {
		sinks = append(sinks, notification.NewRedisDeliverer(a.Redis))
	}
	return append(sinks, extra...)
}

// Close releases every connection in reverse order of opening
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newSuggestionProvider(cfg *config.Config, log *zap.Logger, debug bool) ai.SuggestionProvider {
	if cfg.OpenAIKey == "" {
		return nil
	}
	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry, log, debug)
	provider, err := registry.GetProvider("openai", map[string]string{
		"api_key":  cfg.OpenAIKey,
		"model":    cfg.AIModel,
		"base_url": cfg.AIBaseURL,
	})
	if err != nil {
		log.Warn("failed_to_create_ai_provider_using_fallback_suggestions", zap.Error(err))
		return nil
	}
	return provider
}

// connectQueue retries with exponential backoff to ride out RabbitMQ startup
func connectQueue(ctx context.Context, url string, log *zap.Logger) (*queue.RabbitMQQueue, error) {
	var lastErr error
	for attempt := 0; attempt < queueConnectAttempts; attempt++ {
		q, err := queue.NewRabbitMQQueue(url, log)
		if err == nil {
			log.Info("connected_to_rabbitmq")
			return q, nil
		}
		lastErr = err

		delay := queueInitialDelay * time.Duration(1<<uint(attempt))
		if delay > queueMaxDelay {
			delay = queueMaxDelay
		}
		log.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", queueConnectAttempts),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", queueConnectAttempts, lastErr)
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/smart-planner/api/openapi"
	"github.com/benvon/smart-planner/internal/app"
	"github.com/benvon/smart-planner/internal/config"
	"github.com/benvon/smart-planner/internal/handlers"
	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/middleware"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/notification"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/oidc"
	"github.com/benvon/smart-planner/internal/storage"
	"github.com/benvon/smart-planner/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

const serviceName = "smart-planner-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	configPath := flag.String("config", os.Getenv(config.ConfigFileEnv), "Optional YAML/JSON/TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("storage_backend", cfg.StorageBackend),
		zap.String("notifier_backend", cfg.NotifierBackend),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("oidc_enabled", cfg.OIDC().Enabled()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	tracingEnabled := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracingEnabled = true
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	planner, err := app.New(ctx, cfg, zapLogger, app.Options{Debug: debugMode})
	if err != nil {
		zapLogger.Fatal("failed_to_initialize_services", zap.Error(err))
	}
	defer func() {
		if err := planner.Close(); err != nil {
			zapLogger.Warn("failed_to_close_connections", zap.Error(err))
		}
	}()

	// In-process timers are lost on restart
	if cfg.NotifierBackend == notification.BackendLocal && !cfg.OIDC().Enabled() {
		restored, err := planner.Tasks.RestoreReminders(ctx, models.LocalOwner)
		if err != nil {
			zapLogger.Warn("failed_to_restore_reminders", zap.Error(err))
		} else {
			zapLogger.Info("reminders_restored", zap.Int("count", restored))
		}
	}

	var verifier middleware.TokenVerifier
	oidcProvider := oidc.NewProvider(cfg.OIDC())
	if cfg.OIDC().Enabled() {
		verifier = oidc.NewVerifier(oidc.NewJWKSManager(), cfg.OIDCIssuer, cfg.OIDCJWKSURL)
	}

	limiterStore, err := middleware.NewLimiterStore(planner.Redis)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}
	rateLimitReloader := middleware.NewRateLimitReloader(
		limiterStore,
		storage.NewRatelimitConfigRepository(planner.Store),
		cfg.RateLimit,
		zapLogger,
		1*time.Minute,
	)
	rateLimitMW := rateLimitReloader.Middleware()
	authMW := middleware.Auth(verifier, zapLogger)

	authHandler := handlers.NewAuthHandler(oidcProvider, zapLogger)
	taskHandler := handlers.NewTaskHandler(planner.Tasks, zapLogger)
	settingsHandler := handlers.NewSettingsHandler(planner.Tasks, zapLogger)
	suggestionHandler := handlers.NewSuggestionHandler(planner.Tasks, planner.Suggestions, zapLogger)
	chatHandler := handlers.NewChatHandler(planner.Chat, planner.Tasks, zapLogger)
	healthChecker := handlers.NewHealthChecker(planner.Store, planner.Queue, planner.Redis)
	openAPIHandler, err := handlers.NewOpenAPIHandler(openapi.Document)
	if err != nil {
		zapLogger.Fatal("failed_to_load_openapi_document", zap.Error(err))
	}

	r := mux.NewRouter()

	// Middleware registered first wraps outermost
	if tracingEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORSFromEnv(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize, zapLogger))
	r.Use(middleware.ContentType(zapLogger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", handlers.GetVersion).Methods(http.MethodGet)
	openAPIHandler.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	loginRouter := apiRouter.PathPrefix("/auth").Subrouter()
	loginRouter.Use(rateLimitMW)
	authHandler.RegisterPublicRoutes(loginRouter)

	protected := apiRouter.PathPrefix("").Subrouter()
	protected.Use(authMW)
	protected.Use(rateLimitMW)
	authHandler.RegisterRoutes(protected.PathPrefix("/auth").Subrouter())
	taskHandler.RegisterRoutes(protected.PathPrefix("/tasks").Subrouter())
	settingsHandler.RegisterRoutes(protected.PathPrefix("/settings").Subrouter())
	aiRouter := protected.PathPrefix("/ai").Subrouter()
	suggestionHandler.RegisterRoutes(aiRouter)
	chatHandler.RegisterRoutes(aiRouter)

	// Preflight requests; CORS has already written the headers
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go rateLimitReloader.Start(ctx)

	if dlqPurger, ok := planner.Queue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour, zapLogger)
		go func() {
			if err := dlqGC.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("server_shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

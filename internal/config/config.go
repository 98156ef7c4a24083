// Package config loads planner settings from the environment, an optional
// .env file and an optional YAML overlay. Environment variables win over the
// overlay; the overlay wins over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/benvon/smart-planner/internal/notification"
	"github.com/benvon/smart-planner/internal/services/oidc"
	"github.com/benvon/smart-planner/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

// ConfigFileEnv names the YAML overlay when no --config flag is given
const ConfigFileEnv = "PLANNER_CONFIG"

// Config holds application configuration
type Config struct {
	ServerPort  string
	FrontendURL string
	EnableHSTS  bool
	RateLimit   string

	StorageBackend string
	DataDir        string
	SQLitePath     string
	DatabaseURL    string
	RedisURL       string

	NotifierBackend  string
	RabbitMQURL      string
	RabbitMQPrefetch int

	OpenAIKey string
	AIModel   string
	AIBaseURL string

	OIDCIssuer       string
	OIDCJWKSURL      string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURI  string

	OTELEnabled     bool
	OTELEndpoint    string
	ServerDebugMode bool
	WorkerDebugMode bool
}

// Load reads .env (if present), the YAML overlay at configPath (or
// $PLANNER_CONFIG) and the environment, then validates the result.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if configPath == "" {
		configPath = os.Getenv(ConfigFileEnv)
	}

	var file *viper.Viper
	if configPath != "" {
		file = viper.New()
		file.SetConfigFile(configPath)
		if err := file.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	cfg := load(source{lookup: os.LookupEnv, file: file})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(src source) *Config {
	cfg := &Config{
		ServerPort:       src.getEnv("SERVER_PORT", "8080"),
		FrontendURL:      src.getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:       src.getEnvBool("ENABLE_HSTS", false),
		RateLimit:        src.getEnv("RATE_LIMIT", "5-S"),
		StorageBackend:   strings.ToLower(src.getEnv("STORAGE_BACKEND", storage.BackendFile)),
		DataDir:          src.getEnv("DATA_DIR", "./data"),
		SQLitePath:       src.getEnv("SQLITE_PATH", "planner.db"),
		DatabaseURL:      src.getEnv("DATABASE_URL", ""),
		RedisURL:         src.getEnv("REDIS_URL", ""),
		NotifierBackend:  strings.ToLower(src.getEnv("NOTIFIER_BACKEND", notification.BackendLocal)),
		RabbitMQURL:      src.getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: src.getEnvInt("RABBITMQ_PREFETCH", 1),
		OpenAIKey:        src.getEnv("OPENAI_API_KEY", ""),
		AIModel:          src.getEnv("AI_MODEL", ""),
		AIBaseURL:        src.getEnv("AI_BASE_URL", ""),
		OIDCIssuer:       src.getEnv("OIDC_ISSUER", ""),
		OIDCJWKSURL:      src.getEnv("OIDC_JWKS_URL", ""),
		OIDCClientID:     src.getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: src.getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURI:  src.getEnv("OIDC_REDIRECT_URI", ""),
		OTELEnabled:      src.getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     src.getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServerDebugMode:  src.getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode:  src.getEnvBool("WORKER_DEBUG_MODE", false),
	}
	if cfg.OIDCIssuer != "" && cfg.OIDCJWKSURL == "" {
		cfg.OIDCJWKSURL = strings.TrimSuffix(cfg.OIDCIssuer, "/") + "/.well-known/jwks.json"
	}
	return cfg
}

// Validate checks backend-specific requirements
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case storage.BackendMemory:
	case storage.BackendFile:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the file storage backend"))
		}
	case storage.BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite storage backend"))
		}
	case storage.BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres storage backend"))
		}
	case storage.BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis storage backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND %q is not one of memory, file, sqlite, postgres, redis", c.StorageBackend))
	}

	switch c.NotifierBackend {
	case notification.BackendLocal, notification.BackendNone:
	case notification.BackendQueue:
		if c.RabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL is required for the queue notifier"))
		}
		if c.StorageBackend == storage.BackendMemory {
			errs = append(errs, errors.New("the queue notifier needs a storage backend shared with the worker"))
		}
	default:
		errs = append(errs, fmt.Errorf("NOTIFIER_BACKEND %q is not one of local, queue, none", c.NotifierBackend))
	}

	if c.RabbitMQPrefetch < 1 {
		errs = append(errs, errors.New("RABBITMQ_PREFETCH must be at least 1"))
	}
	if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT %q is invalid: %w", c.RateLimit, err))
	}
	if c.OIDCIssuer == "" && (c.OIDCClientID != "" || c.OIDCClientSecret != "") {
		errs = append(errs, errors.New("OIDC_ISSUER is required when OIDC client credentials are set"))
	}

	return errors.Join(errs...)
}

// StorageOptions returns the KV backend selection
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:     c.StorageBackend,
		DataDir:     c.DataDir,
		SQLitePath:  c.SQLitePath,
		DatabaseURL: c.DatabaseURL,
		RedisURL:    c.RedisURL,
	}
}

// OIDC returns the identity provider configuration
func (c *Config) OIDC() oidc.Config {
	return oidc.Config{
		Issuer:       c.OIDCIssuer,
		JWKSURL:      c.OIDCJWKSURL,
		ClientID:     c.OIDCClientID,
		ClientSecret: c.OIDCClientSecret,
		RedirectURI:  c.OIDCRedirectURI,
	}
}

// source resolves a setting from the environment first, then the YAML
// overlay, where keys are the lower-cased variable names (server_port).
type source struct {
	lookup func(string) (string, bool)
	file   *viper.Viper
}

func (s source) value(key string) string {
	if value, ok := s.lookup(key); ok && value != "" {
		return value
	}
	if s.file != nil {
		fileKey := strings.ToLower(key)
		if s.file.IsSet(fileKey) {
			return s.file.GetString(fileKey)
		}
	}
	return ""
}

func (s source) getEnv(key, defaultValue string) string {
	if value := s.value(key); value != "" {
		return value
	}
	return defaultValue
}

func (s source) getEnvBool(key string, defaultValue bool) bool {
	if value := strings.ToLower(s.value(key)); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (s source) getEnvInt(key string, defaultValue int) int {
	if value := s.value(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

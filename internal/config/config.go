// Package config - Application configuration management.
//
// Использует Viper для:
// - Загрузки из YAML файлов
// - Переменных окружения
// - Значений по умолчанию
//
// Порядок приоритета (от высшего к низшему):
// 1. Environment variables
// 2. Config file
// 3. Default values
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ============================================
// Main Configuration
// ============================================

// Config - главная структура конфигурации приложения.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Broker      BrokerConfig      `mapstructure:"broker"`
	Resilience  ResilienceConfig  `mapstructure:"resilience"`
	Outbox      OutboxConfig      `mapstructure:"outbox"`
	Projector   ProjectorConfig   `mapstructure:"projector"`
	Auth        AuthConfig        `mapstructure:"auth"`
	CORS        CORSConfig        `mapstructure:"cors"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Log         LogConfig         `mapstructure:"log"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
}

// ============================================
// Tracing Configuration
// ============================================

// TracingConfig controls OpenTelemetry distributed tracing export.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

// ============================================
// App Configuration
// ============================================

// AppConfig - конфигурация приложения.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	BuildTime   string `mapstructure:"build_time"`
	GitCommit   string `mapstructure:"git_commit"`
}

// IsDevelopment возвращает true если окружение development.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction возвращает true если окружение production.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// ============================================
// Server Configuration
// ============================================

// ServerConfig - конфигурация HTTP сервера.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// CommandDeadline bounds a write command (Deposit/Withdraw/Transfer/
	// admin transitions), including all of its retries.
	CommandDeadline time.Duration `mapstructure:"command_deadline"`
	// ReadDeadline bounds a query (GetWallet/ListWallets/GetHistoricalBalance).
	ReadDeadline time.Duration `mapstructure:"read_deadline"`
}

// Address возвращает полный адрес сервера.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ============================================
// Database Configuration
// ============================================

// DatabaseConfig - конфигурация базы данных. Write and read traffic may
// target different endpoints (primary + replica); ReadDSN falls back to
// the write DSN when unset.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConnections  int32         `mapstructure:"max_connections"`
	MinConnections  int32         `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`

	// ReadHost/ReadPort/ReadDatabase describe the read replica. When
	// ReadHost is empty, ReadDSN() returns DSN() — no replica configured.
	ReadHost     string `mapstructure:"read_host"`
	ReadPort     int    `mapstructure:"read_port"`
	ReadDatabase string `mapstructure:"read_database"`
}

// DSN возвращает строку подключения к write-primary PostgreSQL.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// ReadDSN возвращает строку подключения к read-реплике, если она
// настроена, иначе совпадает с DSN().
func (c *DatabaseConfig) ReadDSN() string {
	if c.ReadHost == "" {
		return c.DSN()
	}
	host, port, database := c.ReadHost, c.ReadPort, c.ReadDatabase
	if port == 0 {
		port = c.Port
	}
	if database == "" {
		database = c.Database
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, host, port, database, c.SSLMode,
	)
}

// ============================================
// Cache Configuration (C4)
// ============================================

// CacheConfig - конфигурация Redis-кэша кошельков.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ============================================
// Broker Configuration (C8/C9)
// ============================================

// BrokerConfig - конфигурация NATS для публикации/подписки доменных событий.
type BrokerConfig struct {
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// ============================================
// Resilience Configuration (C7)
// ============================================

// ResilienceConfig - конфигурация wrapper'а повторных попыток.
type ResilienceConfig struct {
	OptimisticRetryMax   int           `mapstructure:"optimistic_retry_max"`
	OptimisticRetryBase  time.Duration `mapstructure:"optimistic_retry_base"`
	OptimisticRetryCap   time.Duration `mapstructure:"optimistic_retry_cap"`
	TransientRetryMax    int           `mapstructure:"transient_retry_max"`
	TransientRetryBase   time.Duration `mapstructure:"transient_retry_base"`
	TransientRetryCap    time.Duration `mapstructure:"transient_retry_cap"`
	DegradationWindow    time.Duration `mapstructure:"degradation_window"`
	DegradationThreshold int           `mapstructure:"degradation_threshold"`
}

// ============================================
// Outbox Configuration (C5/C8)
// ============================================

// OutboxConfig - конфигурация publisher-пампа для outbox-таблицы.
type OutboxConfig struct {
	BatchSize int           `mapstructure:"batch_size"`
	Interval  time.Duration `mapstructure:"interval"`
}

// ============================================
// Projector Configuration (C9)
// ============================================

// ProjectorConfig - конфигурация проектора read-модели.
type ProjectorConfig struct {
	// Mode is "nats" (subscribe to the broker) or "inline" (apply directly
	// after a command commits, for reduced single-process deployments).
	Mode        string `mapstructure:"mode"`
	Concurrency int    `mapstructure:"concurrency"`
}

// ============================================
// Auth Configuration
// ============================================

// AuthConfig - конфигурация аутентификации для admin-эндпоинтов
// (Freeze/Unfreeze/Close).
type AuthConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	JWTIssuer          string        `mapstructure:"jwt_issuer"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_token_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_token_expiry"`
	EnableMockAuth     bool          `mapstructure:"enable_mock_auth"` // Только для development!
}

// ============================================
// CORS Configuration
// ============================================

// CORSConfig - конфигурация CORS.
type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	ExposedHeaders   []string      `mapstructure:"exposed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

// ============================================
// Rate Limit Configuration
// ============================================

// RateLimitConfig - конфигурация rate limiting.
type RateLimitConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	RequestsPerMinute  int           `mapstructure:"requests_per_minute"`
	BurstSize          int           `mapstructure:"burst_size"`
	FinancialOpsPerMin int           `mapstructure:"financial_ops_per_min"`
	CleanupInterval    time.Duration `mapstructure:"cleanup_interval"`
}

// ============================================
// Log Configuration
// ============================================

// LogConfig - конфигурация логирования.
type LogConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	Output     string `mapstructure:"output"` // stdout, stderr, file
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`    // MB
	MaxBackups int    `mapstructure:"max_backups"` // количество файлов
	MaxAge     int    `mapstructure:"max_age"`     // дней
	Compress   bool   `mapstructure:"compress"`
}

// ============================================
// Configuration Loading
// ============================================

// Load загружает конфигурацию из файла и переменных окружения.
//
// configPath - путь к директории с конфигурацией (например, "configs")
// configName - имя файла конфигурации без расширения (например, "config")
//
// Поддерживаемые форматы: yaml, json, toml
func Load(configPath, configName string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/walletcore")

	v.SetEnvPrefix("WALLETCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Файл не найден - используем defaults и env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv загружает конфигурацию только из переменных окружения.
func LoadFromEnv() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("WALLETCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults устанавливает значения по умолчанию.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "walletcore")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", true)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.command_deadline", "5s")
	v.SetDefault("server.read_deadline", "2s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.database", "walletcore")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Cache defaults (C4)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "30m")

	// Broker defaults (C8/C9)
	v.SetDefault("broker.url", "nats://localhost:4222")
	v.SetDefault("broker.connect_timeout", "5s")

	// Resilience defaults (C7) - spec.md §4.2
	v.SetDefault("resilience.optimistic_retry_max", 5)
	v.SetDefault("resilience.optimistic_retry_base", "10ms")
	v.SetDefault("resilience.optimistic_retry_cap", "200ms")
	v.SetDefault("resilience.transient_retry_max", 3)
	v.SetDefault("resilience.transient_retry_base", "50ms")
	v.SetDefault("resilience.transient_retry_cap", "1s")
	v.SetDefault("resilience.degradation_window", "30s")
	v.SetDefault("resilience.degradation_threshold", 3)

	// Outbox defaults (C5/C8)
	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.interval", "5s")

	// Projector defaults (C9)
	v.SetDefault("projector.mode", "nats")
	v.SetDefault("projector.concurrency", 4)

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.jwt_issuer", "walletcore")
	v.SetDefault("auth.access_token_expiry", "15m")
	v.SetDefault("auth.refresh_token_expiry", "168h") // 7 days
	v.SetDefault("auth.enable_mock_auth", true)

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"})
	v.SetDefault("cors.exposed_headers", []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", "12h")

	// Rate Limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 100)
	v.SetDefault("rate_limit.burst_size", 20)
	v.SetDefault("rate_limit.financial_ops_per_min", 30)
	v.SetDefault("rate_limit.cleanup_interval", "1m")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.otlp_endpoint", "localhost:4318")
	v.SetDefault("tracing.sample_ratio", 1.0)
}

// bindEnvVars привязывает переменные окружения.
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("database.host", "WALLETCORE_DATABASE_HOST", "DB_HOST")
	_ = v.BindEnv("database.port", "WALLETCORE_DATABASE_PORT", "DB_PORT")
	_ = v.BindEnv("database.user", "WALLETCORE_DATABASE_USER", "DB_USER")
	_ = v.BindEnv("database.password", "WALLETCORE_DATABASE_PASSWORD", "DB_PASSWORD")
	_ = v.BindEnv("database.database", "WALLETCORE_DATABASE_DATABASE", "DB_NAME")
	_ = v.BindEnv("database.read_host", "WALLETCORE_DATABASE_READ_HOST", "DB_READ_HOST")

	_ = v.BindEnv("cache.addr", "WALLETCORE_CACHE_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("broker.url", "WALLETCORE_BROKER_URL", "NATS_URL")

	_ = v.BindEnv("auth.jwt_secret", "WALLETCORE_AUTH_JWT_SECRET", "JWT_SECRET")

	_ = v.BindEnv("server.port", "WALLETCORE_SERVER_PORT", "PORT")

	_ = v.BindEnv("app.environment", "WALLETCORE_APP_ENVIRONMENT", "ENVIRONMENT", "ENV")

	_ = v.BindEnv("tracing.enabled", "WALLETCORE_TRACING_ENABLED")
	_ = v.BindEnv("tracing.otlp_endpoint", "WALLETCORE_TRACING_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// ============================================
// Configuration Validation
// ============================================

// Validate валидирует конфигурацию.
func (c *Config) Validate() error {
	if c.App.IsProduction() {
		if c.Auth.JWTSecret == "change-me-in-production" {
			return fmt.Errorf("JWT secret must be changed in production")
		}

		if c.Auth.EnableMockAuth {
			return fmt.Errorf("mock auth must be disabled in production")
		}
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Resilience.OptimisticRetryMax <= 0 {
		return fmt.Errorf("resilience.optimistic_retry_max must be positive")
	}

	if c.Outbox.BatchSize <= 0 {
		return fmt.Errorf("outbox.batch_size must be positive")
	}

	if c.Projector.Mode != "nats" && c.Projector.Mode != "inline" {
		return fmt.Errorf("projector.mode must be 'nats' or 'inline', got %q", c.Projector.Mode)
	}

	return nil
}

// ============================================
// Development Helpers
// ============================================

// Development возвращает конфигурацию для разработки.
func Development() *Config {
	return &Config{
		App: AppConfig{
			Name:        "walletcore",
			Version:     "dev",
			Environment: "development",
			Debug:       true,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CommandDeadline: 5 * time.Second,
			ReadDeadline:    2 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "postgres",
			Database:        "walletcore",
			SSLMode:         "disable",
			MaxConnections:  10,
			MinConnections:  2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
		Cache: CacheConfig{
			Addr: "localhost:6379",
			TTL:  30 * time.Minute,
		},
		Broker: BrokerConfig{
			URL:            "nats://localhost:4222",
			ConnectTimeout: 5 * time.Second,
		},
		Resilience: ResilienceConfig{
			OptimisticRetryMax:   5,
			OptimisticRetryBase:  10 * time.Millisecond,
			OptimisticRetryCap:   200 * time.Millisecond,
			TransientRetryMax:    3,
			TransientRetryBase:   50 * time.Millisecond,
			TransientRetryCap:    time.Second,
			DegradationWindow:    30 * time.Second,
			DegradationThreshold: 3,
		},
		Outbox: OutboxConfig{
			BatchSize: 100,
			Interval:  5 * time.Second,
		},
		Projector: ProjectorConfig{
			Mode:        "inline",
			Concurrency: 4,
		},
		Auth: AuthConfig{
			JWTSecret:          "dev-secret-key",
			JWTIssuer:          "walletcore-dev",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 168 * time.Hour,
			EnableMockAuth:     true,
		},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Enabled:            true,
			RequestsPerMinute:  100,
			BurstSize:          20,
			FinancialOpsPerMin: 30,
			CleanupInterval:    time.Minute,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4318",
			SampleRatio:  1.0,
		},
	}
}

// Test возвращает конфигурацию для тестов.
func Test() *Config {
	cfg := Development()
	cfg.App.Environment = "test"
	cfg.Database.Database = "walletcore_test"
	cfg.Projector.Mode = "inline"
	cfg.Log.Level = "error" // Меньше шума в тестах
	return cfg
}

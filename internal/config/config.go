package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	API       APIConfig
	Worker    WorkerConfig
	Upstream  UpstreamConfig
	Refresh   RefreshConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// APIConfig holds API server settings
type APIConfig struct {
	Port string
	Host string
}

// WorkerConfig holds refresh-worker settings
type WorkerConfig struct {
	PollInterval time.Duration
}

// UpstreamConfig holds marketplace API client settings
type UpstreamConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// RefreshConfig holds retry settings for snapshot refresh jobs.
// Mutating lead actions are never retried; these settings apply only to
// the idempotent re-fetch that follows a successful action.
type RefreshConfig struct {
	MaxAttempts int
	BackoffBase time.Duration
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	Enabled      bool
	SharedSecret string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string
}

// TelemetryConfig holds tracing settings
type TelemetryConfig struct {
	ServiceName string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "booking_gateway"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		API: APIConfig{
			Port: getEnv("API_PORT", "8080"),
			Host: getEnv("API_HOST", "0.0.0.0"),
		},
		Worker: WorkerConfig{
			PollInterval: parseDuration(getEnv("WORKER_POLL_INTERVAL", "5s"), 5*time.Second),
		},
		Upstream: UpstreamConfig{
			URL:     getEnv("MARKETPLACE_API_URL", ""),
			Token:   getEnv("MARKETPLACE_API_TOKEN", ""),
			Timeout: parseDuration(getEnv("MARKETPLACE_API_TIMEOUT", "10s"), 10*time.Second),
		},
		Refresh: RefreshConfig{
			MaxAttempts: parseInt(getEnv("REFRESH_MAX_ATTEMPTS", "5"), 5),
			BackoffBase: parseDuration(getEnv("REFRESH_BACKOFF_BASE", "30s"), 30*time.Second),
		},
		Auth: AuthConfig{
			Enabled:      parseBool(getEnv("ENABLE_AUTH", "false")),
			SharedSecret: getEnv("SHARED_SECRET", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Telemetry: TelemetryConfig{
			ServiceName: getEnv("OTEL_SERVICE_NAME", "booking-gateway"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration fields are set
func (c *Config) Validate() error {
	if c.Upstream.URL == "" {
		return fmt.Errorf("MARKETPLACE_API_URL is required")
	}
	if c.Upstream.Token == "" {
		return fmt.Errorf("MARKETPLACE_API_TOKEN is required")
	}
	if c.Auth.Enabled && c.Auth.SharedSecret == "" {
		return fmt.Errorf("SHARED_SECRET is required when ENABLE_AUTH is true")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseInt(value string, defaultValue int) int {
	var result int
	_, err := fmt.Sscanf(value, "%d", &result)
	if err != nil {
		return defaultValue
	}
	return result
}

func parseBool(value string) bool {
	return value == "true" || value == "1" || value == "yes"
}

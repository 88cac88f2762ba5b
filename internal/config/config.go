// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// DBDriver is the database driver to use (only "sqlite" is supported).
	DBDriver string
	// DBConnectionString is the connection string for the database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// AuthSecret is the shared secret used to sign and verify tokens. It is
	// never logged and never embedded in tokens. An empty value is a
	// startup-fatal condition; rotating it invalidates all issued tokens.
	AuthSecret string
	// AuthTokenLifetime is the duration after which an issued token expires.
	AuthTokenLifetime time.Duration

	// RateLimitLoginEnabled indicates whether IP-based rate limiting for the
	// register/login endpoints is enabled.
	RateLimitLoginEnabled bool
	// RateLimitLoginRequestsPerSec is the number of requests allowed per second per IP.
	RateLimitLoginRequestsPerSec float64
	// RateLimitLoginBurst is the burst size for the register/login endpoints.
	RateLimitLoginBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Database configuration
		DBDriver:             env.GetString("DB_DRIVER", "sqlite"),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", "app.db"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 1),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 1),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Auth
		AuthSecret:        env.GetString("AUTH_SECRET", ""),
		AuthTokenLifetime: env.GetDuration("AUTH_TOKEN_LIFETIME_SECONDS", 3600, time.Second),

		// Rate limiting for register/login (IP-based, unauthenticated)
		RateLimitLoginEnabled:        env.GetBool("RATE_LIMIT_LOGIN_ENABLED", true),
		RateLimitLoginRequestsPerSec: env.GetFloat64("RATE_LIMIT_LOGIN_REQUESTS_PER_SEC", 5.0),
		RateLimitLoginBurst:          env.GetInt("RATE_LIMIT_LOGIN_BURST", 10),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "sentimeter"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}

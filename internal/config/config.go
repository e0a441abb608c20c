// Package config provides configuration management for the target service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Mock     MockConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port               string
	CORSOrigins        []string
	RateLimitPerMinute int64 // 0 disables rate limiting
	ShutdownTimeout    time.Duration
	Version            string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // logrus level name
	Format string // "text" or "json"
}

// MockConfig controls the synthetic data used by the in-memory driver
type MockConfig struct {
	SeedCount int
	Seed      uint64 // 0 means non-deterministic
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver                string
	URL                   string
	Host                  string
	Port                  string
	Name                  string
	User                  string
	Password              string
	SSLMode               string
	SQLitePath            string
	MaxConnections        int
	MaxIdleConnections    int
	ConnectionMaxLifetime time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			CORSOrigins:        getEnvAsList("CORS_ORIGINS", []string{"*"}),
			RateLimitPerMinute: int64(getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100)),
			ShutdownTimeout:    getEnvAsDuration("SHUTDOWN_TIMEOUT", "10s"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Driver:                getEnv("DB_DRIVER", DriverMemory),
			URL:                   GetSecret("DATABASE_URL", ""),
			Host:                  getEnv("DB_HOST", "localhost"),
			Port:                  getEnv("DB_PORT", "5432"),
			Name:                  getEnv("DB_NAME", "targets_dev"),
			User:                  getEnv("DB_USER", "targets_user"),
			Password:              GetSecret("DB_PASSWORD", "targets_pass"),
			SSLMode:               getEnv("DB_SSLMODE", "disable"),
			SQLitePath:            getEnv("SQLITE_PATH", "targets.db"),
			MaxConnections:        getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MaxIdleConnections:    getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
			ConnectionMaxLifetime: getEnvAsDuration("DB_CONNECTION_MAX_LIFETIME", "5m"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Mock: MockConfig{
			SeedCount: getEnvAsInt("MOCK_SEED_COUNT", 5),
			Seed:      uint64(getEnvAsInt("MOCK_SEED", 0)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres, sqlite or memory)", c.Database.Driver)
	}

	if c.Server.RateLimitPerMinute < 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.Mock.SeedCount < 0 {
		return errors.New("MOCK_SEED_COUNT must not be negative")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q (want text or json)", c.Log.Format)
	}
	return nil
}

// ConnectionString returns the database connection string
func (d *DatabaseConfig) ConnectionString() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated variable, dropping empty entries
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvAsDuration gets an environment variable as a duration or returns a default value
func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		defaultDuration, _ := time.ParseDuration(defaultValue)
		return defaultDuration
	}
	return value
}

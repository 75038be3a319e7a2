// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"fairsplit/pkg/db"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort      string
	LogLevel        string
	JWTSecret       string
	MigrateOnStart  bool
	DatabaseURL     string // Overrides the DB_* fields when set
	DB              db.Config
	Redis           RedisConfig
	ShutdownTimeout time.Duration
}

// RedisConfig configures the optional group snapshot cache.
// An empty URL disables caching.
type RedisConfig struct {
	URL string
	TTL time.Duration
}

// LoadConfig loads configuration from environment variables, after loading a .env
// file from the working directory if one exists.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load() // Load .env file if present

	dbPort, err := envInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxOpen, err := envInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}
	maxIdle, err := envInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, err
	}
	connLifetime, err := envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := envDuration("REDIS_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	migrate, err := envBool("MIGRATE_ON_START", true)
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		ServerPort:     envString("SERVER_PORT", "8080"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		MigrateOnStart: migrate,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DB: db.Config{
			Host:            envString("DB_HOST", "localhost"),
			Port:            dbPort,
			User:            envString("DB_USER", "user"),
			Password:        envString("DB_PASSWORD", "password"),
			DBName:          envString("DB_NAME", "fairsplit"),
			SSLMode:         envString("DB_SSLMODE", "disable"),
			MaxOpenConns:    maxOpen,
			MaxIdleConns:    maxIdle,
			ConnMaxLifetime: connLifetime,
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
			TTL: cacheTTL,
		},
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

// Validate checks the settings the API server cannot start without.
func (c *AppConfig) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// DSN returns DATABASE_URL when set, and the DSN assembled from the DB_* fields otherwise.
func (c *AppConfig) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DB.DSN()
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

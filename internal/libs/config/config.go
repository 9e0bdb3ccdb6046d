// Package config provides application configuration management from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfiguration marks a missing or invalid startup parameter.
var ErrConfiguration = errors.New("configuration error")

// Config holds application configuration
type Config struct {
	Database     ConnectionTarget
	APIPort      string
	APIHost      string
	LogLevel     string
	MaxConns     int32
	StatsTimeout time.Duration
}

// ConnectionTarget is the resolved database target. Either URL is set, or
// the discrete fields are.
type ConnectionTarget struct {
	URL      string
	Host     string
	Port     string
	Database string
	User     string
	Password string
	SSLMode  string
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.APIHost, c.APIPort)
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: ConnectionTarget{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnv("DB_PORT", "5432"),
			Database: os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		APIPort:  getEnv("BACKEND_PORT", "8080"),
		APIHost:  getEnv("API_HOST", "0.0.0.0"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "10"), 10, 32)
	if err != nil || maxConns <= 0 {
		return nil, fmt.Errorf("%w: DB_MAX_CONNS must be a positive integer", ErrConfiguration)
	}
	cfg.MaxConns = int32(maxConns)

	cfg.StatsTimeout, err = time.ParseDuration(getEnv("STATS_TIMEOUT", "5s"))
	if err != nil || cfg.StatsTimeout <= 0 {
		return nil, fmt.Errorf("%w: STATS_TIMEOUT must be a positive duration", ErrConfiguration)
	}

	if _, err := strconv.Atoi(cfg.APIPort); err != nil {
		return nil, fmt.Errorf("%w: BACKEND_PORT must be numeric, got %q", ErrConfiguration, cfg.APIPort)
	}

	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv loads the given env files (.env when none are named). A missing
// file is fine; an unreadable or malformed one is not.
func loadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: failed to load env file: %w", ErrConfiguration, err)
	}
	return nil
}

// Validate checks that the target carries everything needed to connect.
func (t ConnectionTarget) Validate() error {
	if t.URL != "" {
		return nil
	}

	var missing []string
	if t.Host == "" {
		missing = append(missing, "DB_HOST")
	}
	if t.Database == "" {
		missing = append(missing, "DB_NAME")
	}
	if t.User == "" {
		missing = append(missing, "DB_USER")
	}
	if t.Password == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: DATABASE_URL is not set and %v missing", ErrConfiguration, missing)
	}
	return nil
}

// DSN renders the target as a postgres URL.
func (t ConnectionTarget) DSN() string {
	if t.URL != "" {
		return t.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(t.User, t.Password),
		Host:   net.JoinHostPort(t.Host, t.Port),
		Path:   "/" + t.Database,
	}
	if t.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{t.SSLMode}}.Encode()
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration, built once at startup and
// injected. The core never reads environment variables itself.
type Config struct {
	Database DatabaseConfig
	HTTP     HTTPConfig
	Auth     AuthConfig
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

// HTTPConfig contains server settings.
type HTTPConfig struct {
	Port         string
	AllowOrigins []string
}

// AuthConfig contains token-signing settings.
type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Load reads configuration from environment variables with development
// defaults. JWT_SECRET has no default in release mode.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "postgres"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Port:         getEnv("PORT", "8080"),
			AllowOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ","),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			AccessTTL:  getEnvMinutes("ACCESS_TOKEN_TTL_MIN", 30),
			RefreshTTL: getEnvMinutes("REFRESH_TOKEN_TTL_MIN", 7*24*60),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in release mode")
		}
		cfg.Auth.JWTSecret = "default_super_secret_key" // Development fallback only
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvMinutes(key string, fallback int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(fallback) * time.Minute
}

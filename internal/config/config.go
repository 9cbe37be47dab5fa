// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port        int
	DatabaseURL string
	JWTSecret   string
	JWTExpiry   time.Duration
	FrontendURL string
	Production  bool
}

// Load reads configuration from environment variables, applying
// development defaults where unset. JWT_SECRET is mandatory in production.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        4000,
		DatabaseURL: getEnv("DATABASE_URL", "postgresql://localhost:5432/opsdeck?sslmode=disable"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpiry:   7 * 24 * time.Hour,
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		Production:  os.Getenv("APP_ENV") == "production",
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if expStr := os.Getenv("JWT_EXPIRES_IN"); expStr != "" {
		exp, err := time.ParseDuration(expStr)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRES_IN %q: %w", expStr, err)
		}
		cfg.JWTExpiry = exp
	}

	if cfg.JWTSecret == "" {
		if cfg.Production {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

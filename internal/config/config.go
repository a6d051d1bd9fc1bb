package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort      int
	BaseURL         string // Fully qualified prefix of generated short URLs
	DatabasePath    string
	RedisAddr       string // Empty disables the cache and rate limiter
	JWTSecret       string
	FingerprintSalt string
	RateLimit       int // Requests per minute per IP, 0 disables
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	rateStr := getEnv("RATE_LIMIT_PER_MINUTE", "100")
	rate, err := strconv.Atoi(rateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	cfg := &Config{
		ServerPort:      port,
		BaseURL:         getEnv("BASE_URL", fmt.Sprintf("http://localhost:%d", port)),
		DatabasePath:    getEnv("DATABASE_PATH", "./shortlink.db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		FingerprintSalt: getEnv("FINGERPRINT_SALT", "shortlink-fp"),
		RateLimit:       rate,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

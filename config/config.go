package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	DatabaseURL    string
	FrontendURL    string
	Environment    string
	RedisAddr      string
	RedisPassword  string
	SessionCartTTL time.Duration
	RateLimit      int
	RateWindow     time.Duration
	JWTSecret      string
	AccessTokenTTL time.Duration
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is required in production")

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		SessionCartTTL: getEnvDuration("SESSION_CART_TTL", 30*24*time.Hour),
		RateLimit:      getEnvInt("RATE_LIMIT", 100),
		RateWindow:     getEnvDuration("RATE_WINDOW", time.Minute),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return strings.TrimSpace(val)
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	i, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || i <= 0 {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

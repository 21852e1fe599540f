package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the store backend.
type Config struct {
	Port            string
	Env             string
	RedisURL        string
	JWTSecret       string
	CartTTL         time.Duration
	CheckoutTimeout time.Duration
	TokenTTL        time.Duration
}

// LoadConfig loads environment variables into a Config struct. A .env file
// is read first so secrets supplied only through it are visible here.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		CartTTL:         getDuration("CART_TTL", time.Hour*24*7),
		CheckoutTimeout: getDuration("CHECKOUT_TIMEOUT", 5*time.Second),
		TokenTTL:        getDuration("TOKEN_TTL", time.Hour*24),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

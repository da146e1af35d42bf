// Package config centralizes environment configuration. Commands call
// godotenv.Load before Load so a local .env file works the same as real
// environment variables.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	RedisAddr   string
	RedisPass   string

	// IssueLimit caps issue creations per caller per day. Zero disables the
	// limiter (it is also disabled when RedisAddr is empty).
	IssueLimit int
}

func Load() Config {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   getEnv("JWT_SECRET", "supersecretkey"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		IssueLimit:  10,
	}
	if v := os.Getenv("ISSUE_LIMIT_PER_DAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.IssueLimit = n
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

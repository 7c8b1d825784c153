package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the settings the composition root needs. Settings consumed
// in exactly one place (JWT secret, rate-limit cooldowns, upload folder,
// database DSN) are read from the environment where they are used instead.
type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string
	RedisURL       string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	return &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

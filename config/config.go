package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the client.
type Config struct {
	// BaseURL prefixes relative API paths. Absolute URLs bypass it.
	BaseURL     string
	HTTPTimeout time.Duration

	// Session store selection: "file", "redis" or "memory".
	SessionBackend string
	SessionFile    string
	// SessionPassphrase, when set, encrypts the file store at rest.
	SessionPassphrase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PageSize int
}

// FromEnv returns a Config populated from the environment with sensible
// defaults.
func FromEnv() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return Config{
		BaseURL:     getEnv("API_BASE_URL", "https://real-state-backend-kewm.onrender.com"),
		HTTPTimeout: getEnvDuration("API_TIMEOUT", 30*time.Second),

		SessionBackend:    getEnv("SESSION_BACKEND", "file"),
		SessionFile:       getEnv("SESSION_FILE", home+"/.realtydesk/session.json"),
		SessionPassphrase: os.Getenv("SESSION_PASSPHRASE"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		PageSize: getEnvInt("PAGE_SIZE", 5),
	}
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

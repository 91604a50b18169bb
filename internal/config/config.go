package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ListenAddr string
	ListenPort int

	// Relay
	WebhookURL   string
	RelayTimeout time.Duration

	// Signing
	HMACSecret string
	PullSecret string

	// Registry
	KeyTTL   time.Duration
	RedisURL string

	// Key log
	LogToFile  bool
	KeyLogFile string

	// Request limits
	MaxBodySize int64
	RateLimit   RateLimitConfig
}

// RateLimitConfig holds IP rate limiting settings.
type RateLimitConfig struct {
	Enabled                  bool
	WebhookRequestsPerMinute int
	PullRequestsPerMinute    int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ListenAddr: getEnv("LISTEN_ADDR", "0.0.0.0"),
		ListenPort: getEnvInt("LISTEN_PORT", 3000),

		// Relay (webhook optional: dispatch fails until it is set)
		WebhookURL:   getEnv("DISCORD_WEBHOOK", ""),
		RelayTimeout: getEnvDuration("RELAY_TIMEOUT", 10*time.Second),

		// Empty HMAC_SECRET means permissive signature mode (local testing only)
		HMACSecret: getEnv("HMAC_SECRET", ""),
		PullSecret: getEnv("PULL_SECRET", ""),

		// Registry defaults
		KeyTTL:   getEnvDuration("KEY_TTL", 30*time.Minute),
		RedisURL: getEnv("REDIS_URL", ""),

		// Key log defaults
		LogToFile:  getEnvBool("LOG_TO_FILE", false),
		KeyLogFile: getEnv("KEY_LOG_FILE", "keys.log"),

		// Request limits
		MaxBodySize: int64(getEnvInt("MAX_BODY_SIZE", 65536)),
		RateLimit: RateLimitConfig{
			Enabled:                  getEnvBool("RATE_LIMIT_ENABLED", true),
			WebhookRequestsPerMinute: getEnvInt("WEBHOOK_REQUESTS_PER_MINUTE", 120),
			PullRequestsPerMinute:    getEnvInt("PULL_REQUESTS_PER_MINUTE", 60),
		},
	}

	return cfg, nil
}

// Permissive reports whether signature verification accepts all requests.
func (c *Config) Permissive() bool {
	return c.HMACSecret == ""
}

// HasRedis returns true if a Redis registry backend is configured.
func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "1", "true", "TRUE", "True", "yes":
			return true
		case "0", "false", "FALSE", "False", "no":
			return false
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

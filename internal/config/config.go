package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr         string
	LogLevel         string
	HTTPWriteTimeout time.Duration // image generation routinely takes 10-30s

	// Gemini API
	APIKey             string
	GeminiAPIEndpoint  string // if set, overrides default Gemini API base URL (e.g. http://host.docker.internal:31300/gemini)
	GeminiModelConcept string // text model that writes the image prompt, e.g. gemini-2.5-pro
	GeminiModelImage   string // imagen-* or a native gemini image model

	// Thumbnail output
	ThumbnailWidth  int
	ThumbnailHeight int

	// Free usage
	FreeLimit          int
	QuotaPeriod        string // "" (never resets), daily, weekly, monthly, yearly
	PremiumKeyHash     string // bcrypt hash of the premium access key; empty disables premium
	UpgradeURL         string
	UpgradeLifetimeURL string

	// Kafka (optional usage events)
	KafkaBrokers    []string
	KafkaTopicUsage string
	KafkaGroupUsage string

	// Usage worker
	UsageReportInterval time.Duration
}

// Load loads configuration from .env files (if present) and environment variables
func Load() *Config {
	_ = godotenv.Load(".env", ".env.local")

	return &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPWriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 2*time.Minute),

		APIKey:             getEnv("API_KEY", getEnv("GEMINI_API_KEY", "")),
		GeminiAPIEndpoint:  getEnv("GEMINI_API_ENDPOINT", ""),
		GeminiModelConcept: getEnv("GEMINI_MODEL_CONCEPT", "gemini-2.5-pro"),
		GeminiModelImage:   getEnv("GEMINI_MODEL_IMAGE", "imagen-4.0-generate-001"),

		ThumbnailWidth:  clampMin(getEnvInt("THUMBNAIL_WIDTH", 1280), 1),
		ThumbnailHeight: clampMin(getEnvInt("THUMBNAIL_HEIGHT", 720), 1),

		FreeLimit:          clampMin(getEnvInt("FREE_LIMIT", 3), 0),
		QuotaPeriod:        getEnv("QUOTA_PERIOD", ""),
		PremiumKeyHash:     getEnv("PREMIUM_KEY_HASH", ""),
		UpgradeURL:         getEnv("UPGRADE_URL", "https://www.paypal.me/mohamedbenrouan/5"),
		UpgradeLifetimeURL: getEnv("UPGRADE_LIFETIME_URL", "https://www.paypal.me/mohamedbenrouan/59"),

		KafkaBrokers:    getEnvList("KAFKA_BROKERS"),
		KafkaTopicUsage: getEnv("KAFKA_TOPIC_USAGE", "thumbnails.usage.v1"),
		KafkaGroupUsage: getEnv("KAFKA_GROUP_USAGE", "thumbnails-usage-worker"),

		UsageReportInterval: getEnvDuration("USAGE_REPORT_INTERVAL", time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty entries. Returns nil when unset.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// clampMin returns v if v >= min, otherwise min. Used to ensure config values are in valid range.
func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_ADDR", "API_KEY", "GEMINI_API_KEY", "GEMINI_MODEL_CONCEPT", "GEMINI_MODEL_IMAGE",
		"THUMBNAIL_WIDTH", "THUMBNAIL_HEIGHT", "FREE_LIMIT", "KAFKA_BROKERS", "HTTP_WRITE_TIMEOUT",
		"USAGE_REPORT_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey)
	}
	if cfg.GeminiModelConcept != "gemini-2.5-pro" || cfg.GeminiModelImage != "imagen-4.0-generate-001" {
		t.Errorf("models = %q / %q", cfg.GeminiModelConcept, cfg.GeminiModelImage)
	}
	if cfg.ThumbnailWidth != 1280 || cfg.ThumbnailHeight != 720 {
		t.Errorf("thumbnail size = %dx%d", cfg.ThumbnailWidth, cfg.ThumbnailHeight)
	}
	if cfg.FreeLimit != 3 {
		t.Errorf("FreeLimit = %d, want 3", cfg.FreeLimit)
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("KafkaBrokers = %v, want nil", cfg.KafkaBrokers)
	}
	if cfg.HTTPWriteTimeout != 2*time.Minute {
		t.Errorf("HTTPWriteTimeout = %v", cfg.HTTPWriteTimeout)
	}
	if cfg.UsageReportInterval != time.Minute {
		t.Errorf("UsageReportInterval = %v", cfg.UsageReportInterval)
	}
}

func TestLoad_APIKeyFallback(t *testing.T) {
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	if got := Load().APIKey; got != "gemini-key" {
		t.Errorf("APIKey = %q, want gemini-key", got)
	}

	t.Setenv("API_KEY", "primary-key")
	if got := Load().APIKey; got != "primary-key" {
		t.Errorf("APIKey = %q, want primary-key", got)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("FREE_LIMIT", "-4")
	t.Setenv("THUMBNAIL_WIDTH", "not-a-number")
	t.Setenv("HTTP_WRITE_TIMEOUT", "45s")

	cfg := Load()

	if want := []string{"k1:9092", "k2:9092"}; !reflect.DeepEqual(cfg.KafkaBrokers, want) {
		t.Errorf("KafkaBrokers = %v, want %v", cfg.KafkaBrokers, want)
	}
	if cfg.FreeLimit != 0 {
		t.Errorf("FreeLimit = %d, want clamped 0", cfg.FreeLimit)
	}
	if cfg.ThumbnailWidth != 1280 {
		t.Errorf("ThumbnailWidth = %d, want default on parse error", cfg.ThumbnailWidth)
	}
	if cfg.HTTPWriteTimeout != 45*time.Second {
		t.Errorf("HTTPWriteTimeout = %v", cfg.HTTPWriteTimeout)
	}
}

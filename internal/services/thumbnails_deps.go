package services

import (
	"context"

	"github.com/snappy-loop/thumbnails/internal/llm"
	"github.com/snappy-loop/thumbnails/internal/models"
)

// imageProvider is the subset of llm.Client used by ThumbnailService.
type imageProvider interface {
	HasAPIKey() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImages(ctx context.Context, prompt string, cfg llm.ImageConfig) ([]llm.Image, error)
}

// usageLimiter is the subset of quota.Limiter used by ThumbnailService.
type usageLimiter interface {
	Begin(sessionID string, premium bool) (release func(success bool), usage models.Usage, err error)
}

// UsagePublisher publishes usage events (e.g. to Kafka). May be nil to skip publishing.
type UsagePublisher interface {
	PublishUsage(ctx context.Context, event *models.UsageEvent) error
}

package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/snappy-loop/thumbnails/internal/models"
)

// messageReader is the subset of *kafka.Reader used by Consumer.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// UsageHandler processes usage events
type UsageHandler interface {
	HandleUsage(ctx context.Context, event *models.UsageEvent) error
}

// Consumer reads usage events and hands them to a UsageHandler
type Consumer struct {
	reader  messageReader
	handler UsageHandler

	baseDelay  time.Duration
	maxDelay   time.Duration
	maxRetries int
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(brokers []string, topic, groupID string, handler UsageHandler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1e6,
		CommitInterval: 0, // manual commits
		StartOffset:    kafka.LastOffset,
	})

	log.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Str("group_id", groupID).
		Msg("Kafka consumer initialized")

	return newConsumer(reader, handler)
}

func newConsumer(reader messageReader, handler UsageHandler) *Consumer {
	return &Consumer{
		reader:     reader,
		handler:    handler,
		baseDelay:  time.Second,
		maxDelay:   time.Minute,
		maxRetries: 5,
	}
}

// Start consumes until ctx is cancelled. A message that still fails after
// maxRetries attempts is committed and skipped so it cannot block the partition.
func (c *Consumer) Start(ctx context.Context) error {
	log.Info().Msg("Starting Kafka consumer")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Msg("Failed to fetch message")
			continue
		}

		var event models.UsageEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error().Err(err).Int64("offset", msg.Offset).Msg("Dropping malformed usage event")
			c.commit(ctx, msg)
			continue
		}

		var lastErr error
		for attempt := 0; attempt < c.maxRetries; attempt++ {
			if lastErr = c.handler.HandleUsage(ctx, &event); lastErr == nil {
				break
			}
			log.Warn().
				Err(lastErr).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Int("attempt", attempt+1).
				Msg("Failed to process usage event")
			if attempt == c.maxRetries-1 {
				break
			}

			delay := c.baseDelay * time.Duration(1<<uint(attempt))
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if lastErr != nil {
			log.Error().
				Err(lastErr).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("Usage event failed after all retries - skipping")
		}

		c.commit(ctx, msg)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		log.Error().Err(err).Msg("Failed to commit message")
	}
}

// Close closes the consumer
func (c *Consumer) Close() error {
	log.Info().Msg("Closing Kafka consumer")
	return c.reader.Close()
}

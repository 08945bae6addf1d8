package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/thumbnails/internal/config"
	"github.com/snappy-loop/thumbnails/internal/kafka"
	"github.com/snappy-loop/thumbnails/internal/usage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Thumbnails usage worker")

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal().Msg("KAFKA_BROKERS is required")
	}

	tally := usage.NewTally()
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopicUsage, cfg.KafkaGroupUsage, tally)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Kafka consumer error")
		}
	}()
	go tally.Report(ctx, cfg.UsageReportInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")
	cancel()
	<-done
	if err := consumer.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close consumer")
	}
	log.Info().Msg("Worker exited")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/thumbnails/internal/auth"
	"github.com/snappy-loop/thumbnails/internal/config"
	"github.com/snappy-loop/thumbnails/internal/handlers"
	"github.com/snappy-loop/thumbnails/internal/kafka"
	"github.com/snappy-loop/thumbnails/internal/llm"
	"github.com/snappy-loop/thumbnails/internal/quota"
	"github.com/snappy-loop/thumbnails/internal/services"
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

	log.Info().Msg("Starting Thumbnails API")

	llmClient := llm.NewClient(cfg.APIKey, cfg.GeminiModelConcept, cfg.GeminiModelImage, cfg.GeminiAPIEndpoint)
	defer llmClient.Close()
	if !llmClient.HasAPIKey() {
		log.Warn().Msg("API_KEY not set; generation requests will fail until a key is configured")
	}

	var publisher services.UsagePublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicUsage)
		defer producer.Close()
		publisher = producer
	}

	limiter := quota.NewLimiter(cfg.FreeLimit, cfg.QuotaPeriod)
	thumbnailService := services.NewThumbnailService(llmClient, limiter, publisher, cfg.ThumbnailWidth, cfg.ThumbnailHeight)
	authService := auth.NewService(cfg.PremiumKeyHash)

	var upgradeURLs []string
	for _, u := range []string{cfg.UpgradeURL, cfg.UpgradeLifetimeURL} {
		if u != "" {
			upgradeURLs = append(upgradeURLs, u)
		}
	}
	h := handlers.NewHandler(thumbnailService, limiter, authService, upgradeURLs...)

	r := mux.NewRouter()
	r.Use(authService.Middleware)
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/styles", h.ListStyles).Methods("GET")
	api.HandleFunc("/usage", h.GetUsage).Methods("GET")
	api.HandleFunc("/thumbnails", h.CreateThumbnail).Methods("POST")
	api.HandleFunc("/thumbnails/resize", h.ResizeThumbnail).Methods("POST")
	api.HandleFunc("/thumbnails/ws", h.ThumbnailsWS).Methods("GET")

	// Generation runs two remote calls inside the request, so WriteTimeout is configurable.
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("API exited")
}

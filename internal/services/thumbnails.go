package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/thumbnails/internal/imaging"
	"github.com/snappy-loop/thumbnails/internal/llm"
	"github.com/snappy-loop/thumbnails/internal/models"
	"github.com/snappy-loop/thumbnails/internal/prompt"
)

var (
	// ErrInvalidRequest marks request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyTopic is returned when the topic is blank.
	ErrEmptyTopic = fmt.Errorf("%w: topic is required", ErrInvalidRequest)
)

// imageConfig is the only image output configuration this service requests.
var imageConfig = llm.ImageConfig{
	NumberOfImages: 1,
	OutputMIMEType: "image/jpeg",
	AspectRatio:    "16:9",
}

const missingKeyMessage = "API_KEY environment variable not set. Please select an API key."

// Stage is a step of thumbnail creation reported to progress observers
type Stage string

const (
	StageComposing Stage = "composing"
	StageConcept   Stage = "concept"
	StageImage     Stage = "image"
	StageResizing  Stage = "resizing"
	StageDone      Stage = "done"
)

// ThumbnailService composes prompts, calls the text and image models and resizes the result.
type ThumbnailService struct {
	provider  imageProvider
	limiter   usageLimiter
	publisher UsagePublisher
	width     int
	height    int
}

// NewThumbnailService creates a new ThumbnailService. publisher may be nil.
func NewThumbnailService(provider imageProvider, limiter usageLimiter, publisher UsagePublisher, width, height int) *ThumbnailService {
	return &ThumbnailService{
		provider:  provider,
		limiter:   limiter,
		publisher: publisher,
		width:     width,
		height:    height,
	}
}

// CreateInput is a thumbnail request from one session
type CreateInput struct {
	SessionID string
	Premium   bool
	Topic     string
	Style     string
}

// Create reserves one generation for the session, generates a thumbnail and resizes it
// to the configured size. The reservation is committed only on success.
// observe may be nil.
func (s *ThumbnailService) Create(ctx context.Context, in CreateInput, observe func(Stage)) (*models.Thumbnail, error) {
	if observe == nil {
		observe = func(Stage) {}
	}
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	style, err := models.ParseStyle(in.Style)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	release, usage, err := s.limiter.Begin(in.SessionID, in.Premium)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	started := time.Now()
	log.Info().
		Str("thumbnail_id", id.String()).
		Str("session_id", in.SessionID).
		Str("style", string(style)).
		Int("used", usage.Used).
		Bool("premium", in.Premium).
		Msg("Creating thumbnail")

	thumb, err := s.create(ctx, id, topic, style, observe)
	release(err == nil)
	s.publish(id, in, style, started, err)
	if err != nil {
		log.Error().Err(err).
			Str("thumbnail_id", id.String()).
			Str("kind", string(KindOf(err))).
			Str("problem", string(Classify(err))).
			Msg("Thumbnail creation failed")
		return nil, err
	}

	log.Info().
		Str("thumbnail_id", id.String()).
		Dur("elapsed", time.Since(started)).
		Msg("Thumbnail created")
	return thumb, nil
}

func (s *ThumbnailService) create(ctx context.Context, id uuid.UUID, topic string, style models.Style, observe func(Stage)) (*models.Thumbnail, error) {
	original, err := s.generate(ctx, topic, style, observe)
	if err != nil {
		return nil, err
	}

	observe(StageResizing)
	resized, err := s.Resize(original, s.width, s.height)
	if err != nil {
		return nil, err
	}
	observe(StageDone)

	return &models.Thumbnail{
		ID:        id,
		Topic:     topic,
		Style:     style,
		Width:     s.width,
		Height:    s.height,
		DataURI:   resized,
		Filename:  imaging.DownloadFilename(s.width, s.height, string(style)),
		CreatedAt: time.Now(),
	}, nil
}

// Generate produces a thumbnail for topic in style and returns it as a data URI at the
// image model's native size. It makes exactly one text call followed by one image call;
// nothing is cached. Errors are *GenerationError.
// The URI carries the MIME type the provider reported (image/jpeg when none), so native
// Gemini image models may yield a non-JPEG URI; Create always re-encodes to JPEG.
func (s *ThumbnailService) Generate(ctx context.Context, topic string, style models.Style) (string, error) {
	return s.generate(ctx, topic, style, func(Stage) {})
}

func (s *ThumbnailService) generate(ctx context.Context, topic string, style models.Style, observe func(Stage)) (string, error) {
	if !s.provider.HasAPIKey() {
		return "", &GenerationError{Kind: KindCredentialMissing, Err: errors.New(missingKeyMessage)}
	}

	observe(StageComposing)
	conceptPrompt := prompt.Compose(topic, style)

	observe(StageConcept)
	raw, err := s.provider.GenerateText(ctx, conceptPrompt)
	if err != nil {
		return "", &GenerationError{Kind: KindRemoteCallFailed, Err: err}
	}
	imagePrompt := strings.TrimSpace(raw)
	if imagePrompt == "" {
		log.Warn().Str("style", string(style)).Msg("Concept model returned an empty image prompt")
	}

	observe(StageImage)
	images, err := s.provider.GenerateImages(ctx, imagePrompt, imageConfig)
	if err != nil {
		return "", &GenerationError{Kind: KindRemoteCallFailed, Err: err}
	}
	if len(images) == 0 {
		return "", &GenerationError{Kind: KindNoImageReturned, Err: errors.New("image generation failed or returned no images")}
	}
	if len(images[0].Data) == 0 {
		return "", &GenerationError{Kind: KindEmptyImageData, Err: errors.New("generated image data is empty")}
	}

	mimeType := images[0].MimeType
	if mimeType == "" {
		mimeType = imageConfig.OutputMIMEType
	}
	return imaging.DataURI(mimeType, images[0].Data), nil
}

// Resize scales a data URI image to exactly width x height and re-encodes it as JPEG.
func (s *ThumbnailService) Resize(dataURI string, width, height int) (string, error) {
	return imaging.Resize(dataURI, width, height)
}

func (s *ThumbnailService) publish(id uuid.UUID, in CreateInput, style models.Style, started time.Time, err error) {
	if s.publisher == nil {
		return
	}
	event := &models.UsageEvent{
		ThumbnailID: id,
		SessionID:   in.SessionID,
		Style:       style,
		Status:      "succeeded",
		Premium:     in.Premium,
		DurationMs:  time.Since(started).Milliseconds(),
		CreatedAt:   time.Now(),
	}
	if err != nil {
		event.Status = "failed"
		event.Problem = string(Classify(err))
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.PublishUsage(ctx, event); err != nil {
			log.Warn().Err(err).Str("thumbnail_id", id.String()).Msg("Failed to publish usage event")
		}
	}()
}

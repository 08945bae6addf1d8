package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/thumbnails/internal/auth"
	"github.com/snappy-loop/thumbnails/internal/imaging"
	"github.com/snappy-loop/thumbnails/internal/models"
	"github.com/snappy-loop/thumbnails/internal/prompt"
	"github.com/snappy-loop/thumbnails/internal/quota"
	"github.com/snappy-loop/thumbnails/internal/services"
)

const (
	msgEmptyTopic    = "Please enter a video topic."
	msgAPIKey        = "API Key required. Please select a valid key with billing enabled."
	msgFreeLimit     = "You've reached your free limit! Upgrade to unlock unlimited thumbnail generation."
	maxCreateBodyLen = 64 << 10
	maxResizeBodyLen = 32 << 20
)

// thumbnailService is the subset of services.ThumbnailService used by Handler.
type thumbnailService interface {
	Create(ctx context.Context, in services.CreateInput, observe func(services.Stage)) (*models.Thumbnail, error)
	Resize(dataURI string, width, height int) (string, error)
}

// usageReporter is the subset of quota.Limiter used by Handler.
type usageReporter interface {
	Usage(sessionID string, premium bool) models.Usage
}

// premiumValidator is the subset of auth.Service used by the WebSocket handler.
type premiumValidator interface {
	ValidatePremiumKey(key string) error
}

// Handler contains all HTTP handlers
type Handler struct {
	thumbnails  thumbnailService
	usage       usageReporter
	premium     premiumValidator
	upgradeURLs []string
}

// NewHandler creates a new handler. upgradeURLs are offered when the free limit is reached.
func NewHandler(thumbnails thumbnailService, usage usageReporter, premium premiumValidator, upgradeURLs ...string) *Handler {
	return &Handler{
		thumbnails:  thumbnails,
		usage:       usage,
		premium:     premium,
		upgradeURLs: upgradeURLs,
	}
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListStyles handles GET /v1/styles
func (h *Handler) ListStyles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"styles": prompt.StyleInfos(),
	})
}

// GetUsage handles GET /v1/usage
func (h *Handler) GetUsage(w http.ResponseWriter, r *http.Request) {
	sessionID, err := auth.GetSessionID(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, h.usage.Usage(sessionID, auth.IsPremium(r.Context())))
}

// CreateThumbnail handles POST /v1/thumbnails. With ?download=1 the JPEG itself is returned as an attachment.
func (h *Handler) CreateThumbnail(w http.ResponseWriter, r *http.Request) {
	var req models.CreateThumbnailRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCreateBodyLen)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID, err := auth.GetSessionID(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	thumb, err := h.thumbnails.Create(r.Context(), services.CreateInput{
		SessionID: sessionID,
		Premium:   auth.IsPremium(r.Context()),
		Topic:     req.Topic,
		Style:     req.Style,
	}, nil)
	if err != nil {
		status, resp := h.errorResponse(err)
		writeJSON(w, status, resp)
		return
	}

	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		writeAttachment(w, thumb)
		return
	}
	writeJSON(w, http.StatusCreated, thumb)
}

// ResizeThumbnail handles POST /v1/thumbnails/resize
func (h *Handler) ResizeThumbnail(w http.ResponseWriter, r *http.Request) {
	var req models.ResizeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResizeBodyLen)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.thumbnails.Resize(req.Image, req.Width, req.Height)
	if err != nil {
		if errors.Is(err, imaging.ErrImageDecode) || errors.Is(err, imaging.ErrCanvasUnavailable) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Msg("Failed to resize image")
		writeJSONError(w, http.StatusInternalServerError, "failed to resize image")
		return
	}

	writeJSON(w, http.StatusOK, models.ResizeResponse{Image: out})
}

// errorResponse maps a ThumbnailService error to an HTTP status and body.
func (h *Handler) errorResponse(err error) (int, models.ErrorResponse) {
	switch {
	case errors.Is(err, services.ErrEmptyTopic):
		return http.StatusBadRequest, models.ErrorResponse{Error: msgEmptyTopic}
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest, models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, quota.ErrQuotaExceeded):
		return http.StatusPaymentRequired, models.ErrorResponse{Error: msgFreeLimit, Upgrade: h.upgradeURLs}
	case errors.Is(err, quota.ErrBusy):
		return http.StatusConflict, models.ErrorResponse{Error: err.Error()}
	}

	if services.Classify(err) == services.ProblemCredential {
		return http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   msgAPIKey,
			Problem: string(services.ProblemCredential),
		}
	}
	return http.StatusBadGateway, models.ErrorResponse{
		Error:   err.Error(),
		Problem: string(services.ProblemGeneric),
	}
}

func writeAttachment(w http.ResponseWriter, thumb *models.Thumbnail) {
	mimeType, data, err := imaging.ParseDataURI(thumb.DataURI)
	if err != nil {
		log.Error().Err(err).Str("thumbnail_id", thumb.ID.String()).Msg("Failed to decode thumbnail for download")
		writeJSONError(w, http.StatusInternalServerError, "failed to prepare download")
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+thumb.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Style is a thumbnail visual style
type Style string

const (
	StyleMrBeast     Style = "MrBeast"
	StyleMinimalist  Style = "Minimalist"
	StyleVlog        Style = "Vlog"
	StyleDocumentary Style = "Documentary"
)

// Styles lists every supported style in display order.
var Styles = []Style{StyleMrBeast, StyleMinimalist, StyleVlog, StyleDocumentary}

// ParseStyle matches s against the known style labels, ignoring case.
func ParseStyle(s string) (Style, error) {
	for _, style := range Styles {
		if strings.EqualFold(string(style), strings.TrimSpace(s)) {
			return style, nil
		}
	}
	return "", fmt.Errorf("unknown style %q", s)
}

// StyleInfo is the public description of a style (GET /v1/styles)
type StyleInfo struct {
	ID          Style  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateThumbnailRequest is the body of POST /v1/thumbnails
type CreateThumbnailRequest struct {
	Topic string `json:"topic"`
	Style string `json:"style"`
}

// Thumbnail is a finished, resized thumbnail. Nothing is stored server-side;
// the data URI is the only copy.
type Thumbnail struct {
	ID        uuid.UUID `json:"id"`
	Topic     string    `json:"topic"`
	Style     Style     `json:"style"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	DataURI   string    `json:"image"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// ResizeRequest is the body of POST /v1/thumbnails/resize
type ResizeRequest struct {
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ResizeResponse is returned by POST /v1/thumbnails/resize
type ResizeResponse struct {
	Image string `json:"image"`
}

// Usage reports free-generation usage for a session
type Usage struct {
	SessionID string `json:"session_id"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Premium   bool   `json:"premium"`
}

// UsageEvent is published to Kafka after every finished generation
type UsageEvent struct {
	ThumbnailID uuid.UUID `json:"thumbnail_id"`
	SessionID   string    `json:"session_id"`
	Style       Style     `json:"style"`
	Status      string    `json:"status"`            // succeeded, failed
	Problem     string    `json:"problem,omitempty"` // credential, generic
	Premium     bool      `json:"premium"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error   string   `json:"error"`
	Problem string   `json:"problem,omitempty"`
	Upgrade []string `json:"upgrade,omitempty"`
}

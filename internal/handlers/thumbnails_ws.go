package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/thumbnails/internal/auth"
	"github.com/snappy-loop/thumbnails/internal/models"
	"github.com/snappy-loop/thumbnails/internal/services"
)

const (
	thumbnailsWSReadLimit = 64 << 10
	thumbnailsWSIdle      = 30 * time.Minute
)

var thumbnailsWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// thumbnailsWSInMessage is the JSON shape sent from the client.
type thumbnailsWSInMessage struct {
	Type       string `json:"type"`
	Topic      string `json:"topic"`
	Style      string `json:"style"`
	PremiumKey string `json:"premium_key,omitempty"`
}

// thumbnailsWSOutMessage is the JSON shape sent to the client.
type thumbnailsWSOutMessage struct {
	Type      string            `json:"type"` // progress, result, error
	Stage     services.Stage    `json:"stage,omitempty"`
	Thumbnail *models.Thumbnail `json:"thumbnail,omitempty"`
	Error     string            `json:"error,omitempty"`
	Problem   string            `json:"problem,omitempty"`
	Upgrade   []string          `json:"upgrade,omitempty"`
}

// ThumbnailsWS handles GET /v1/thumbnails/ws: generates thumbnails and streams progress stages.
// Messages on one connection are handled one at a time.
func (h *Handler) ThumbnailsWS(w http.ResponseWriter, r *http.Request) {
	sessionID, err := auth.GetSessionID(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	connPremium := auth.IsPremium(r.Context())

	// Carry a freshly issued session cookie through the upgrade response.
	var respHeader http.Header
	if cookies := w.Header().Values("Set-Cookie"); len(cookies) > 0 {
		respHeader = http.Header{"Set-Cookie": cookies}
	}
	conn, err := thumbnailsWSUpgrader.Upgrade(w, r, respHeader)
	if err != nil {
		log.Warn().Err(err).Msg("thumbnails ws upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(thumbnailsWSReadLimit)
	conn.SetReadDeadline(time.Now().Add(thumbnailsWSIdle))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("thumbnails ws read")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(thumbnailsWSIdle))

		var in thumbnailsWSInMessage
		if err := json.Unmarshal(raw, &in); err != nil {
			_ = writeWSJSON(conn, thumbnailsWSOutMessage{Type: "error", Error: "invalid JSON: " + err.Error()})
			continue
		}
		if in.Type != "generate" {
			_ = writeWSJSON(conn, thumbnailsWSOutMessage{Type: "error", Error: "expected type: generate"})
			continue
		}

		premium := connPremium
		if in.PremiumKey != "" {
			if err := h.premium.ValidatePremiumKey(in.PremiumKey); err != nil {
				_ = writeWSJSON(conn, thumbnailsWSOutMessage{Type: "error", Error: err.Error()})
				continue
			}
			premium = true
		}

		var writeErr error
		thumb, err := h.thumbnails.Create(r.Context(), services.CreateInput{
			SessionID: sessionID,
			Premium:   premium,
			Topic:     in.Topic,
			Style:     in.Style,
		}, func(stage services.Stage) {
			if writeErr == nil {
				writeErr = writeWSJSON(conn, thumbnailsWSOutMessage{Type: "progress", Stage: stage})
			}
		})

		out := thumbnailsWSOutMessage{Type: "result", Thumbnail: thumb}
		if err != nil {
			_, resp := h.errorResponse(err)
			out = thumbnailsWSOutMessage{Type: "error", Error: resp.Error, Problem: resp.Problem, Upgrade: resp.Upgrade}
		}
		if writeErr != nil {
			log.Debug().Err(writeErr).Msg("thumbnails ws write")
			return
		}
		if err := writeWSJSON(conn, out); err != nil {
			log.Debug().Err(err).Msg("thumbnails ws write")
			return
		}
	}
}

func writeWSJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	return conn.WriteJSON(v)
}

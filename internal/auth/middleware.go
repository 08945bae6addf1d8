package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// SessionIDKey is the context key for the browser session ID
	SessionIDKey ContextKey = "session_id"
	// PremiumKey is the context key set to true for requests carrying a valid premium key
	PremiumKey ContextKey = "premium"
)

// SessionCookie holds the anonymous session ID used for free-usage accounting.
const SessionCookie = "thumb_session"

var (
	errPremiumDisabled = errors.New("premium access is not enabled")
	errInvalidKey      = errors.New("invalid premium key")
)

// Service handles session identity and premium keys
type Service struct {
	premiumKeyHash []byte
}

// NewService creates a new auth service. premiumKeyHash is a bcrypt hash; empty disables premium keys.
func NewService(premiumKeyHash string) *Service {
	return &Service{premiumKeyHash: []byte(premiumKeyHash)}
}

// Middleware assigns a session ID (issuing the cookie when missing) and, when an
// Authorization header is present, requires it to carry a valid premium key.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := sessionFromRequest(r)
		if sessionID == "" {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)

		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}
			if err := s.ValidatePremiumKey(parts[1]); err != nil {
				log.Debug().Err(err).Str("session_id", sessionID).Msg("Premium key rejected")
				writeJSONError(w, http.StatusUnauthorized, err.Error())
				return
			}
			ctx = context.WithValue(ctx, PremiumKey, true)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidatePremiumKey checks key against the configured bcrypt hash.
func (s *Service) ValidatePremiumKey(key string) error {
	if len(s.premiumKeyHash) == 0 {
		return errPremiumDisabled
	}
	if key == "" {
		return errInvalidKey
	}
	if err := bcrypt.CompareHashAndPassword(s.premiumKeyHash, []byte(key)); err != nil {
		return errInvalidKey
	}
	return nil
}

// GetSessionID retrieves the session ID from context
func GetSessionID(ctx context.Context) (string, error) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("session id not found in context")
	}
	return sessionID, nil
}

// IsPremium reports whether the request carried a valid premium key
func IsPremium(ctx context.Context) bool {
	premium, _ := ctx.Value(PremiumKey).(bool)
	return premium
}

func sessionFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

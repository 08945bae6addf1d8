package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func hashKey(t *testing.T, key string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

// captured records what the wrapped handler saw.
type captured struct {
	called    bool
	sessionID string
	premium   bool
}

func serve(s *Service, req *http.Request) (*httptest.ResponseRecorder, *captured) {
	c := &captured{}
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.sessionID, _ = GetSessionID(r.Context())
		c.premium = IsPremium(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, c
}

func TestMiddleware_IssuesSessionCookie(t *testing.T) {
	rec, c := serve(NewService(""), httptest.NewRequest(http.MethodGet, "/v1/usage", nil))

	if !c.called {
		t.Fatal("handler not called")
	}
	if _, err := uuid.Parse(c.sessionID); err != nil {
		t.Errorf("session id %q is not a uuid", c.sessionID)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || cookies[0].Value != c.sessionID {
		t.Errorf("cookies = %v", cookies)
	}
	if c.premium {
		t.Error("premium without key")
	}
}

func TestMiddleware_ReusesValidCookie(t *testing.T) {
	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})

	rec, c := serve(NewService(""), req)
	if c.sessionID != id {
		t.Errorf("session = %q, want %q", c.sessionID, id)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("cookie re-issued for valid session")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	_, c = serve(NewService(""), req)
	if c.sessionID == "forged" {
		t.Error("non-uuid session cookie accepted")
	}
}

func TestMiddleware_PremiumKey(t *testing.T) {
	svc := NewService(hashKey(t, "lifetime-123"))

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantPremium bool
	}{
		{"valid key", "Bearer lifetime-123", http.StatusOK, true},
		{"lowercase scheme", "bearer lifetime-123", http.StatusOK, true},
		{"wrong key", "Bearer nope", http.StatusUnauthorized, false},
		{"bad format", "lifetime-123", http.StatusUnauthorized, false},
		{"empty key", "Bearer ", http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/thumbnails", nil)
			req.Header.Set("Authorization", tt.header)
			rec, c := serve(svc, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if c.premium != tt.wantPremium {
				t.Errorf("premium = %v, want %v", c.premium, tt.wantPremium)
			}
			if tt.wantStatus != http.StatusOK && c.called {
				t.Error("handler called for rejected key")
			}
		})
	}
}

func TestValidatePremiumKey_Disabled(t *testing.T) {
	if err := NewService("").ValidatePremiumKey("anything"); err != errPremiumDisabled {
		t.Errorf("err = %v, want errPremiumDisabled", err)
	}
}

// Package quota tracks free thumbnail generations per browser session. State lives in
// memory only and is lost on restart.
package quota

import (
	"errors"
	"sync"
	"time"

	"github.com/snappy-loop/thumbnails/internal/models"
)

var (
	// ErrQuotaExceeded is returned when a free session has used all its generations.
	ErrQuotaExceeded = errors.New("free generation limit reached")
	// ErrBusy is returned when the session already has a generation in flight.
	ErrBusy = errors.New("a thumbnail is already being generated for this session")
)

type session struct {
	used            int
	inFlight        bool
	periodStartedAt time.Time
}

// Limiter handles free-usage accounting
type Limiter struct {
	mu       sync.Mutex
	limit    int
	period   time.Duration // zero: never reset
	sessions map[string]*session
	now      func() time.Time

	lastSweep time.Time
}

// NewLimiter creates a limiter allowing limit successful generations per session and period.
func NewLimiter(limit int, period string) *Limiter {
	return &Limiter{
		limit:    limit,
		period:   getPeriodDuration(period),
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Begin reserves one generation for sessionID. Premium sessions are never limited but are
// still serialized. The returned release must be called exactly once: release(true) keeps
// the reservation, release(false) refunds it.
func (l *Limiter) Begin(sessionID string, premium bool) (func(success bool), models.Usage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked()
	s := l.sessionLocked(sessionID)
	if s.inFlight {
		return nil, l.usageLocked(sessionID, s, premium), ErrBusy
	}
	if !premium && s.used >= l.limit {
		return nil, l.usageLocked(sessionID, s, premium), ErrQuotaExceeded
	}

	s.inFlight = true
	if !premium {
		s.used++
	}
	usage := l.usageLocked(sessionID, s, premium)

	var once sync.Once
	release := func(success bool) {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			s.inFlight = false
			if !success && !premium && s.used > 0 {
				s.used--
			}
		})
	}
	return release, usage, nil
}

// Usage reports the session's current counters. It never creates state: an unknown
// session reports zero usage.
func (l *Limiter) Usage(sessionID string, premium bool) models.Usage {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.sessions[sessionID]
	if !ok || l.expiredLocked(s) {
		return l.usageLocked(sessionID, &session{}, premium)
	}
	return l.usageLocked(sessionID, s, premium)
}

// sessionLocked returns the session for sessionID, creating it or starting a new period as needed.
func (l *Limiter) sessionLocked(sessionID string) *session {
	now := l.now()
	s, ok := l.sessions[sessionID]
	if !ok {
		s = &session{periodStartedAt: now}
		l.sessions[sessionID] = s
		return s
	}
	if l.expiredLocked(s) {
		s.used = 0
		s.periodStartedAt = now
	}
	return s
}

func (l *Limiter) expiredLocked(s *session) bool {
	return l.period > 0 && !s.inFlight && l.now().Sub(s.periodStartedAt) > l.period
}

// sweepLocked drops idle sessions whose period has expired, at most once per period.
// Without a period, counters never reset and nothing is evicted.
func (l *Limiter) sweepLocked() {
	if l.period <= 0 {
		return
	}
	now := l.now()
	if now.Sub(l.lastSweep) < l.period {
		return
	}
	l.lastSweep = now
	for id, s := range l.sessions {
		if l.expiredLocked(s) {
			delete(l.sessions, id)
		}
	}
}

func (l *Limiter) usageLocked(sessionID string, s *session, premium bool) models.Usage {
	remaining := l.limit - s.used
	if remaining < 0 {
		remaining = 0
	}
	return models.Usage{
		SessionID: sessionID,
		Used:      s.used,
		Limit:     l.limit,
		Remaining: remaining,
		Premium:   premium,
	}
}

func getPeriodDuration(period string) time.Duration {
	switch period {
	case "daily":
		return 24 * time.Hour
	case "weekly":
		return 7 * 24 * time.Hour
	case "monthly":
		return 30 * 24 * time.Hour
	case "yearly":
		return 365 * 24 * time.Hour
	default:
		return 0
	}
}

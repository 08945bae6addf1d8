// Package usage aggregates thumbnail usage events read from Kafka.
package usage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/thumbnails/internal/models"
)

// StyleStats counts generations for one style.
type StyleStats struct {
	Style           models.Style `json:"style"`
	Succeeded       int          `json:"succeeded"`
	Failed          int          `json:"failed"`
	CredentialFails int          `json:"credential_failures"`
	AvgDurationMs   int64        `json:"avg_duration_ms"`
}

// Snapshot is a point-in-time copy of the tally.
type Snapshot struct {
	Sessions int          `json:"sessions"`
	Premium  int          `json:"premium_generations"`
	Styles   []StyleStats `json:"styles"`
}

type styleCounter struct {
	succeeded, failed, credential int
	totalDurationMs               int64
}

// Tally implements kafka.UsageHandler. Events are counted once per thumbnail ID,
// so redelivered messages do not inflate the totals.
type Tally struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	sessions map[string]struct{}
	premium  int
	styles   map[models.Style]*styleCounter
}

// NewTally creates an empty tally
func NewTally() *Tally {
	return &Tally{
		seen:     make(map[string]struct{}),
		sessions: make(map[string]struct{}),
		styles:   make(map[models.Style]*styleCounter),
	}
}

// HandleUsage records one usage event.
func (t *Tally) HandleUsage(ctx context.Context, event *models.UsageEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := event.ThumbnailID.String()
	if _, dup := t.seen[id]; dup {
		return nil
	}
	t.seen[id] = struct{}{}
	t.sessions[event.SessionID] = struct{}{}
	if event.Premium {
		t.premium++
	}

	c := t.styles[event.Style]
	if c == nil {
		c = &styleCounter{}
		t.styles[event.Style] = c
	}
	switch event.Status {
	case "succeeded":
		c.succeeded++
		c.totalDurationMs += event.DurationMs
	default:
		c.failed++
		if event.Problem == "credential" {
			c.credential++
		}
	}
	return nil
}

// Snapshot returns the current counts, styles sorted by name.
func (t *Tally) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{Sessions: len(t.sessions), Premium: t.premium}
	for style, c := range t.styles {
		s := StyleStats{
			Style:           style,
			Succeeded:       c.succeeded,
			Failed:          c.failed,
			CredentialFails: c.credential,
		}
		if c.succeeded > 0 {
			s.AvgDurationMs = c.totalDurationMs / int64(c.succeeded)
		}
		snap.Styles = append(snap.Styles, s)
	}
	sort.Slice(snap.Styles, func(i, j int) bool { return snap.Styles[i].Style < snap.Styles[j].Style })
	return snap
}

// Report logs the current snapshot every interval until ctx is done.
func (t *Tally) Report(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.logSnapshot()
			return
		case <-ticker.C:
			t.logSnapshot()
		}
	}
}

func (t *Tally) logSnapshot() {
	snap := t.Snapshot()
	for _, s := range snap.Styles {
		log.Info().
			Str("style", string(s.Style)).
			Int("succeeded", s.Succeeded).
			Int("failed", s.Failed).
			Int("credential_failures", s.CredentialFails).
			Int64("avg_duration_ms", s.AvgDurationMs).
			Msg("Thumbnail usage")
	}
	log.Info().Int("sessions", snap.Sessions).Int("premium_generations", snap.Premium).Msg("Usage totals")
}

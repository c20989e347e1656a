package chat

import (
	"time"

	"github.com/kamandenj/linkup_social/models"
)

// Message visibility is never stored: it is recomputed from
// (private, expires_at, clock) on every read, so the read paths and the
// sweeper cannot disagree about what is expired.

type State int

const (
	// StateActive: visible to every read path.
	StateActive State = iota
	// StateExpired: logically gone; awaiting physical reclamation.
	StateExpired
)

// DefaultTTL applies to private messages sent without an explicit TTL.
const DefaultTTL = 24 * time.Hour

// MessageState computes a message's lifecycle state at the given instant.
// Non-private messages never expire.
func MessageState(m *models.Message, now time.Time) State {
	if !m.Private || m.ExpiresAt == nil {
		return StateActive
	}
	if now.Before(*m.ExpiresAt) {
		return StateActive
	}
	return StateExpired
}

// ExpiryFor stamps the visibility window on send. ttlMinutes <= 0 selects
// the default window.
func ExpiryFor(private bool, ttlMinutes int, now time.Time) *time.Time {
	if !private {
		return nil
	}
	var expires time.Time
	if ttlMinutes > 0 {
		expires = now.Add(time.Duration(ttlMinutes) * time.Minute)
	} else {
		expires = now.Add(DefaultTTL)
	}
	return &expires
}

// Visible filters a message sequence down to what a reader may observe at
// the given instant, preserving send order.
func Visible(msgs []models.Message, now time.Time) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if MessageState(&m, now) == StateActive {
			out = append(out, m)
		}
	}
	return out
}

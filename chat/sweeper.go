package chat

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/models"
)

// Sweeper physically reclaims what the lifecycle computation already hides:
// expired private messages, and every message of a chat whose wipe_at has
// passed. It runs as a recurring job; a tick that fails on one chat moves
// on to the next, and whatever it missed is still matched by the expiry
// predicate on the following tick.
type Sweeper struct {
	store Store
	now   func() time.Time
}

func NewSweeper(store Store) *Sweeper {
	return &Sweeper{store: store, now: time.Now}
}

// Run executes one tick. Signature fits cron.AddFunc; the cron schedule in
// main wraps it with SkipIfStillRunning so ticks never overlap.
func (s *Sweeper) Run() {
	s.Tick(context.Background())
}

// Tick reclaims in two independent scans. Deletions are keyed by the
// message ids the scan observed, so a message appended between the scan
// and the delete cannot be swept away, and a tick that finds nothing
// expired writes nothing at all.
func (s *Sweeper) Tick(ctx context.Context) {
	now := s.now()

	expired, err := s.store.ExpiredMessages(ctx, now)
	if err != nil {
		log.Printf("Error scanning for expired messages: %v", err)
	} else {
		for chatID, ids := range groupByChat(expired) {
			if err := s.store.DeleteMessages(ctx, chatID, ids); err != nil {
				log.Printf("Error reclaiming expired messages in chat %s: %v", chatID, err)
			}
		}
	}

	due, err := s.store.WipeDue(ctx, now)
	if err != nil {
		log.Printf("Error scanning for wipe-due chats: %v", err)
		return
	}
	for _, chatID := range due {
		// The chat record survives the wipe; only its messages go.
		if err := s.store.ClearMessages(ctx, chatID); err != nil {
			log.Printf("Error wiping chat %s: %v", chatID, err)
		}
	}
}

func groupByChat(expired []models.Message) map[uuid.UUID][]uuid.UUID {
	byChat := make(map[uuid.UUID][]uuid.UUID)
	for _, m := range expired {
		byChat[m.ChatID] = append(byChat[m.ChatID], m.ID)
	}
	return byChat
}

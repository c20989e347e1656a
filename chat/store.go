package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/models"
)

// Store is the persistence contract shared by the service and the sweeper.
//
// Removal operations are keyed by message identity, never expressed as a
// wholesale replacement of a chat's message list: a message appended after
// a caller read the list can therefore never be clobbered by that caller's
// write. ClearMessages is the one deliberate exception; it implements
// "clear everything", including anything appended concurrently.
//
// Every mutation bumps the owning chat's last-modified timestamp.
type Store interface {
	// FindByPair returns the chat between two users, participants loaded.
	// Symmetric in its arguments. apperrors.CodeNotFound when absent.
	FindByPair(ctx context.Context, a, b uuid.UUID) (*models.Chat, error)
	// Create makes the chat for a pair. apperrors.CodeAlreadyExists when a
	// chat for that pair (in either order) exists.
	Create(ctx context.Context, a, b uuid.UUID) (*models.Chat, error)
	// Delete hard-deletes a chat and all of its messages.
	Delete(ctx context.Context, chatID uuid.UUID) error
	// Save persists in-place chat edits (wipe_at).
	Save(ctx context.Context, c *models.Chat) error

	// Messages returns a chat's full stored message sequence in send order.
	Messages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error)
	// AppendMessage atomically appends; concurrent appends both survive.
	AppendMessage(ctx context.Context, m *models.Message) error
	// SaveMessage persists in-place message edits (content, file, seen).
	SaveMessage(ctx context.Context, m *models.Message) error
	// DeleteMessages removes exactly the identified messages of a chat.
	// Missing ids are not an error (reclamation is idempotent).
	DeleteMessages(ctx context.Context, chatID uuid.UUID, ids []uuid.UUID) error
	// ClearMessages empties a chat's message list.
	ClearMessages(ctx context.Context, chatID uuid.UUID) error

	// ExpiredMessages returns every private message whose expires_at is at
	// or before cutoff, across all chats. Only ID, ChatID and ExpiresAt are
	// guaranteed populated.
	ExpiredMessages(ctx context.Context, cutoff time.Time) ([]models.Message, error)
	// WipeDue returns the ids of chats whose wipe_at is at or before cutoff.
	WipeDue(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)

	// ChatsOf returns the ids of every chat the user participates in.
	ChatsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// RemoveParticipant detaches a user from a chat and reports how many
	// participants remain.
	RemoveParticipant(ctx context.Context, chatID, userID uuid.UUID) (remaining int, err error)
}

package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/apperrors"
	"github.com/kamandenj/linkup_social/models"
	"github.com/kamandenj/linkup_social/utils"
)

// Service is the application-facing chat API. Every operation takes the
// conversation's participant pair; callers are resolved and
// connection-checked before they get here. Reads consult the lifecycle
// computation so an expired message is invisible even before the sweeper
// has reclaimed it.
type Service struct {
	store  Store
	detect func([]byte) (string, error)
	now    func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store:  store,
		detect: utils.DetectFileType,
		now:    time.Now,
	}
}

// Start creates the chat for a pair. Starting an existing chat is a
// conflict; load it instead.
func (s *Service) Start(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	if a == uuid.Nil || b == uuid.Nil || a == b {
		return nil, apperrors.InvalidArg("a chat needs two distinct participants")
	}
	return s.store.Create(ctx, a, b)
}

// Load returns the chat and its currently visible messages.
func (s *Service) Load(ctx context.Context, a, b uuid.UUID) (*models.Chat, []models.Message, error) {
	chat, err := s.store.FindByPair(ctx, a, b)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := s.store.Messages(ctx, chat.ID)
	if err != nil {
		return nil, nil, err
	}
	return chat, Visible(msgs, s.now()), nil
}

// Delete hard-deletes the chat and everything in it.
func (s *Service) Delete(ctx context.Context, a, b uuid.UUID) error {
	chat, err := s.store.FindByPair(ctx, a, b)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, chat.ID)
}

// Send appends a message to the pair's chat. At least one of content and
// file is required. A private message gets an expiry window: ttlMinutes
// from now when given, otherwise the default 24 hours.
func (s *Service) Send(ctx context.Context, a, b, sender uuid.UUID, content string, file []byte, private bool, ttlMinutes int) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" && len(file) == 0 {
		return nil, apperrors.InvalidArg("message content or file must be provided")
	}

	chat, err := s.store.FindByPair(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if !isParticipant(chat, sender) {
		return nil, apperrors.Forbidden("sender is not a participant of this chat")
	}

	var fileType string
	if len(file) > 0 {
		fileType, err = s.detect(file)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	msg := models.Message{
		ID:        uuid.New(),
		ChatID:    chat.ID,
		SenderID:  sender,
		Content:   content,
		File:      file,
		FileType:  fileType,
		Private:   private,
		ExpiresAt: ExpiryFor(private, ttlMinutes, now),
		CreatedAt: now,
	}
	if err := s.store.AppendMessage(ctx, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MostRecent returns the newest visible message of the chat.
func (s *Service) MostRecent(ctx context.Context, a, b uuid.UUID) (*models.Message, error) {
	_, msgs, err := s.Load(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, apperrors.NotFound("no messages found in the chat")
	}
	return &msgs[len(msgs)-1], nil
}

// ListAll returns every visible message in send order.
func (s *Service) ListAll(ctx context.Context, a, b uuid.UUID) ([]models.Message, error) {
	_, msgs, err := s.Load(ctx, a, b)
	return msgs, err
}

// DeleteMessage removes one message by identity. Any participant may
// delete any message. An already-expired message reads as absent.
func (s *Service) DeleteMessage(ctx context.Context, a, b, messageID uuid.UUID) error {
	chat, msgs, err := s.Load(ctx, a, b)
	if err != nil {
		return err
	}
	if findMessage(msgs, messageID) == nil {
		return apperrors.NotFound("message not found")
	}
	return s.store.DeleteMessages(ctx, chat.ID, []uuid.UUID{messageID})
}

// EditMessage replaces a message's content and/or file in place. Replacing
// the file re-sniffs its type.
func (s *Service) EditMessage(ctx context.Context, a, b, messageID uuid.UUID, content *string, file []byte) (*models.Message, error) {
	_, msgs, err := s.Load(ctx, a, b)
	if err != nil {
		return nil, err
	}
	msg := findMessage(msgs, messageID)
	if msg == nil {
		return nil, apperrors.NotFound("message not found")
	}

	if content != nil {
		msg.Content = strings.TrimSpace(*content)
	}
	if len(file) > 0 {
		fileType, err := s.detect(file)
		if err != nil {
			return nil, err
		}
		msg.File = file
		msg.FileType = fileType
	}
	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkSeen flags every visible message sent to the reader as seen and
// returns how many were flagged.
func (s *Service) MarkSeen(ctx context.Context, a, b, reader uuid.UUID) (int, error) {
	chat, msgs, err := s.Load(ctx, a, b)
	if err != nil {
		return 0, err
	}
	if !isParticipant(chat, reader) {
		return 0, apperrors.Forbidden("reader is not a participant of this chat")
	}

	seen := 0
	for i := range msgs {
		if msgs[i].SenderID == reader || msgs[i].Seen {
			continue
		}
		msgs[i].Seen = true
		if err := s.store.SaveMessage(ctx, &msgs[i]); err != nil {
			return seen, err
		}
		seen++
	}
	return seen, nil
}

// ClearAll empties the chat's message list. This intentionally discards
// anything appended concurrently; that is what "clear everything" means.
func (s *Service) ClearAll(ctx context.Context, a, b uuid.UUID) error {
	chat, err := s.store.FindByPair(ctx, a, b)
	if err != nil {
		return err
	}
	return s.store.ClearMessages(ctx, chat.ID)
}

// ScheduleWipe sets the instant after which the sweeper clears the whole
// chat. The chat record itself survives the wipe.
func (s *Service) ScheduleWipe(ctx context.Context, a, b uuid.UUID, at time.Time) error {
	chat, err := s.store.FindByPair(ctx, a, b)
	if err != nil {
		return err
	}
	chat.WipeAt = &at
	return s.store.Save(ctx, chat)
}

// Search runs a whole-word keyword search over the chat's visible
// messages. File bytes are stripped from the results.
func (s *Service) Search(ctx context.Context, a, b uuid.UUID, query string) ([]models.Message, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.InvalidArg("search query cannot be empty")
	}
	_, msgs, err := s.Load(ctx, a, b)
	if err != nil {
		return nil, err
	}
	matches := searchMessages(msgs, query)
	for i := range matches {
		matches[i].File = nil
	}
	return matches, nil
}

// PruneUser detaches a user from every chat they participate in, deleting
// any chat that ends up with no participants at all. Called on account
// deletion. A failure on one chat does not stop the others.
func (s *Service) PruneUser(ctx context.Context, userID uuid.UUID) error {
	chatIDs, err := s.store.ChatsOf(ctx, userID)
	if err != nil {
		return err
	}
	for _, chatID := range chatIDs {
		remaining, err := s.store.RemoveParticipant(ctx, chatID, userID)
		if err != nil {
			log.Printf("Error pruning user %s from chat %s: %v", userID, chatID, err)
			continue
		}
		if remaining == 0 {
			if err := s.store.Delete(ctx, chatID); err != nil {
				log.Printf("Error deleting emptied chat %s: %v", chatID, err)
			}
		}
	}
	return nil
}

func isParticipant(c *models.Chat, userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

func findMessage(msgs []models.Message, id uuid.UUID) *models.Message {
	for i := range msgs {
		if msgs[i].ID == id {
			return &msgs[i]
		}
	}
	return nil
}

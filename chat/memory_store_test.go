package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/apperrors"
	"github.com/kamandenj/linkup_social/models"
)

// memStore is an in-memory Store for exercising the service and sweeper
// without a database. afterExpiredScan fires between the sweeper's scan
// and its deletes, which is exactly where the append-versus-sweep race
// lives; failDelete forces per-chat reclamation errors.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	chats map[uuid.UUID]*memChat

	afterExpiredScan func()
	failDelete       map[uuid.UUID]bool
}

type memChat struct {
	chat models.Chat
	msgs []models.Message
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]*models.User),
		chats:      make(map[uuid.UUID]*memChat),
		failDelete: make(map[uuid.UUID]bool),
	}
}

func (s *memStore) addUser(username string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: uuid.New(), Username: username}
	s.users[u.ID] = u
	return u.ID
}

func (s *memStore) pairOf(mc *memChat, a, b uuid.UUID) bool {
	if len(mc.chat.Participants) != 2 {
		return false
	}
	p0, p1 := mc.chat.Participants[0].ID, mc.chat.Participants[1].ID
	return (p0 == a && p1 == b) || (p0 == b && p1 == a)
}

func (s *memStore) findByPairLocked(a, b uuid.UUID) *memChat {
	for _, mc := range s.chats {
		if s.pairOf(mc, a, b) {
			return mc
		}
	}
	return nil
}

func (s *memStore) FindByPair(_ context.Context, a, b uuid.UUID) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mc := s.findByPairLocked(a, b)
	if mc == nil {
		return nil, apperrors.NotFound("chat not found")
	}
	c := mc.chat
	return &c, nil
}

func (s *memStore) Create(_ context.Context, a, b uuid.UUID) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByPairLocked(a, b) != nil {
		return nil, apperrors.AlreadyExists("chat already started")
	}
	userA, okA := s.users[a]
	userB, okB := s.users[b]
	if !okA || !okB {
		return nil, apperrors.NotFound("participant not found")
	}
	mc := &memChat{chat: models.Chat{
		ID:           uuid.New(),
		Participants: []*models.User{userA, userB},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}}
	s.chats[mc.chat.ID] = mc
	c := mc.chat
	return &c, nil
}

func (s *memStore) Delete(_ context.Context, chatID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chatID]; !ok {
		return apperrors.NotFound("chat not found")
	}
	delete(s.chats, chatID)
	return nil
}

func (s *memStore) Save(_ context.Context, c *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mc, ok := s.chats[c.ID]
	if !ok {
		return apperrors.NotFound("chat not found")
	}
	participants := mc.chat.Participants
	mc.chat = *c
	mc.chat.Participants = participants
	mc.chat.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) Messages(_ context.Context, chatID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mc, ok := s.chats[chatID]
	if !ok {
		return nil, apperrors.NotFound("chat not found")
	}
	out := make([]models.Message, len(mc.msgs))
	copy(out, mc.msgs)
	return out, nil
}

func (s *memStore) AppendMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mc, ok := s.chats[m.ChatID]
	if !ok {
		return apperrors.NotFound("chat not found")
	}
	mc.msgs = append(mc.msgs, *m)
	mc.chat.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) SaveMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mc, ok := s.chats[m.ChatID]
	if !ok {
		return apperrors.NotFound("chat not found")
	}
	for i := range mc.msgs {
		if mc.msgs[i].ID == m.ID {
			mc.msgs[i] = *m
			mc.chat.UpdatedAt = time.Now()
			return nil
		}
	}
	return apperrors.NotFound("message not found")
}

func (s *memStore) DeleteMessages(_ context.Context, chatID uuid.UUID, ids []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[chatID] {
		return apperrors.Internal("forced delete failure", errors.New("boom"))
	}
	mc, ok := s.chats[chatID]
	if !ok {
		return apperrors.NotFound("chat not found")
	}
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := mc.msgs[:0]
	for _, m := range mc.msgs {
		if !drop[m.ID] {
			kept = append(kept, m)
		}
	}
	mc.msgs = kept
	mc.chat.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) ClearMessages(_ context.Context, chatID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mc, ok := s.chats[chatID]
	if !ok {
		return apperrors.NotFound("chat not found")
	}
	mc.msgs = nil
	mc.chat.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) ExpiredMessages(_ context.Context, cutoff time.Time) ([]models.Message, error) {
	s.mu.Lock()
	var expired []models.Message
	for _, mc := range s.chats {
		for _, m := range mc.msgs {
			if m.Private && m.ExpiresAt != nil && !m.ExpiresAt.After(cutoff) {
				expired = append(expired, models.Message{ID: m.ID, ChatID: m.ChatID, ExpiresAt: m.ExpiresAt})
			}
		}
	}
	s.mu.Unlock()
	if s.afterExpiredScan != nil {
		s.afterExpiredScan()
	}
	return expired, nil
}

func (s *memStore) WipeDue(_ context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []uuid.UUID
	for id, mc := range s.chats {
		if mc.chat.WipeAt != nil && !mc.chat.WipeAt.After(cutoff) {
			due = append(due, id)
		}
	}
	return due, nil
}

func (s *memStore) ChatsOf(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for id, mc := range s.chats {
		for _, p := range mc.chat.Participants {
			if p.ID == userID {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}

func (s *memStore) RemoveParticipant(_ context.Context, chatID, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mc, ok := s.chats[chatID]
	if !ok {
		return 0, apperrors.NotFound("chat not found")
	}
	kept := mc.chat.Participants[:0]
	for _, p := range mc.chat.Participants {
		if p.ID != userID {
			kept = append(kept, p)
		}
	}
	mc.chat.Participants = kept
	mc.chat.UpdatedAt = time.Now()
	return len(kept), nil
}

// chatByID exposes the stored chat record for assertions and setup that
// do not go through the pair lookup.
func (s *memStore) chatByID(chatID uuid.UUID) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mc, ok := s.chats[chatID]
	if !ok {
		return nil, apperrors.NotFound("chat not found")
	}
	c := mc.chat
	return &c, nil
}

// messageCount reports the stored (not filtered) size of a chat's list.
func (s *memStore) messageCount(chatID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mc, ok := s.chats[chatID]; ok {
		return len(mc.msgs)
	}
	return 0
}

func (s *memStore) chatExists(chatID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chats[chatID]
	return ok
}

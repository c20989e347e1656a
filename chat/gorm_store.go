package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/apperrors"
	"github.com/kamandenj/linkup_social/models"
	"gorm.io/gorm"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByPair(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.WithContext(ctx).
		Joins("JOIN chat_participants cp1 ON cp1.chat_id = chats.id AND cp1.user_id = ?", a).
		Joins("JOIN chat_participants cp2 ON cp2.chat_id = chats.id AND cp2.user_id = ?", b).
		Preload("Participants").
		First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("chat not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load chat", err)
	}
	return &chat, nil
}

func (s *GormStore) Create(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	if _, err := s.FindByPair(ctx, a, b); err == nil {
		return nil, apperrors.AlreadyExists("chat already started")
	} else if !apperrors.Is(err, apperrors.CodeNotFound) {
		return nil, err
	}

	var userA, userB models.User
	if err := s.db.WithContext(ctx).First(&userA, "id = ?", a).Error; err != nil {
		return nil, apperrors.NotFound("participant not found")
	}
	if err := s.db.WithContext(ctx).First(&userB, "id = ?", b).Error; err != nil {
		return nil, apperrors.NotFound("participant not found")
	}

	chat := models.Chat{Participants: []*models.User{&userA, &userB}}
	if err := s.db.WithContext(ctx).Create(&chat).Error; err != nil {
		return nil, apperrors.Internal("failed to create chat", err)
	}
	return &chat, nil
}

func (s *GormStore) Delete(ctx context.Context, chatID uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM chat_participants WHERE chat_id = ?", chatID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Chat{}, "id = ?", chatID).Error
	})
	if err != nil {
		return apperrors.Internal("failed to delete chat", err)
	}
	return nil
}

func (s *GormStore) Save(ctx context.Context, c *models.Chat) error {
	if err := s.db.WithContext(ctx).Omit("Participants", "Messages").Save(c).Error; err != nil {
		return apperrors.Internal("failed to save chat", err)
	}
	return nil
}

func (s *GormStore) Messages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at asc, id asc").
		Find(&msgs).Error
	if err != nil {
		return nil, apperrors.Internal("failed to fetch messages", err)
	}
	return msgs, nil
}

func (s *GormStore) AppendMessage(ctx context.Context, m *models.Message) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperrors.Internal("failed to save message", err)
	}
	s.touch(ctx, m.ChatID)
	return nil
}

func (s *GormStore) SaveMessage(ctx context.Context, m *models.Message) error {
	if err := s.db.WithContext(ctx).Omit("Sender").Save(m).Error; err != nil {
		return apperrors.Internal("failed to save message", err)
	}
	s.touch(ctx, m.ChatID)
	return nil
}

// DeleteMessages targets rows by identity, so a message appended after the
// caller's read is structurally impossible to drop here.
func (s *GormStore) DeleteMessages(ctx context.Context, chatID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND id IN ?", chatID, ids).
		Delete(&models.Message{}).Error
	if err != nil {
		return apperrors.Internal("failed to delete messages", err)
	}
	s.touch(ctx, chatID)
	return nil
}

func (s *GormStore) ClearMessages(ctx context.Context, chatID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&models.Message{}).Error
	if err != nil {
		return apperrors.Internal("failed to clear messages", err)
	}
	s.touch(ctx, chatID)
	return nil
}

func (s *GormStore) ExpiredMessages(ctx context.Context, cutoff time.Time) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Select("id", "chat_id", "expires_at").
		Where("private = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, cutoff).
		Order("chat_id").
		Find(&msgs).Error
	if err != nil {
		return nil, apperrors.Internal("failed to scan for expired messages", err)
	}
	return msgs, nil
}

func (s *GormStore) WipeDue(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("wipe_at IS NOT NULL AND wipe_at <= ?", cutoff).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, apperrors.Internal("failed to scan for wipe-due chats", err)
	}
	return ids, nil
}

func (s *GormStore) ChatsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Table("chat_participants").
		Where("user_id = ?", userID).
		Pluck("chat_id", &ids).Error
	if err != nil {
		return nil, apperrors.Internal("failed to list user chats", err)
	}
	return ids, nil
}

func (s *GormStore) RemoveParticipant(ctx context.Context, chatID, userID uuid.UUID) (int, error) {
	err := s.db.WithContext(ctx).
		Exec("DELETE FROM chat_participants WHERE chat_id = ? AND user_id = ?", chatID, userID).Error
	if err != nil {
		return 0, apperrors.Internal("failed to remove participant", err)
	}
	var remaining int64
	err = s.db.WithContext(ctx).
		Table("chat_participants").
		Where("chat_id = ?", chatID).
		Count(&remaining).Error
	if err != nil {
		return 0, apperrors.Internal("failed to count participants", err)
	}
	s.touch(ctx, chatID)
	return int(remaining), nil
}

// touch bumps the chat's last-modified timestamp after message-table or
// join-table mutations gorm would not see.
func (s *GormStore) touch(ctx context.Context, chatID uuid.UUID) {
	s.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", time.Now())
}

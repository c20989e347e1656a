package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat is a two-party container of ordered messages. The participant pair is
// its natural key; lookups are symmetric in the two identities.
type Chat struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// When set and reached, the sweeper clears every message in the chat.
	WipeAt *time.Time `json:"wipe_at,omitempty"`

	Participants []*User   `gorm:"many2many:chat_participants;" json:"participants,omitempty"`
	Messages     []Message `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
}

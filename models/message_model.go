package models

import (
	"time"

	"github.com/google/uuid"
)

// Message belongs to exactly one Chat and never outlives it. A private
// message carries ExpiresAt; once that instant passes the message is
// logically gone even before the sweeper physically removes it.
type Message struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ChatID   uuid.UUID `gorm:"not null;index" json:"chat_id"`
	SenderID uuid.UUID `gorm:"not null" json:"sender_id"`

	Content  string `gorm:"type:text" json:"content"`
	File     []byte `gorm:"type:bytea" json:"file,omitempty"`
	FileType string `gorm:"size:100" json:"file_type,omitempty"`

	Seen    bool `gorm:"default:false" json:"seen"`
	Private bool `gorm:"default:false" json:"private"`

	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`

	Sender User `gorm:"foreignkey:SenderID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

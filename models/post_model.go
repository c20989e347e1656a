package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"not null" json:"user_id"`
	Image     []byte    `gorm:"type:bytea;not null" json:"-"`
	ImageType string    `gorm:"size:100" json:"image_type"`
	Caption   string    `gorm:"size:150" json:"caption"`
	LikeCount int       `gorm:"default:0" json:"like_count"`

	User    User    `gorm:"foreignkey:UserID" json:"-"`
	LikedBy []*User `gorm:"many2many:post_likes;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

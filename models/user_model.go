package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Username  string    `gorm:"size:30;not null;unique" json:"username"`
	Email     string    `gorm:"size:255;not null;unique" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Age       *int      `json:"age,omitempty"`
	Sex       string    `gorm:"size:10" json:"sex"`
	Bio       string    `gorm:"size:500" json:"bio"`
	Role      string    `gorm:"size:20;not null;default:'member'" json:"role"`

	ProfilePicture []byte `gorm:"type:bytea" json:"-"`

	Connections        []*User `gorm:"many2many:user_connections;joinForeignKey:UserID;joinReferences:ConnectionID" json:"-"`
	ConnectionRequests []*User `gorm:"many2many:user_connection_requests;joinForeignKey:UserID;joinReferences:RequesterID" json:"-"`
	BlockedUsers       []*User `gorm:"many2many:user_blocks;joinForeignKey:UserID;joinReferences:BlockedID" json:"-"`

	Chats []*Chat `gorm:"many2many:chat_participants;" json:"-"`
	Posts []Post  `gorm:"foreignKey:UserID" json:"-"`

	// Only one session may be active per account; login rotates it.
	CurrentSessionID *string `gorm:"size:512" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

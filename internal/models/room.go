package models

import (
	"time"
)

// Room is a chat room. A nil AccessKey means anyone can join; a non-nil key
// must be supplied verbatim when joining.
type Room struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `gorm:"not null" json:"description"`
	Icon        string    `gorm:"default:'chat_bubble'" json:"icon"`
	AccessKey   *string   `json:"-"`
	CreatedBy   *uint     `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	Creator  *User     `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL" json:"creator,omitempty"`
	Members  []User    `gorm:"many2many:room_members;" json:"members,omitempty"`
	Messages []Message `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`

	// IsPrivate is not persisted; derived from AccessKey for API responses.
	IsPrivate bool `gorm:"-" json:"is_private"`
}

// RoomMember is the membership join table between users and rooms.
// The composite primary key guarantees at most one row per (room, user) pair.
type RoomMember struct {
	RoomID   uint      `gorm:"primaryKey;autoIncrement:false" json:"room_id"`
	UserID   uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// TableName specifies the table name for GORM.
func (RoomMember) TableName() string {
	return "room_members"
}

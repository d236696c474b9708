package models

import (
	"time"
)

// MessageType distinguishes interactive chat messages from system-generated
// join/quit notices.
type MessageType string

const (
	// MessageTypeChat is a regular user-authored message.
	MessageTypeChat MessageType = "chat"
	// MessageTypeJoin is appended automatically when a user joins a room.
	MessageTypeJoin MessageType = "join"
	// MessageTypeQuit is appended automatically when a user leaves a room.
	MessageTypeQuit MessageType = "quit"
)

// Message is a single entry in a room's history. AuthorDisplayName is a
// snapshot of the author's pseudo at send time and never changes afterwards,
// even if the author renames.
type Message struct {
	ID                uint        `gorm:"primaryKey" json:"id"`
	RoomID            uint        `gorm:"not null;index" json:"room_id"`
	AuthorID          uint        `gorm:"not null;index" json:"author_id"`
	AuthorDisplayName string      `gorm:"not null" json:"author_display_name"`
	Content           string      `gorm:"type:text;not null" json:"content"`
	MessageType       MessageType `gorm:"type:varchar(10);not null;default:'chat'" json:"message_type"`
	ParentID          *uint       `gorm:"index" json:"parent_id,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`

	Room      *Room      `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"room,omitempty"`
	Author    *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Parent    *Message   `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"parent,omitempty"`
	Reactions []Reaction `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
}

// IsSystem reports whether the message was generated by a join/quit event.
// System messages cannot be deleted, reacted to, or reported.
func (m *Message) IsSystem() bool {
	return m.MessageType == MessageTypeJoin || m.MessageType == MessageTypeQuit
}

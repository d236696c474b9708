// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role identifies a user's global privilege level.
type Role string

const (
	// RoleMember is the default role for registered users.
	RoleMember Role = "member"
	// RoleAdmin grants access to moderation endpoints and message deletion.
	RoleAdmin Role = "admin"
)

// User represents a registered account. The pseudo is the public display
// handle; the email is only used for login and is never shown to other users.
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	Pseudo           string     `gorm:"uniqueIndex;not null" json:"pseudo"`
	LastPseudoUpdate time.Time  `gorm:"autoCreateTime" json:"last_pseudo_update"`
	Role             Role       `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	IsBanned         bool       `gorm:"not null;default:false" json:"is_banned"`
	BanExpiresAt     *time.Time `json:"ban_expires_at,omitempty"`
	BanReason        string     `json:"ban_reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`

	CreatedRooms []Room     `gorm:"foreignKey:CreatedBy" json:"created_rooms,omitempty"`
	Rooms        []Room     `gorm:"many2many:room_members;" json:"rooms,omitempty"`
	Messages     []Message  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
	Reactions    []Reaction `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"reactions,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BanActive reports whether the user is currently banned at the given time.
// A nil expiry on a banned account means the ban is permanent.
func (u *User) BanActive(now time.Time) bool {
	if !u.IsBanned {
		return false
	}
	return u.BanExpiresAt == nil || u.BanExpiresAt.After(now)
}

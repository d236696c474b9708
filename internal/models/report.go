package models

import (
	"time"
)

// Report status values.
const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// Report is a moderation report filed against a message. ReportedID is
// derived from the message's author when the report is created and is never
// taken from caller input. Foreign keys are nullified when the referenced
// rows disappear so the moderation trail survives deletions.
type Report struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ReporterID *uint      `json:"reporter_id,omitempty"`
	ReportedID *uint      `gorm:"index" json:"reported_id,omitempty"`
	MessageID  *uint      `json:"message_id,omitempty"`
	Reason     string     `gorm:"type:text" json:"reason"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ResolvedBy *uint      `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	Reporter *User    `gorm:"foreignKey:ReporterID;constraint:OnDelete:SET NULL" json:"reporter,omitempty"`
	Reported *User    `gorm:"foreignKey:ReportedID;constraint:OnDelete:SET NULL" json:"reported,omitempty"`
	Message  *Message `gorm:"foreignKey:MessageID;constraint:OnDelete:SET NULL" json:"message,omitempty"`
}

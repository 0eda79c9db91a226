package entities

import "time"

// Device is a client allowed to sync. The token itself is never stored.
type Device struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	DeviceID   string     `gorm:"uniqueIndex;size:128;not null" json:"device_id"`
	Name       string     `gorm:"size:255" json:"name"`
	TokenHash  string     `gorm:"size:255;not null" json:"-"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Device) TableName() string {
	return "devices"
}

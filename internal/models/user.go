package models

import (
	"time"
)

// User is a directory entry. Identity and credentials live elsewhere; this row only
// carries what the chat needs to label senders and track presence.
type User struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	DisplayName *string   `gorm:"type:varchar(100)" json:"displayName,omitempty"`
	IsOnline    bool      `gorm:"default:false;index" json:"isOnline"`
	LastSeen    time.Time `json:"lastSeen"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// Label is the name shown to other users.
func (u User) Label() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.Name
}

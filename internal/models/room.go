package models

import (
	"fmt"
	"time"
)

type Room struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;index" json:"name"`
	Description *string   `gorm:"type:varchar(500)" json:"description,omitempty"`
	IsPrivate   bool      `gorm:"default:false" json:"isPrivate"`
	CreatedByID *uint     `gorm:"index" json:"createdById,omitempty"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	Members     []Member  `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Messages    []Message `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`
}

// GroupName is the broadcast group every live session of a member joins.
func GroupName(roomID uint) string {
	return fmt.Sprintf("Room_%d", roomID)
}

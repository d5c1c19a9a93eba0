package models

import (
	"time"
)

// Member is a user's membership in a room. (RoomID, UserID) is unique.
type Member struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID   uint      `gorm:"not null;uniqueIndex:idx_member_room_user" json:"roomId"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_member_room_user;index" json:"userId"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	IsAdmin  bool      `gorm:"default:false" json:"isAdmin"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}

func (Member) TableName() string {
	return "room_members"
}

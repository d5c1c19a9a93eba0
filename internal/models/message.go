package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrInvalidMessageTarget = errors.New("message must target exactly one of room or recipient")

// Message is either a room broadcast (RoomID set) or a direct message (RecipientID set).
// Only IsRead changes after creation.
type Message struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	SenderID    uint      `gorm:"not null;index" json:"senderId"`
	Sender      *User     `gorm:"foreignKey:SenderID;constraint:OnDelete:RESTRICT" json:"sender,omitempty"`
	RecipientID *uint     `gorm:"index" json:"recipientId,omitempty"`
	Recipient   *User     `gorm:"foreignKey:RecipientID;constraint:OnDelete:RESTRICT" json:"-"`
	RoomID      *uint     `gorm:"index:idx_message_room_sent" json:"roomId,omitempty"`
	SentAt      time.Time `gorm:"not null;index:idx_message_room_sent" json:"sentAt"`
	IsPrivate   bool      `gorm:"default:false" json:"isPrivate"`
	IsRead      bool      `gorm:"default:false" json:"isRead"`
}

func (m *Message) Validate() error {
	if (m.RoomID == nil) == (m.RecipientID == nil) {
		return ErrInvalidMessageTarget
	}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if err := m.Validate(); err != nil {
		return err
	}
	m.IsPrivate = m.RecipientID != nil
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	return nil
}

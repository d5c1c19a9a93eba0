package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type InvitationStatus int

const (
	InvitationPending InvitationStatus = iota
	InvitationAccepted
	InvitationDeclined
	InvitationExpired
)

var invitationStatusNames = map[InvitationStatus]string{
	InvitationPending:  "pending",
	InvitationAccepted: "accepted",
	InvitationDeclined: "declined",
	InvitationExpired:  "expired",
}

func (s InvitationStatus) String() string {
	if name, ok := invitationStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("InvitationStatus(%d)", int(s))
}

func (s InvitationStatus) Terminal() bool {
	return s != InvitationPending
}

func (s InvitationStatus) MarshalText() ([]byte, error) {
	name, ok := invitationStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown invitation status %d", int(s))
	}
	return []byte(name), nil
}

func (s *InvitationStatus) UnmarshalText(text []byte) error {
	for status, name := range invitationStatusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown invitation status %q", string(text))
}

// Invitation asks a user to join a private room.
//
// Pending is non-nil only while the invitation is pending. Together with RoomID
// and InviteeID it forms a unique index, so the database rejects a second pending
// invitation for the same (room, invitee) while resolved rows (NULL marker) never
// collide.
type Invitation struct {
	ID          uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID      uint             `gorm:"not null;uniqueIndex:idx_invitation_pending" json:"roomId"`
	Room        *Room            `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"room,omitempty"`
	InviterID   uint             `gorm:"not null" json:"inviterId"`
	Inviter     *User            `gorm:"foreignKey:InviterID;constraint:OnDelete:RESTRICT" json:"inviter,omitempty"`
	InviteeID   uint             `gorm:"not null;uniqueIndex:idx_invitation_pending;index" json:"inviteeId"`
	Invitee     *User            `gorm:"foreignKey:InviteeID;constraint:OnDelete:RESTRICT" json:"-"`
	Status      InvitationStatus `gorm:"not null;default:0;index" json:"status"`
	Pending     *bool            `gorm:"uniqueIndex:idx_invitation_pending" json:"-"`
	CreatedAt   time.Time        `gorm:"autoCreateTime;index" json:"createdAt"`
	RespondedAt *time.Time       `json:"respondedAt,omitempty"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.Status == InvitationPending {
		pending := true
		i.Pending = &pending
	} else {
		i.Pending = nil
	}
	return nil
}

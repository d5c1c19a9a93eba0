package ws

import (
	"encoding/json"
	"time"

	"github.com/Wal-20/roomchat/internal/models"
)

// WsEvent is the frame exchanged in both directions.
type WsEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound requests.
const (
	EventSendMessageToRoom     = "SendMessageToRoom"
	EventSendPrivateMessage    = "SendPrivateMessage"
	EventJoinRoom              = "JoinRoom"
	EventLeaveRoom             = "LeaveRoom"
	EventLeaveRoomPermanently  = "LeaveRoomPermanently"
	EventInviteUserToRoom      = "InviteUserToRoom"
	EventAcceptRoomInvitation  = "AcceptRoomInvitation"
	EventDeclineRoomInvitation = "DeclineRoomInvitation"
)

// Outbound events.
const (
	EventReceiveRoomMessage    = "ReceiveRoomMessage"
	EventReceivePrivateMessage = "ReceivePrivateMessage"
	EventReceiveRoomInvitation = "ReceiveRoomInvitation"
	EventUserJoinedRoom        = "UserJoinedRoom"
	EventUserLeftRoom          = "UserLeftRoom"
	EventUserOnline            = "UserOnline"
	EventUserOffline           = "UserOffline"
	EventInvitationSent        = "InvitationSent"
	EventInvitationAccepted    = "InvitationAccepted"
	EventInvitationDeclined    = "InvitationDeclined"
	EventLeftRoom              = "LeftRoom"
	EventError                 = "Error"
)

type SendMessageToRoomRequest struct {
	RoomID  uint   `json:"roomId" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type SendPrivateMessageRequest struct {
	RecipientID uint   `json:"recipientId" validate:"required"`
	Content     string `json:"content" validate:"required"`
}

type RoomRequest struct {
	RoomID uint `json:"roomId" validate:"required"`
}

type InviteUserRequest struct {
	RoomID    uint `json:"roomId" validate:"required"`
	InviteeID uint `json:"inviteeId" validate:"required"`
}

type InvitationRequest struct {
	InvitationID uint `json:"invitationId" validate:"required"`
}

// MessagePayload carries ReceiveRoomMessage and ReceivePrivateMessage.
type MessagePayload struct {
	ID          uint      `json:"id"`
	Content     string    `json:"content"`
	SenderID    uint      `json:"senderId"`
	SenderName  string    `json:"senderName"`
	SentAt      time.Time `json:"sentAt"`
	RoomID      *uint     `json:"roomId,omitempty"`
	RecipientID *uint     `json:"recipientId,omitempty"`
	IsPrivate   bool      `json:"isPrivate"`
}

func newMessagePayload(m *models.Message, senderName string) MessagePayload {
	return MessagePayload{
		ID:          m.ID,
		Content:     m.Content,
		SenderID:    m.SenderID,
		SenderName:  senderName,
		SentAt:      m.SentAt,
		RoomID:      m.RoomID,
		RecipientID: m.RecipientID,
		IsPrivate:   m.IsPrivate,
	}
}

// InvitationPayload carries ReceiveRoomInvitation.
type InvitationPayload struct {
	InvitationID uint      `json:"invitationId"`
	RoomID       uint      `json:"roomId"`
	RoomName     string    `json:"roomName"`
	InviterID    uint      `json:"inviterId"`
	InviterName  string    `json:"inviterName"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newInvitationPayload(inv *models.Invitation) InvitationPayload {
	p := InvitationPayload{
		InvitationID: inv.ID,
		RoomID:       inv.RoomID,
		InviterID:    inv.InviterID,
		CreatedAt:    inv.CreatedAt,
	}
	if inv.Room != nil {
		p.RoomName = inv.Room.Name
	}
	if inv.Inviter != nil {
		p.InviterName = inv.Inviter.Label()
	}
	return p
}

// MembershipPayload carries UserJoinedRoom and UserLeftRoom.
type MembershipPayload struct {
	RoomID      uint   `json:"roomId"`
	UserID      uint   `json:"userId"`
	DisplayName string `json:"displayName"`
}

// PresencePayload carries UserOnline and UserOffline.
type PresencePayload struct {
	UserID      uint      `json:"userId"`
	DisplayName string    `json:"displayName"`
	LastSeen    time.Time `json:"lastSeen"`
}

// AckPayload answers a mutating request: InvitationSent, InvitationAccepted,
// InvitationDeclined and LeftRoom.
type AckPayload struct {
	Success       bool   `json:"success"`
	RoomID        uint   `json:"roomId,omitempty"`
	InvitationID  uint   `json:"invitationId,omitempty"`
	Message       string `json:"message,omitempty"`
	AlreadyMember bool   `json:"alreadyMember,omitempty"`
	RoomDeleted   bool   `json:"roomDeleted,omitempty"`
	Retryable     bool   `json:"retryable,omitempty"`
}

type ErrorPayload struct {
	Request   string `json:"request,omitempty"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func NewEvent(typ string, payload any) (WsEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return WsEvent{}, err
	}
	return WsEvent{Type: typ, Data: data}, nil
}

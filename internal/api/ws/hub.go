package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Wal-20/roomchat/internal/models"
	"github.com/Wal-20/roomchat/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

//go:generate mockgen -source=hub.go -destination=../../mocks/mock_hub.go -package=mocks

type Rooms interface {
	FindRoom(ctx context.Context, roomID uint) (*models.Room, error)
	GetUserRooms(ctx context.Context, userID uint) ([]models.Room, error)
	IsRoomMember(ctx context.Context, roomID, userID uint) (bool, error)
	JoinPublicRoom(ctx context.Context, roomID, userID uint) error
	LeaveRoom(ctx context.Context, roomID, userID uint) (services.LeaveOutcome, error)
}

type Invitations interface {
	InviteToRoom(ctx context.Context, roomID, inviterID, inviteeID uint) (*models.Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID, userID uint) (services.AcceptResult, error)
	DeclineInvitation(ctx context.Context, invitationID, userID uint) (*models.Invitation, error)
}

type Messages interface {
	SendRoomMessage(ctx context.Context, roomID, senderID uint, content string) (*models.Message, error)
	SendDirectMessage(ctx context.Context, senderID, recipientID uint, content string) (*models.Message, error)
}

type UserDirectory interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	SetPresence(ctx context.Context, id uint, online bool) (time.Time, error)
}

// Services are the engines the hub executes requests against.
type Services struct {
	Rooms       Rooms
	Invitations Invitations
	Messages    Messages
	Users       UserDirectory
}

const DefaultSendBuffer = 256

const leaveRejected = "Cannot leave room. You may be the only admin."

var validate = validator.New()

// Session is one live connection of a user.
type Session struct {
	ID     string
	UserID uint
	Name   string

	send   chan []byte
	groups map[string]struct{}
}

// Events yields the encoded frames queued for this session. It is closed on Disconnect.
func (s *Session) Events() <-chan []byte { return s.send }

// Hub keeps, for every local session, the set of room groups it listens to and
// delivers bus envelopes to the matching sessions.
type Hub struct {
	svc        Services
	bus        Bus
	log        *slog.Logger
	bufferSize int

	mu       sync.RWMutex
	sessions map[string]*Session
	groups   map[string]map[string]*Session
	byUser   map[uint]map[string]*Session

	presenceMu sync.Mutex
	live       map[uint]int // live sessions per user
}

type HubOption func(*Hub)

func WithSendBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

func NewHub(svc Services, bus Bus, log *slog.Logger, opts ...HubOption) (*Hub, error) {
	h := &Hub{
		svc:        svc,
		bus:        bus,
		log:        log,
		bufferSize: DefaultSendBuffer,
		sessions:   make(map[string]*Session),
		groups:     make(map[string]map[string]*Session),
		byUser:     make(map[uint]map[string]*Session),
		live:       make(map[uint]int),
	}
	for _, opt := range opts {
		opt(h)
	}
	if err := bus.Subscribe(h.deliver); err != nil {
		return nil, fmt.Errorf("subscribe hub to bus: %w", err)
	}
	return h, nil
}

// Connect registers a session, subscribes it to every room the user belongs to and
// marks the user online on their first live session.
func (h *Hub) Connect(ctx context.Context, userID uint) (*Session, error) {
	user, err := h.svc.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rooms, err := h.svc.Rooms.GetUserRooms(ctx, userID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   user.Label(),
		send:   make(chan []byte, h.bufferSize),
		groups: make(map[string]struct{}),
	}

	h.mu.Lock()
	h.sessions[s.ID] = s
	if h.byUser[userID] == nil {
		h.byUser[userID] = make(map[string]*Session)
	}
	h.byUser[userID][s.ID] = s
	for _, room := range rooms {
		h.subscribeLocked(s, models.GroupName(room.ID))
	}
	h.mu.Unlock()

	h.log.Debug("Session connected", "session_id", s.ID, "user_id", userID, "rooms", len(rooms))
	h.markOnline(ctx, s)
	return s, nil
}

// Disconnect drops the session and its subscriptions. The user goes offline once
// their last session is gone.
func (h *Hub) Disconnect(ctx context.Context, s *Session) {
	h.mu.Lock()
	if _, ok := h.sessions[s.ID]; !ok {
		h.mu.Unlock()
		return
	}
	for group := range s.groups {
		h.unsubscribeLocked(s, group)
	}
	delete(h.sessions, s.ID)
	if userSessions := h.byUser[s.UserID]; userSessions != nil {
		delete(userSessions, s.ID)
		if len(userSessions) == 0 {
			delete(h.byUser, s.UserID)
		}
	}
	close(s.send)
	h.mu.Unlock()

	h.log.Debug("Session disconnected", "session_id", s.ID, "user_id", s.UserID)
	h.markOffline(ctx, s)
}

// Shutdown disconnects every local session. Their write pumps then close the sockets.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.RLock()
	sessions := lo.Values(h.sessions)
	h.mu.RUnlock()
	for _, s := range sessions {
		h.Disconnect(ctx, s)
	}
	h.log.Info("Hub stopped", "sessions", len(sessions))
}

// Groups lists the groups a session is subscribed to.
func (h *Hub) Groups(s *Session) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return lo.Keys(s.groups)
}

// incrementPresence returns true when this is the user's first live session.
func (h *Hub) incrementPresence(userID uint) bool {
	count := h.live[userID]
	h.live[userID] = count + 1
	return count == 0
}

// decrementPresence returns true when the user's last live session ended.
func (h *Hub) decrementPresence(userID uint) bool {
	count := h.live[userID]
	if count <= 1 {
		delete(h.live, userID)
		return count == 1
	}
	h.live[userID] = count - 1
	return false
}

func (h *Hub) markOnline(ctx context.Context, s *Session) {
	h.presenceMu.Lock()
	defer h.presenceMu.Unlock()
	if !h.incrementPresence(s.UserID) {
		return
	}
	h.setPresence(ctx, s, true, EventUserOnline)
}

func (h *Hub) markOffline(ctx context.Context, s *Session) {
	h.presenceMu.Lock()
	defer h.presenceMu.Unlock()
	if !h.decrementPresence(s.UserID) {
		return
	}
	h.setPresence(ctx, s, false, EventUserOffline)
}

func (h *Hub) setPresence(ctx context.Context, s *Session, online bool, eventType string) {
	at, err := h.svc.Users.SetPresence(context.WithoutCancel(ctx), s.UserID, online)
	if err != nil {
		h.log.Warn("Failed to store presence", "user_id", s.UserID, "online", online, "error", err)
		at = time.Now().UTC()
	}
	h.publish(ctx, Envelope{Target: TargetAll}, eventType, PresencePayload{
		UserID:      s.UserID,
		DisplayName: s.Name,
		LastSeen:    at,
	})
}

// Dispatch decodes one inbound frame and runs the matching request.
func (h *Hub) Dispatch(ctx context.Context, s *Session, raw []byte) {
	var evt WsEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		h.replyError(s, "", fmt.Errorf("%w: malformed frame", services.ErrInvalidInput))
		return
	}

	switch evt.Type {
	case EventSendMessageToRoom:
		var req SendMessageToRoomRequest
		if h.decode(s, evt, &req) {
			h.SendMessageToRoom(ctx, s, req.RoomID, req.Content)
		}
	case EventSendPrivateMessage:
		var req SendPrivateMessageRequest
		if h.decode(s, evt, &req) {
			h.SendPrivateMessage(ctx, s, req.RecipientID, req.Content)
		}
	case EventJoinRoom:
		var req RoomRequest
		if h.decode(s, evt, &req) {
			h.JoinRoom(ctx, s, req.RoomID)
		}
	case EventLeaveRoom:
		var req RoomRequest
		if h.decode(s, evt, &req) {
			h.LeaveRoom(s, req.RoomID)
		}
	case EventLeaveRoomPermanently:
		var req RoomRequest
		if h.decode(s, evt, &req) {
			h.LeaveRoomPermanently(ctx, s, req.RoomID)
		}
	case EventInviteUserToRoom:
		var req InviteUserRequest
		if h.decode(s, evt, &req) {
			h.InviteUserToRoom(ctx, s, req.RoomID, req.InviteeID)
		}
	case EventAcceptRoomInvitation:
		var req InvitationRequest
		if h.decode(s, evt, &req) {
			h.AcceptRoomInvitation(ctx, s, req.InvitationID)
		}
	case EventDeclineRoomInvitation:
		var req InvitationRequest
		if h.decode(s, evt, &req) {
			h.DeclineRoomInvitation(ctx, s, req.InvitationID)
		}
	default:
		h.replyError(s, evt.Type, fmt.Errorf("%w: unknown request type %q", services.ErrInvalidInput, evt.Type))
	}
}

func (h *Hub) decode(s *Session, evt WsEvent, dst any) bool {
	if err := json.Unmarshal(evt.Data, dst); err != nil {
		h.replyError(s, evt.Type, fmt.Errorf("%w: %v", services.ErrInvalidInput, err))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.replyError(s, evt.Type, fmt.Errorf("%w: %v", services.ErrInvalidInput, err))
		return false
	}
	return true
}

func (h *Hub) SendMessageToRoom(ctx context.Context, s *Session, roomID uint, content string) {
	msg, err := h.svc.Messages.SendRoomMessage(ctx, roomID, s.UserID, content)
	if err != nil {
		h.replyError(s, EventSendMessageToRoom, err)
		return
	}
	h.publish(ctx, groupEnvelope(roomID), EventReceiveRoomMessage, newMessagePayload(msg, s.Name))
}

// SendPrivateMessage delivers to every session of the sender and of the recipient.
func (h *Hub) SendPrivateMessage(ctx context.Context, s *Session, recipientID uint, content string) {
	msg, err := h.svc.Messages.SendDirectMessage(ctx, s.UserID, recipientID, content)
	if err != nil {
		h.replyError(s, EventSendPrivateMessage, err)
		return
	}
	payload := newMessagePayload(msg, s.Name)
	h.publish(ctx, Envelope{Target: TargetUser, UserID: recipientID}, EventReceivePrivateMessage, payload)
	if recipientID != s.UserID {
		h.publish(ctx, Envelope{Target: TargetUser, UserID: s.UserID}, EventReceivePrivateMessage, payload)
	}
}

// JoinRoom subscribes the session to the room group. A public room is joined first
// when needed; a private room only ever subscribes existing members.
func (h *Hub) JoinRoom(ctx context.Context, s *Session, roomID uint) {
	room, err := h.svc.Rooms.FindRoom(ctx, roomID)
	if err != nil {
		h.replyError(s, EventJoinRoom, err)
		return
	}
	member, err := h.svc.Rooms.IsRoomMember(ctx, roomID, s.UserID)
	if err != nil {
		h.replyError(s, EventJoinRoom, err)
		return
	}

	if !room.IsPrivate && !member {
		err := h.svc.Rooms.JoinPublicRoom(ctx, roomID, s.UserID)
		switch {
		case err == nil:
			h.subscribeEverywhere(ctx, s, roomID)
			h.publish(ctx, groupEnvelope(roomID), EventUserJoinedRoom, MembershipPayload{
				RoomID: roomID, UserID: s.UserID, DisplayName: s.Name,
			})
			return
		case errors.Is(err, services.ErrAlreadyMember):
			member = true
		default:
			h.replyError(s, EventJoinRoom, err)
			return
		}
	}

	if !member {
		h.replyError(s, EventJoinRoom, services.ErrNotMember)
		return
	}
	h.subscribe(s, models.GroupName(roomID))
}

// LeaveRoom stops this session from listening to the room. Membership is untouched.
func (h *Hub) LeaveRoom(s *Session, roomID uint) {
	h.mu.Lock()
	h.unsubscribeLocked(s, models.GroupName(roomID))
	h.mu.Unlock()
}

func (h *Hub) LeaveRoomPermanently(ctx context.Context, s *Session, roomID uint) {
	outcome, err := h.svc.Rooms.LeaveRoom(ctx, roomID, s.UserID)
	if err != nil {
		ack := AckPayload{RoomID: roomID, Message: publicMessage(err), Retryable: services.Retryable(err)}
		if errors.Is(err, services.ErrLastAdmin) {
			ack.Message = leaveRejected
		}
		h.reply(s, EventLeftRoom, ack)
		return
	}

	group := models.GroupName(roomID)
	h.LeaveRoom(s, roomID)
	// The user's other sessions, on any instance, stop listening too.
	h.publishEnvelope(ctx, Envelope{Target: TargetGroup, Group: group, UserID: s.UserID, Unsubscribe: true})
	h.publish(ctx, groupEnvelope(roomID), EventUserLeftRoom, MembershipPayload{
		RoomID: roomID, UserID: s.UserID, DisplayName: s.Name,
	})
	h.reply(s, EventLeftRoom, AckPayload{Success: true, RoomID: roomID, RoomDeleted: outcome == services.RoomDeleted})
}

func (h *Hub) InviteUserToRoom(ctx context.Context, s *Session, roomID, inviteeID uint) {
	inv, err := h.svc.Invitations.InviteToRoom(ctx, roomID, s.UserID, inviteeID)
	if err != nil {
		h.reply(s, EventInvitationSent, AckPayload{
			RoomID: roomID, Message: publicMessage(err), Retryable: services.Retryable(err),
		})
		return
	}
	h.publish(ctx, Envelope{Target: TargetUser, UserID: inviteeID}, EventReceiveRoomInvitation, newInvitationPayload(inv))
	h.reply(s, EventInvitationSent, AckPayload{Success: true, RoomID: roomID, InvitationID: inv.ID})
}

func (h *Hub) AcceptRoomInvitation(ctx context.Context, s *Session, invitationID uint) {
	res, err := h.svc.Invitations.AcceptInvitation(ctx, invitationID, s.UserID)
	if err != nil {
		h.reply(s, EventInvitationAccepted, AckPayload{
			InvitationID: invitationID, Message: publicMessage(err), Retryable: services.Retryable(err),
		})
		return
	}
	roomID := res.Invitation.RoomID
	h.subscribeEverywhere(ctx, s, roomID)
	if !res.AlreadyMember {
		h.publish(ctx, groupEnvelope(roomID), EventUserJoinedRoom, MembershipPayload{
			RoomID: roomID, UserID: s.UserID, DisplayName: s.Name,
		})
	}
	h.reply(s, EventInvitationAccepted, AckPayload{
		Success: true, InvitationID: invitationID, RoomID: roomID, AlreadyMember: res.AlreadyMember,
	})
}

func (h *Hub) DeclineRoomInvitation(ctx context.Context, s *Session, invitationID uint) {
	inv, err := h.svc.Invitations.DeclineInvitation(ctx, invitationID, s.UserID)
	if err != nil {
		h.reply(s, EventInvitationDeclined, AckPayload{
			InvitationID: invitationID, Message: publicMessage(err), Retryable: services.Retryable(err),
		})
		return
	}
	h.reply(s, EventInvitationDeclined, AckPayload{Success: true, InvitationID: invitationID, RoomID: inv.RoomID})
}

func groupEnvelope(roomID uint) Envelope {
	return Envelope{Target: TargetGroup, Group: models.GroupName(roomID)}
}

func (h *Hub) subscribe(s *Session, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[s.ID]; !ok {
		return
	}
	h.subscribeLocked(s, group)
}

// subscribeEverywhere puts the caller's session in the room group at once and every
// other session of the user, on any instance, through the bus.
func (h *Hub) subscribeEverywhere(ctx context.Context, s *Session, roomID uint) {
	group := models.GroupName(roomID)
	h.subscribe(s, group)
	h.publishEnvelope(ctx, Envelope{Target: TargetGroup, Group: group, UserID: s.UserID, Subscribe: true})
}

func (h *Hub) subscribeLocked(s *Session, group string) {
	members := h.groups[group]
	if members == nil {
		members = make(map[string]*Session)
		h.groups[group] = members
	}
	members[s.ID] = s
	s.groups[group] = struct{}{}
}

func (h *Hub) unsubscribeLocked(s *Session, group string) {
	delete(s.groups, group)
	if members := h.groups[group]; members != nil {
		delete(members, s.ID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// publish broadcasts after the triggering write committed. The context is detached
// so a caller that went away does not cancel delivery to everyone else.
func (h *Hub) publish(ctx context.Context, env Envelope, eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		h.log.Error("Failed to encode event", "type", eventType, "error", err)
		return
	}
	env.Event = evt
	h.publishEnvelope(ctx, env)
}

func (h *Hub) publishEnvelope(ctx context.Context, env Envelope) {
	if err := h.bus.Publish(context.WithoutCancel(ctx), env); err != nil {
		h.log.Error("Failed to publish envelope", "type", env.Event.Type, "group", env.Group, "user_id", env.UserID, "error", err)
	}
}

// deliver hands an envelope from the bus to the local sessions it targets.
func (h *Hub) deliver(env Envelope) {
	if env.Subscribe || env.Unsubscribe {
		h.mu.Lock()
		for _, s := range h.byUser[env.UserID] {
			if env.Subscribe {
				h.subscribeLocked(s, env.Group)
			} else {
				h.unsubscribeLocked(s, env.Group)
			}
		}
		h.mu.Unlock()
		return
	}

	frame, err := json.Marshal(env.Event)
	if err != nil {
		h.log.Error("Failed to encode frame", "type", env.Event.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	switch env.Target {
	case TargetGroup:
		for _, s := range h.groups[env.Group] {
			h.enqueue(s, frame)
		}
	case TargetUser:
		for _, s := range h.byUser[env.UserID] {
			h.enqueue(s, frame)
		}
	case TargetAll:
		for _, s := range h.sessions {
			h.enqueue(s, frame)
		}
	}
}

// enqueue must run under h.mu so the channel cannot be closed concurrently.
func (h *Hub) enqueue(s *Session, frame []byte) {
	select {
	case s.send <- frame:
	default:
		// slow session; drop
		h.log.Warn("Dropping event for slow session", "session_id", s.ID, "user_id", s.UserID)
	}
}

// reply sends an event to the calling session only. It is skipped when the session
// already disconnected.
func (h *Hub) reply(s *Session, eventType string, payload any) {
	evt, err := NewEvent(eventType, payload)
	if err != nil {
		h.log.Error("Failed to encode event", "type", eventType, "error", err)
		return
	}
	frame, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("Failed to encode frame", "type", eventType, "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.sessions[s.ID]; !ok {
		return
	}
	h.enqueue(s, frame)
}

func (h *Hub) replyError(s *Session, request string, err error) {
	kind := services.KindOf(err)
	if kind == services.KindInternal || kind == services.KindTransient {
		h.log.Error("Request failed", "request", request, "session_id", s.ID, "user_id", s.UserID, "error", err)
	}
	h.reply(s, EventError, ErrorPayload{
		Request:   request,
		Kind:      kind.String(),
		Message:   publicMessage(err),
		Retryable: services.Retryable(err),
	})
}

// publicMessage hides internal failures from clients.
func publicMessage(err error) string {
	switch services.KindOf(err) {
	case services.KindInternal:
		return "internal error"
	case services.KindTransient:
		return "temporarily unavailable, try again"
	default:
		msg := err.Error()
		if msg == "" {
			return msg
		}
		return strings.ToUpper(msg[:1]) + msg[1:]
	}
}

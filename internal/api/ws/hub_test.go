package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Wal-20/roomchat/internal/mocks"
	"github.com/Wal-20/roomchat/internal/models"
	"github.com/Wal-20/roomchat/internal/services"
	"github.com/Wal-20/roomchat/internal/testutil"
	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type recordingBus struct {
	*LocalBus
	mu        sync.Mutex
	published []Envelope
}

func newRecordingBus() *recordingBus {
	return &recordingBus{LocalBus: NewLocalBus()}
}

func (b *recordingBus) Publish(ctx context.Context, env Envelope) error {
	b.mu.Lock()
	b.published = append(b.published, env)
	b.mu.Unlock()
	return b.LocalBus.Publish(ctx, env)
}

func (b *recordingBus) ofType(eventType string) []Envelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lo.Filter(b.published, func(env Envelope, _ int) bool { return env.Event.Type == eventType })
}

func (b *recordingBus) reset() {
	b.mu.Lock()
	b.published = nil
	b.mu.Unlock()
}

type hubFixture struct {
	hub   *Hub
	bus   *recordingBus
	db    *gorm.DB
	rooms *services.RoomService
	users []models.User
}

func newHubFixture(t *testing.T, opts ...HubOption) hubFixture {
	t.Helper()
	store, db := testutil.NewStore(t)
	log := testutil.Logger()
	rooms := services.NewRoomService(store, cache.New(time.Minute, time.Minute), log)
	bus := newRecordingBus()
	hub, err := NewHub(Services{
		Rooms:       rooms,
		Invitations: services.NewInvitationService(store, log),
		Messages:    services.NewMessageService(store),
		Users:       services.NewUserService(store),
	}, bus, log, opts...)
	require.NoError(t, err)
	return hubFixture{
		hub:   hub,
		bus:   bus,
		db:    db,
		rooms: rooms,
		users: testutil.CreateUsers(t, db, "alice", "bob", "carol"),
	}
}

func (f hubFixture) connect(t *testing.T, userID uint) *Session {
	t.Helper()
	s, err := f.hub.Connect(context.Background(), userID)
	require.NoError(t, err)
	return s
}

func (f hubFixture) createRoom(t *testing.T, name string, private bool, creator uint) *models.Room {
	t.Helper()
	room, err := f.rooms.CreateRoom(context.Background(), services.CreateRoomInput{Name: name, IsPrivate: private, CreatorID: creator})
	require.NoError(t, err)
	return room
}

// drain returns every frame queued for the session so far.
func drain(t *testing.T, s *Session) []WsEvent {
	t.Helper()
	var events []WsEvent
	for {
		select {
		case frame, ok := <-s.Events():
			if !ok {
				return events
			}
			var evt WsEvent
			require.NoError(t, json.Unmarshal(frame, &evt))
			events = append(events, evt)
		default:
			return events
		}
	}
}

func types(events []WsEvent) []string {
	return lo.Map(events, func(e WsEvent, _ int) string { return e.Type })
}

func decodeAs[T any](t *testing.T, evt WsEvent) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(evt.Data, &v))
	return v
}

func frame(t *testing.T, typ string, payload any) []byte {
	t.Helper()
	evt, err := NewEvent(typ, payload)
	require.NoError(t, err)
	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	return raw
}

func TestHub_ConnectAndPresence(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newHubFixture(t)
	alice, bob := f.users[0].ID, f.users[1].ID
	room := f.createRoom(t, "General", false, alice)

	first := f.connect(t, alice)
	req.Equal([]string{models.GroupName(room.ID)}, f.hub.Groups(first))
	second := f.connect(t, alice)
	observer := f.connect(t, bob)
	req.Empty(f.hub.Groups(observer))

	// Only the first session of a user flips presence
	req.Len(f.bus.ofType(EventUserOnline), 2)
	var stored models.User
	req.NoError(f.db.First(&stored, alice).Error)
	req.True(stored.IsOnline)

	drain(t, observer)
	f.hub.Disconnect(ctx, first)
	req.Empty(drain(t, observer))
	req.NoError(f.db.First(&stored, alice).Error)
	req.True(stored.IsOnline)

	f.hub.Disconnect(ctx, second)
	events := drain(t, observer)
	req.Equal([]string{EventUserOffline}, types(events))
	req.Equal(alice, decodeAs[PresencePayload](t, events[0]).UserID)
	req.NoError(f.db.First(&stored, alice).Error)
	req.False(stored.IsOnline)

	// A second disconnect of the same session is a no-op
	f.hub.Disconnect(ctx, second)
	req.Len(f.bus.ofType(EventUserOffline), 1)
}

func TestHub_JoinRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("should join a public room and announce it exactly once", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		alice, carol := f.users[0].ID, f.users[2].ID
		room := f.createRoom(t, "General", false, alice)
		owner := f.connect(t, alice)
		joiner := f.connect(t, carol)
		drain(t, owner)
		drain(t, joiner)
		f.bus.reset()

		f.hub.Dispatch(ctx, joiner, frame(t, EventJoinRoom, RoomRequest{RoomID: room.ID}))

		req.Len(f.bus.ofType(EventUserJoinedRoom), 1)
		req.Equal(models.GroupName(room.ID), f.bus.ofType(EventUserJoinedRoom)[0].Group)
		ownerEvents := drain(t, owner)
		req.Equal([]string{EventUserJoinedRoom}, types(ownerEvents))
		joined := decodeAs[MembershipPayload](t, ownerEvents[0])
		req.Equal(carol, joined.UserID)
		req.Equal(room.ID, joined.RoomID)
		req.Equal([]string{EventUserJoinedRoom}, types(drain(t, joiner)))

		member, err := f.rooms.IsRoomMember(ctx, room.ID, carol)
		req.NoError(err)
		req.True(member)

		// Rejoining an already joined room only resubscribes
		f.hub.Dispatch(ctx, joiner, frame(t, EventJoinRoom, RoomRequest{RoomID: room.ID}))
		req.Len(f.bus.ofType(EventUserJoinedRoom), 1)
		req.Empty(drain(t, joiner))
	})

	t.Run("should never grant membership to a private room", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		alice, carol := f.users[0].ID, f.users[2].ID
		room := f.createRoom(t, "Secret", true, alice)
		joiner := f.connect(t, carol)
		drain(t, joiner)

		f.hub.JoinRoom(ctx, joiner, room.ID)

		events := drain(t, joiner)
		req.Equal([]string{EventError}, types(events))
		payload := decodeAs[ErrorPayload](t, events[0])
		req.Equal(EventJoinRoom, payload.Request)
		req.Equal("authorization", payload.Kind)
		req.Empty(f.hub.Groups(joiner))
		member, err := f.rooms.IsRoomMember(ctx, room.ID, carol)
		req.NoError(err)
		req.False(member)
	})

	t.Run("should report unknown rooms to the caller only", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		caller := f.connect(t, f.users[0].ID)
		other := f.connect(t, f.users[1].ID)
		drain(t, caller)
		drain(t, other)

		f.hub.JoinRoom(ctx, caller, 404)

		events := drain(t, caller)
		req.Equal([]string{EventError}, types(events))
		req.Equal("not_found", decodeAs[ErrorPayload](t, events[0]).Kind)
		req.Empty(drain(t, other))
	})
}

func TestHub_Messages(t *testing.T) {
	ctx := context.Background()

	t.Run("should deliver a direct message to both users and no group", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		x, y, z := f.users[0].ID, f.users[1].ID, f.users[2].ID
		f.createRoom(t, "General", false, x)
		xs := f.connect(t, x)
		ys1 := f.connect(t, y)
		ys2 := f.connect(t, y)
		zs := f.connect(t, z)
		for _, s := range []*Session{xs, ys1, ys2, zs} {
			drain(t, s)
		}
		f.bus.reset()

		f.hub.Dispatch(ctx, xs, frame(t, EventSendPrivateMessage, SendPrivateMessageRequest{RecipientID: y, Content: "psst"}))

		envs := f.bus.ofType(EventReceivePrivateMessage)
		req.Len(envs, 2)
		req.ElementsMatch([]uint{x, y}, lo.Map(envs, func(e Envelope, _ int) uint { return e.UserID }))
		req.Empty(lo.Filter(f.bus.published, func(e Envelope, _ int) bool { return e.Target == TargetGroup }))

		for _, s := range []*Session{xs, ys1, ys2} {
			events := drain(t, s)
			req.Equal([]string{EventReceivePrivateMessage}, types(events))
			msg := decodeAs[MessagePayload](t, events[0])
			req.Nil(msg.RoomID)
			req.NotNil(msg.RecipientID)
			req.Equal(y, *msg.RecipientID)
			req.Equal("alice", msg.SenderName)
		}
		req.Empty(drain(t, zs))

		var stored models.Message
		req.NoError(f.db.Last(&stored).Error)
		req.Nil(stored.RoomID)
		req.Equal(y, *stored.RecipientID)
	})

	t.Run("should deliver a note to self once", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		xs := f.connect(t, f.users[0].ID)
		drain(t, xs)
		f.bus.reset()

		f.hub.SendPrivateMessage(ctx, xs, f.users[0].ID, "note")

		req.Len(f.bus.ofType(EventReceivePrivateMessage), 1)
		req.Len(drain(t, xs), 1)
	})

	t.Run("should broadcast room messages to the group and reject outsiders", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		alice, bob := f.users[0].ID, f.users[1].ID
		room := f.createRoom(t, "General", false, alice)
		member := f.connect(t, alice)
		outsider := f.connect(t, bob)
		drain(t, member)
		drain(t, outsider)
		f.bus.reset()

		f.hub.Dispatch(ctx, outsider, frame(t, EventSendMessageToRoom, SendMessageToRoomRequest{RoomID: room.ID, Content: "hi"}))
		events := drain(t, outsider)
		req.Equal([]string{EventError}, types(events))
		req.Equal("authorization", decodeAs[ErrorPayload](t, events[0]).Kind)
		req.Empty(drain(t, member))
		req.Empty(f.bus.published)

		f.hub.Dispatch(ctx, member, frame(t, EventSendMessageToRoom, SendMessageToRoomRequest{RoomID: room.ID, Content: "hello"}))
		events = drain(t, member)
		req.Equal([]string{EventReceiveRoomMessage}, types(events))
		msg := decodeAs[MessagePayload](t, events[0])
		req.Equal("hello", msg.Content)
		req.Equal(room.ID, *msg.RoomID)
		req.Empty(drain(t, outsider))
	})
}

func TestHub_Leave(t *testing.T) {
	ctx := context.Background()

	t.Run("should only drop the subscription on a transient leave", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		alice := f.users[0].ID
		room := f.createRoom(t, "General", false, alice)
		s := f.connect(t, alice)

		f.hub.Dispatch(ctx, s, frame(t, EventLeaveRoom, RoomRequest{RoomID: room.ID}))

		req.Empty(f.hub.Groups(s))
		member, err := f.rooms.IsRoomMember(ctx, room.ID, alice)
		req.NoError(err)
		req.True(member)
	})

	t.Run("should reject the lone admin and let the others leave everywhere", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		alice, bob := f.users[0].ID, f.users[1].ID
		room := f.createRoom(t, "General", false, alice)
		require.NoError(t, f.rooms.JoinPublicRoom(ctx, room.ID, bob))
		admin := f.connect(t, alice)
		bob1 := f.connect(t, bob)
		bob2 := f.connect(t, bob)
		for _, s := range []*Session{admin, bob1, bob2} {
			drain(t, s)
		}

		f.hub.LeaveRoomPermanently(ctx, admin, room.ID)
		events := drain(t, admin)
		req.Equal([]string{EventLeftRoom}, types(events))
		ack := decodeAs[AckPayload](t, events[0])
		req.False(ack.Success)
		req.Equal(leaveRejected, ack.Message)
		req.Empty(drain(t, bob1))
		req.NotEmpty(f.hub.Groups(admin))

		f.hub.Dispatch(ctx, bob1, frame(t, EventLeaveRoomPermanently, RoomRequest{RoomID: room.ID}))
		events = drain(t, bob1)
		req.Equal([]string{EventLeftRoom}, types(events))
		req.True(decodeAs[AckPayload](t, events[0]).Success)
		req.Empty(f.hub.Groups(bob1))
		req.Empty(f.hub.Groups(bob2))
		req.Empty(drain(t, bob2))

		events = drain(t, admin)
		req.Equal([]string{EventUserLeftRoom}, types(events))
		req.Equal(bob, decodeAs[MembershipPayload](t, events[0]).UserID)
	})

	t.Run("should flag the room as deleted when the last member leaves", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		alice := f.users[0].ID
		room := f.createRoom(t, "Solo", false, alice)
		s := f.connect(t, alice)
		drain(t, s)

		f.hub.LeaveRoomPermanently(ctx, s, room.ID)
		events := drain(t, s)
		req.Equal([]string{EventLeftRoom}, types(events))
		ack := decodeAs[AckPayload](t, events[0])
		req.True(ack.Success)
		req.True(ack.RoomDeleted)
	})
}

func TestHub_Invitations(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newHubFixture(t)
	alice, bob, carol := f.users[0].ID, f.users[1].ID, f.users[2].ID
	room := f.createRoom(t, "Secret", true, alice)
	admin := f.connect(t, alice)
	guest := f.connect(t, bob)
	outsider := f.connect(t, carol)
	for _, s := range []*Session{admin, guest, outsider} {
		drain(t, s)
	}

	// A non-admin cannot invite
	f.hub.InviteUserToRoom(ctx, outsider, room.ID, bob)
	events := drain(t, outsider)
	req.Equal([]string{EventInvitationSent}, types(events))
	req.False(decodeAs[AckPayload](t, events[0]).Success)
	req.Empty(drain(t, guest))

	f.hub.Dispatch(ctx, admin, frame(t, EventInviteUserToRoom, InviteUserRequest{RoomID: room.ID, InviteeID: bob}))
	events = drain(t, admin)
	req.Equal([]string{EventInvitationSent}, types(events))
	sent := decodeAs[AckPayload](t, events[0])
	req.True(sent.Success)

	events = drain(t, guest)
	req.Equal([]string{EventReceiveRoomInvitation}, types(events))
	inv := decodeAs[InvitationPayload](t, events[0])
	req.Equal(sent.InvitationID, inv.InvitationID)
	req.Equal("Secret", inv.RoomName)
	req.Equal("alice", inv.InviterName)

	// Duplicate invite fails with a reason
	f.hub.InviteUserToRoom(ctx, admin, room.ID, bob)
	events = drain(t, admin)
	dup := decodeAs[AckPayload](t, events[0])
	req.False(dup.Success)
	req.NotEmpty(dup.Message)

	f.bus.reset()
	f.hub.Dispatch(ctx, guest, frame(t, EventAcceptRoomInvitation, InvitationRequest{InvitationID: inv.InvitationID}))
	req.Len(f.bus.ofType(EventUserJoinedRoom), 1)
	events = drain(t, guest)
	req.Equal([]string{EventUserJoinedRoom, EventInvitationAccepted}, types(events))
	accepted := decodeAs[AckPayload](t, events[1])
	req.True(accepted.Success)
	req.Equal(room.ID, accepted.RoomID)
	req.Equal([]string{models.GroupName(room.ID)}, f.hub.Groups(guest))
	req.Equal([]string{EventUserJoinedRoom}, types(drain(t, admin)))

	// Declining an accepted invitation is a safe failure
	f.hub.DeclineRoomInvitation(ctx, guest, inv.InvitationID)
	events = drain(t, guest)
	req.Equal([]string{EventInvitationDeclined}, types(events))
	req.False(decodeAs[AckPayload](t, events[0]).Success)
}

func TestHub_Dispatch_RejectsBadFrames(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newHubFixture(t)
	s := f.connect(t, f.users[0].ID)
	drain(t, s)

	f.hub.Dispatch(ctx, s, []byte("{not json"))
	f.hub.Dispatch(ctx, s, frame(t, "Shout", RoomRequest{RoomID: 1}))
	f.hub.Dispatch(ctx, s, frame(t, EventJoinRoom, RoomRequest{}))

	events := drain(t, s)
	req.Equal([]string{EventError, EventError, EventError}, types(events))
	for _, evt := range events {
		payload := decodeAs[ErrorPayload](t, evt)
		req.Equal("invalid", payload.Kind)
		req.False(payload.Retryable)
	}
}

func TestHub_DropsEventsForSlowSessions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newHubFixture(t, WithSendBuffer(1))
	alice, bob := f.users[0].ID, f.users[1].ID
	room := f.createRoom(t, "General", false, alice)
	require.NoError(t, f.rooms.JoinPublicRoom(ctx, room.ID, bob))
	slow := f.connect(t, bob)
	sender := f.connect(t, alice)

	for range 5 {
		f.hub.SendMessageToRoom(ctx, sender, room.ID, "spam")
	}

	// The buffer holds one frame; the rest were dropped without blocking the sender
	req.Len(drain(t, slow), 1)
}

func TestHub_PresenceCountsSessions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rooms := mocks.NewMockRooms(ctrl)
	users := mocks.NewMockUserDirectory(ctrl)
	user := &models.User{ID: 7, Name: "dana"}

	// Given three sessions of the same user
	users.EXPECT().FindByID(gomock.Any(), uint(7)).Return(user, nil).Times(3)
	rooms.EXPECT().GetUserRooms(gomock.Any(), uint(7)).Return(nil, nil).Times(3)
	// Then presence is stored once per boundary crossing
	online := users.EXPECT().SetPresence(gomock.Any(), uint(7), true).Return(time.Now(), nil).Times(1)
	users.EXPECT().SetPresence(gomock.Any(), uint(7), false).Return(time.Now(), nil).Times(1).After(online)

	hub, err := NewHub(Services{Rooms: rooms, Users: users}, NewLocalBus(), testutil.Logger())
	req.NoError(err)

	sessions := make([]*Session, 0, 3)
	for range 3 {
		s, err := hub.Connect(ctx, 7)
		req.NoError(err)
		sessions = append(sessions, s)
	}
	for _, s := range sessions {
		hub.Disconnect(ctx, s)
	}
}

func TestHub_JoinSubscribesEverySession(t *testing.T) {
	ctx := context.Background()

	t.Run("should subscribe the user's other sessions on a public join", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		alice, bob := f.users[0].ID, f.users[1].ID
		room := f.createRoom(t, "General", false, alice)
		owner := f.connect(t, alice)
		tabA := f.connect(t, bob)
		tabB := f.connect(t, bob)
		for _, s := range []*Session{owner, tabA, tabB} {
			drain(t, s)
		}

		f.hub.Dispatch(ctx, tabA, frame(t, EventJoinRoom, RoomRequest{RoomID: room.ID}))

		group := models.GroupName(room.ID)
		req.Equal([]string{group}, f.hub.Groups(tabA))
		req.Equal([]string{group}, f.hub.Groups(tabB))
		req.Equal([]string{EventUserJoinedRoom}, types(drain(t, tabB)))
		drain(t, tabA)
		drain(t, owner)

		f.hub.SendMessageToRoom(ctx, owner, room.ID, "welcome")
		req.Equal([]string{EventReceiveRoomMessage}, types(drain(t, tabA)))
		req.Equal([]string{EventReceiveRoomMessage}, types(drain(t, tabB)))
	})

	t.Run("should subscribe the user's other sessions on an accepted invitation", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		alice, bob := f.users[0].ID, f.users[1].ID
		room := f.createRoom(t, "Secret", true, alice)
		admin := f.connect(t, alice)
		tabA := f.connect(t, bob)
		tabB := f.connect(t, bob)

		f.hub.InviteUserToRoom(ctx, admin, room.ID, bob)
		events := drain(t, tabA)
		req.Contains(types(events), EventReceiveRoomInvitation)
		inv := decodeAs[InvitationPayload](t, lo.Filter(events, func(e WsEvent, _ int) bool {
			return e.Type == EventReceiveRoomInvitation
		})[0])
		for _, s := range []*Session{admin, tabA, tabB} {
			drain(t, s)
		}

		f.hub.AcceptRoomInvitation(ctx, tabA, inv.InvitationID)

		group := models.GroupName(room.ID)
		req.Equal([]string{group}, f.hub.Groups(tabB))
		req.Equal([]string{EventUserJoinedRoom}, types(drain(t, tabB)))
		req.Equal([]string{EventUserJoinedRoom, EventInvitationAccepted}, types(drain(t, tabA)))
		drain(t, admin)

		f.hub.SendMessageToRoom(ctx, admin, room.ID, "hello both tabs")
		req.Equal([]string{EventReceiveRoomMessage}, types(drain(t, tabA)))
		req.Equal([]string{EventReceiveRoomMessage}, types(drain(t, tabB)))
	})

	t.Run("should leave sessions of other users untouched", func(t *testing.T) {
		req := require.New(t)
		f := newHubFixture(t)
		alice, bob, carol := f.users[0].ID, f.users[1].ID, f.users[2].ID
		room := f.createRoom(t, "General", false, alice)
		f.connect(t, alice)
		joiner := f.connect(t, bob)
		bystander := f.connect(t, carol)

		f.hub.JoinRoom(ctx, joiner, room.ID)

		req.Equal([]string{models.GroupName(room.ID)}, f.hub.Groups(joiner))
		req.Empty(f.hub.Groups(bystander))
	})
}

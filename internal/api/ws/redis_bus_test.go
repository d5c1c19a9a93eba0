package ws

import (
	"context"
	"testing"
	"time"

	"github.com/Wal-20/roomchat/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisBus_DeliversToEverySubscriber(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	client := newRedisClient(t)
	log := testutil.Logger()

	first := NewRedisBus(client, "roomchat:test", log)
	second := NewRedisBus(client, "roomchat:test", log)
	gotFirst := make(chan Envelope, 1)
	gotSecond := make(chan Envelope, 1)
	req.NoError(first.Subscribe(func(env Envelope) { gotFirst <- env }))
	req.NoError(second.Subscribe(func(env Envelope) { gotSecond <- env }))
	defer first.Close()
	defer second.Close()
	req.ErrorIs(first.Subscribe(func(Envelope) {}), ErrAlreadySubscribed)

	evt, err := NewEvent(EventUserJoinedRoom, MembershipPayload{RoomID: 3, UserID: 9, DisplayName: "Bob"})
	req.NoError(err)
	sent := Envelope{Target: TargetGroup, Group: "Room_3", Event: evt}
	req.NoError(first.Publish(ctx, sent))

	for _, ch := range []chan Envelope{gotFirst, gotSecond} {
		select {
		case env := <-ch:
			req.Equal(sent.Target, env.Target)
			req.Equal(sent.Group, env.Group)
			req.Equal(EventUserJoinedRoom, env.Event.Type)
			req.JSONEq(string(evt.Data), string(env.Event.Data))
		case <-time.After(2 * time.Second):
			req.Fail("envelope was not delivered")
		}
	}
}

func TestRedisBus_HubsShareGroups(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	client := newRedisClient(t)
	log := testutil.Logger()

	// Given a session on a hub whose bus is fed by Redis
	bus := NewRedisBus(client, "roomchat:hubs", log)
	h, err := NewHub(Services{}, bus, log)
	req.NoError(err)
	defer bus.Close()

	s := &Session{ID: "remote", UserID: 5, send: make(chan []byte, 4), groups: map[string]struct{}{}}
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.byUser[s.UserID] = map[string]*Session{s.ID: s}
	h.subscribeLocked(s, "Room_1")
	h.mu.Unlock()

	// When another instance publishes to the group
	other := NewRedisBus(client, "roomchat:hubs", log)
	evt, err := NewEvent(EventReceiveRoomMessage, MessagePayload{ID: 1, Content: "hi"})
	req.NoError(err)
	req.NoError(other.Publish(ctx, Envelope{Target: TargetGroup, Group: "Room_1", Event: evt}))

	select {
	case frame := <-s.Events():
		req.Contains(string(frame), EventReceiveRoomMessage)
	case <-time.After(2 * time.Second):
		req.Fail("frame was not delivered")
	}

	// And a subscribe control adds the user's sessions to another group
	req.NoError(other.Publish(ctx, Envelope{Target: TargetGroup, Group: "Room_2", UserID: 5, Subscribe: true}))
	req.Eventually(func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		_, ok := s.groups["Room_2"]
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// And an unsubscribe control removes the user's sessions from the group
	req.NoError(other.Publish(ctx, Envelope{Target: TargetGroup, Group: "Room_1", UserID: 5, Unsubscribe: true}))
	req.Eventually(func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		_, ok := s.groups["Room_1"]
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

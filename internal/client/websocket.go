package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	stdpath "path"
	"sync"

	"github.com/Wal-20/roomchat/internal/api/ws"
	"github.com/gorilla/websocket"
)

// Conn is a live websocket session.
type Conn struct {
	conn   *websocket.Conn
	events chan ws.WsEvent
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Connect opens the realtime stream. The server subscribes it to every room the user belongs to.
func (c *APIClient) Connect(ctx context.Context) (*Conn, error) {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = stdpath.Join(u.Path, "ws")

	header := http.Header{}
	if c.accessToken != "" {
		header.Set("Authorization", "Bearer "+c.accessToken)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("ws dial failed: %s", resp.Status)
		}
		return nil, fmt.Errorf("ws dial error: %w", err)
	}

	wc := &Conn{
		conn:   conn,
		events: make(chan ws.WsEvent, 32),
		done:   make(chan struct{}),
	}
	go wc.readLoop()
	return wc, nil
}

func (c *Conn) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var evt ws.WsEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}
		select {
		case c.events <- evt:
		case <-c.done:
			return
		}
	}
}

// Events yields server frames until the connection closes.
func (c *Conn) Events() <-chan ws.WsEvent { return c.events }

func (c *Conn) Send(eventType string, payload any) error {
	evt, err := ws.NewEvent(eventType, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Conn) SendMessageToRoom(roomID uint, content string) error {
	return c.Send(ws.EventSendMessageToRoom, ws.SendMessageToRoomRequest{RoomID: roomID, Content: content})
}

func (c *Conn) SendPrivateMessage(recipientID uint, content string) error {
	return c.Send(ws.EventSendPrivateMessage, ws.SendPrivateMessageRequest{RecipientID: recipientID, Content: content})
}

func (c *Conn) JoinRoom(roomID uint) error {
	return c.Send(ws.EventJoinRoom, ws.RoomRequest{RoomID: roomID})
}

// LeaveRoom stops this connection listening to the room without giving up membership.
func (c *Conn) LeaveRoom(roomID uint) error {
	return c.Send(ws.EventLeaveRoom, ws.RoomRequest{RoomID: roomID})
}

func (c *Conn) LeaveRoomPermanently(roomID uint) error {
	return c.Send(ws.EventLeaveRoomPermanently, ws.RoomRequest{RoomID: roomID})
}

func (c *Conn) InviteUserToRoom(roomID, inviteeID uint) error {
	return c.Send(ws.EventInviteUserToRoom, ws.InviteUserRequest{RoomID: roomID, InviteeID: inviteeID})
}

func (c *Conn) AcceptRoomInvitation(invitationID uint) error {
	return c.Send(ws.EventAcceptRoomInvitation, ws.InvitationRequest{InvitationID: invitationID})
}

func (c *Conn) DeclineRoomInvitation(invitationID uint) error {
	return c.Send(ws.EventDeclineRoomInvitation, ws.InvitationRequest{InvitationID: invitationID})
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// Client pumps frames between one websocket connection and its hub session.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	session *Session
	log     *slog.Logger
}

// Serve connects userID to the hub and runs the connection until either side closes.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, userID uint) error {
	s, err := h.Connect(ctx, userID)
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "connect failed"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return err
	}
	c := &Client{hub: h, conn: conn, session: s, log: h.log.With("session_id", s.ID, "user_id", userID)}
	go c.writePump()
	c.readPump(ctx)
	return nil
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Disconnect(context.WithoutCancel(ctx), c.session)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Websocket read failed", "error", err)
			}
			return
		}
		c.hub.Dispatch(ctx, c.session, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.session.Events():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

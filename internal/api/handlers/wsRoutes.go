package handlers

import (
	"context"

	"github.com/Wal-20/roomchat/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// RoomWebSocket upgrades the authenticated request and hands the connection to the hub.
func (h *Handlers) RoomWebSocket(c *gin.Context) {
	userID := middleware.UserID(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.Log.Warn("Websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	// The session outlives the handshake request.
	ctx := context.WithoutCancel(c.Request.Context())
	if err := h.Hub.Serve(ctx, conn, userID); err != nil {
		h.Log.Warn("Websocket session refused", "user_id", userID, "error", err)
	}
}

package handlers

import (
	"net/http"

	"github.com/Wal-20/roomchat/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handlers) GetRoomMessages(c *gin.Context) {
	page, err := pageOf(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	messages, err := h.Messages.GetRoomMessages(c.Request.Context(), middleware.RoomID(c), middleware.UserID(c), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handlers) GetPrivateMessages(c *gin.Context) {
	otherID, err := pathID(c, "userId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	page, err := pageOf(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	messages, err := h.Messages.GetPrivateMessages(c.Request.Context(), middleware.UserID(c), otherID, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handlers) MarkMessageRead(c *gin.Context) {
	messageID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}
	if err := h.Messages.MarkRead(c.Request.Context(), messageID, middleware.UserID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"github.com/Wal-20/roomchat/internal/api/middleware"
	"github.com/Wal-20/roomchat/internal/services"
	"github.com/gin-gonic/gin"
)

func (h *Handlers) CreateRoom(c *gin.Context) {
	var in services.CreateRoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to decode request body"})
		return
	}
	in.CreatorID = middleware.UserID(c)

	room, err := h.Rooms.CreateRoom(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

func (h *Handlers) GetPublicRooms(c *gin.Context) {
	rooms, err := h.Rooms.GetPublicRooms(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handlers) SearchRooms(c *gin.Context) {
	userID := middleware.UserID(c)
	rooms, err := h.Rooms.SearchRooms(c.Request.Context(), c.Query("q"), &userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoom is only reachable for members; private rooms stay invisible to others.
func (h *Handlers) GetRoom(c *gin.Context) {
	room, err := h.Rooms.GetRoom(c.Request.Context(), middleware.RoomID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (h *Handlers) GetRoomMembers(c *gin.Context) {
	users, err := h.Rooms.GetRoomMembers(c.Request.Context(), middleware.RoomID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handlers) GetUserRooms(c *gin.Context) {
	rooms, err := h.Rooms.GetUserRooms(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

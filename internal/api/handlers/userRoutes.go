package handlers

import (
	"net/http"

	"github.com/Wal-20/roomchat/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handlers) GetMe(c *gin.Context) {
	user, err := h.Users.FindByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handlers) GetOnlineUsers(c *gin.Context) {
	users, err := h.Users.GetOnlineUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handlers) SearchUsers(c *gin.Context) {
	users, err := h.Users.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package handlers

import (
	"net/http"

	"github.com/Wal-20/roomchat/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

func (h *Handlers) GetPendingInvitations(c *gin.Context) {
	invitations, err := h.Invitations.GetPendingInvitations(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

func (h *Handlers) GetInvitation(c *gin.Context) {
	invitationID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invitation ID"})
		return
	}
	invitation, err := h.Invitations.GetInvitation(c.Request.Context(), invitationID, middleware.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": invitation})
}

package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const roomIDKey = "roomID"

type MembershipChecker interface {
	IsRoomMemberCached(ctx context.Context, roomID, userID uint) (bool, error)
}

// RoomMemberMiddleware only lets members of the room named by the :id path parameter through.
func RoomMemberMiddleware(rooms MembershipChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || roomID == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
			return
		}

		isMember, err := rooms.IsRoomMemberCached(c.Request.Context(), uint(roomID), UserID(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to check membership"})
			return
		}
		if !isMember {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User is not a member of this room"})
			return
		}

		c.Set(roomIDKey, uint(roomID))
		c.Next()
	}
}

func RoomID(c *gin.Context) uint {
	return c.GetUint(roomIDKey)
}

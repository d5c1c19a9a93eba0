package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Wal-20/roomchat/internal/api/ws"
	"github.com/Wal-20/roomchat/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handlers serves the REST and websocket endpoints.
type Handlers struct {
	Rooms       *services.RoomService
	Invitations *services.InvitationService
	Messages    *services.MessageService
	Users       *services.UserService
	Hub         *ws.Hub
	Log         *slog.Logger

	upgrader websocket.Upgrader
}

func New(rooms *services.RoomService, invitations *services.InvitationService, messages *services.MessageService,
	users *services.UserService, hub *ws.Hub, checkOrigin func(*http.Request) bool, log *slog.Logger) *Handlers {
	return &Handlers{
		Rooms:       rooms,
		Invitations: invitations,
		Messages:    messages,
		Users:       users,
		Hub:         hub,
		Log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func statusOf(err error) int {
	switch services.KindOf(err) {
	case services.KindAuthorization:
		return http.StatusForbidden
	case services.KindConflict:
		return http.StatusConflict
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindInvalid:
		return http.StatusBadRequest
	case services.KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.Log.Error("Request failed", "path", c.FullPath(), "error", err)
		message = "internal error"
	}
	c.JSON(status, gin.H{
		"error":     message,
		"kind":      services.KindOf(err).String(),
		"retryable": services.Retryable(err),
	})
}

var errBadID = errors.New("invalid id")

func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errBadID
	}
	return uint(id), nil
}

func pageOf(c *gin.Context) (services.Page, error) {
	var p services.Page
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, errors.New("invalid page")
		}
		p.Number = n
	}
	if raw := c.Query("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, errors.New("invalid pageSize")
		}
		p.Size = n
	}
	return p, nil
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Wal-20/roomchat/internal/api/handlers"
	"github.com/Wal-20/roomchat/internal/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
}

func NewRouter(h *handlers.Handlers, cfg RouterConfig, authCache *cache.Cache, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CheckCORS(cfg.AllowedOrigins))

	r.GET("/api/health", handlers.Health)

	auth := middleware.AuthMiddleware(cfg.JWTSecret, authCache)
	r.GET("/ws", middleware.AuthMiddleware(cfg.JWTSecret, authCache, middleware.AllowQueryToken()), h.RoomWebSocket)

	apiGroup := r.Group("/api", auth)
	{
		rooms := apiGroup.Group("/rooms")
		rooms.POST("", h.CreateRoom)
		rooms.GET("/public", h.GetPublicRooms)
		rooms.GET("/search", h.SearchRooms)

		member := rooms.Group("/:id", middleware.RoomMemberMiddleware(h.Rooms))
		member.GET("", h.GetRoom)
		member.GET("/members", h.GetRoomMembers)
		member.GET("/messages", h.GetRoomMessages)

		users := apiGroup.Group("/users")
		users.GET("/me", h.GetMe)
		users.GET("/me/rooms", h.GetUserRooms)
		users.GET("/me/invitations", h.GetPendingInvitations)
		users.GET("/online", h.GetOnlineUsers)
		users.GET("/search", h.SearchUsers)

		apiGroup.GET("/invitations/:id", h.GetInvitation)

		messages := apiGroup.Group("/messages")
		messages.GET("/private/:userId", h.GetPrivateMessages)
		messages.POST("/:id/read", h.MarkMessageRead)
	}

	return r
}

func NewServer(addr string, router http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

package handler

import (
	"net/http"

	"pairchat/internal/middleware"
	"pairchat/internal/services"
	"pairchat/internal/websocket"
	"pairchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Messages *services.MessageService
	Presence *services.PresenceService
	Uploads  *services.UploadService
	WS       *websocket.Handler
	Log      *logger.Logger
}

// NewRouter builds the gin engine with all routes and middleware wired.
func NewRouter(mode string, deps RouterDeps) *gin.Engine {
	if mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(deps.Log))
	router.Use(middleware.ErrorHandler(deps.Log))

	messageHandler := NewMessageHandler(deps.Messages)
	userHandler := NewUserHandler(deps.Users, deps.Presence)
	typingHandler := NewTypingHandler(deps.Presence)
	webhookHandler := NewWebhookHandler(deps.Auth, deps.Users)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Webhook deliveries authenticate with an HMAC signature, not a
	// bearer token.
	router.POST("/webhooks/identity", webhookHandler.Identity)

	// The WebSocket endpoint authenticates via query token inside the
	// handler itself.
	if deps.WS != nil {
		router.GET("/ws", deps.WS.Connect)
	}

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(deps.Auth, deps.Users))
	{
		messages := api.Group("/messages")
		{
			messages.GET("/unread/:id", messageHandler.UnreadCount)
			messages.GET("/:id", messageHandler.List)
			messages.POST("/send/:id", messageHandler.Send)
			messages.PUT("/mark-read/:id", messageHandler.MarkRead)
		}

		users := api.Group("/users")
		{
			users.GET("", userHandler.List)
			users.GET("/me", userHandler.Me)
			users.POST("/status", userHandler.SetStatus)
		}

		api.POST("/typing", typingHandler.Relay)

		if deps.Uploads != nil {
			uploadHandler := NewUploadHandler(deps.Uploads)
			api.POST("/uploads/presign", uploadHandler.Presign)
		}
	}

	return router
}

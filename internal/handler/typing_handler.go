package handler

import (
	"net/http"

	"pairchat/internal/services"
	"pairchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TypingHandler struct {
	presence *services.PresenceService
}

func NewTypingHandler(presence *services.PresenceService) *TypingHandler {
	return &TypingHandler{presence: presence}
}

// Relay handles POST /api/typing. Nothing is persisted; the indicator is
// published on the conversation channel and receivers expire it locally.
func (h *TypingHandler) Relay(c *gin.Context) {
	var req httpdto.TypingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid receiver_id", "INVALID_REQUEST"))
		return
	}

	if err := h.presence.Typing(c.Request.Context(), userID, receiverID, req.IsTyping); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"success": true}))
}

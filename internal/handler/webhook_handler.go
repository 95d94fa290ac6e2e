package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"pairchat/internal/services"
	"pairchat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives identity-provider user lifecycle events.
type WebhookHandler struct {
	auth  *services.AuthService
	users *services.UserService
}

func NewWebhookHandler(auth *services.AuthService, users *services.UserService) *WebhookHandler {
	return &WebhookHandler{auth: auth, users: users}
}

type identityWebhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		ImageURL  string `json:"image_url"`
	} `json:"data"`
}

// Identity handles POST /webhooks/identity. The delivery is authenticated
// with an HMAC signature header, not a user session.
func (h *WebhookHandler) Identity(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid body", "INVALID_REQUEST"))
		return
	}

	if err := h.auth.VerifyWebhookSignature(body, c.GetHeader("X-Webhook-Signature")); err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("invalid signature", "UNAUTHORIZED"))
		return
	}

	var event identityWebhookBody
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid body", "INVALID_REQUEST"))
		return
	}

	err = h.users.HandleIdentityEvent(c.Request.Context(), event.Type, services.WebhookIdentity{
		ExternalID: event.Data.ID,
		Email:      event.Data.Email,
		Username:   event.Data.Username,
		FirstName:  event.Data.FirstName,
		LastName:   event.Data.LastName,
		AvatarURL:  event.Data.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"received": true}))
}

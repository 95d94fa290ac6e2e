package middleware

import (
	"context"
	"net/http"
	"strings"

	"pairchat/internal/services"
	"pairchat/internal/transport/httpdto"
	"pairchat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and lazily syncs the user
// from its claims, so the first authenticated request creates the row.
func AuthMiddleware(auth *services.AuthService, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		claims, err := auth.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		user, err := users.EnsureUser(c.Request.Context(), claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		ctx := services.WithAuthUser(c.Request.Context(), services.AuthUser{
			ID:         user.ID,
			ExternalID: user.ExternalID,
		})
		ctx = context.WithValue(ctx, logger.UserIdKey, user.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

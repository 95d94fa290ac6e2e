package services

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// AuthUser is the resolved caller placed on the request context by the
// auth middleware.
type AuthUser struct {
	ID         uuid.UUID
	ExternalID string
}

func WithAuthUser(ctx context.Context, user AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func AuthUserFromContext(ctx context.Context) (AuthUser, bool) {
	user, ok := ctx.Value(userContextKey).(AuthUser)
	return user, ok
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	user, ok := AuthUserFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}

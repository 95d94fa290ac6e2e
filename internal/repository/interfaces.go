package repository

import (
	"context"

	"pairchat/internal/domain"

	"github.com/google/uuid"
)

// UserRepository is the persistence port for users.
type UserRepository interface {
	Upsert(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	ListOthers(ctx context.Context, userID uuid.UUID) ([]domain.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (domain.User, error)
	DeleteByExternalID(ctx context.Context, externalID string) error
}

// MessageRepository is the persistence port for messages.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	ListConversation(ctx context.Context, conversationKey string) ([]domain.Message, error)
	// MarkConversationRead flips every unread message from senderID to
	// receiverID in one batch update and returns the flipped ids.
	MarkConversationRead(ctx context.Context, senderID, receiverID uuid.UUID) ([]uuid.UUID, error)
	UnreadCount(ctx context.Context, senderID, receiverID uuid.UUID) (int64, error)
	LastMessage(ctx context.Context, conversationKey string) (domain.Message, error)
}

package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"pairchat/internal/domain"
	"pairchat/internal/events"
	"pairchat/internal/repository"
	chat_errors "pairchat/pkg/errors"
	"pairchat/pkg/logger"

	"github.com/google/uuid"
)

// UserService syncs users from the identity provider and serves the
// sidebar listing.
type UserService struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	log         *logger.Logger
}

func NewUserService(userRepo repository.UserRepository, messageRepo repository.MessageRepository, log *logger.Logger) *UserService {
	return &UserService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		log:         log,
	}
}

// EnsureUser upserts a user row from provider claims. Called on every
// authenticated request so a user exists lazily the first time the
// provider sends us a valid token, and profile edits flow through.
func (s *UserService) EnsureUser(ctx context.Context, claims IdentityClaims) (domain.User, error) {
	u := domain.User{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Username:   toNullString(claims.Username),
		FirstName:  toNullString(claims.FirstName),
		LastName:   toNullString(claims.LastName),
		AvatarURL:  toNullString(claims.AvatarURL),
	}
	if err := s.userRepo.Upsert(ctx, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Identity webhook event kinds.
const (
	WebhookUserCreated = "user.created"
	WebhookUserUpdated = "user.updated"
	WebhookUserDeleted = "user.deleted"
)

type WebhookIdentity struct {
	ExternalID string
	Email      string
	Username   string
	FirstName  string
	LastName   string
	AvatarURL  string
}

// HandleIdentityEvent applies one identity-provider webhook delivery.
// Created and updated share upsert semantics; deletion removes the row.
func (s *UserService) HandleIdentityEvent(ctx context.Context, kind string, identity WebhookIdentity) error {
	if identity.ExternalID == "" {
		return chat_errors.ErrInvalidInput
	}
	switch kind {
	case WebhookUserCreated, WebhookUserUpdated:
		u := domain.User{
			ExternalID: identity.ExternalID,
			Email:      identity.Email,
			Username:   toNullString(identity.Username),
			FirstName:  toNullString(identity.FirstName),
			LastName:   toNullString(identity.LastName),
			AvatarURL:  toNullString(identity.AvatarURL),
		}
		return s.userRepo.Upsert(ctx, &u)
	case WebhookUserDeleted:
		err := s.userRepo.DeleteByExternalID(ctx, identity.ExternalID)
		if errors.Is(err, chat_errors.ErrNotFound) {
			// Deleting a user we never synced is not an error.
			return nil
		}
		return err
	default:
		return chat_errors.ErrInvalidInput
	}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SidebarEntry is one row of the conversation list: the peer plus the
// last exchanged message and how many of their messages are unread.
type SidebarEntry struct {
	User        domain.User
	LastMessage *domain.Message
	UnreadCount int64
}

// Sidebar lists every other user with conversation context, ordered
// unread-first and then by last-message recency.
func (s *UserService) Sidebar(ctx context.Context, userID uuid.UUID) ([]SidebarEntry, error) {
	users, err := s.userRepo.ListOthers(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]SidebarEntry, 0, len(users))
	for _, u := range users {
		entry := SidebarEntry{User: u}

		last, err := s.messageRepo.LastMessage(ctx, events.ConversationKey(userID, u.ID))
		if err == nil {
			entry.LastMessage = &last
		} else if !errors.Is(err, chat_errors.ErrNotFound) {
			return nil, err
		}

		count, err := s.messageRepo.UnreadCount(ctx, u.ID, userID)
		if err != nil {
			return nil, err
		}
		entry.UnreadCount = count

		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.UnreadCount > 0) != (b.UnreadCount > 0) {
			return a.UnreadCount > 0
		}
		return lastMessageTime(a).After(lastMessageTime(b))
	})

	return entries, nil
}

func lastMessageTime(e SidebarEntry) time.Time {
	if e.LastMessage == nil {
		return time.Time{}
	}
	return e.LastMessage.CreatedAt
}

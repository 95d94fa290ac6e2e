package services

import (
	"context"
	"time"

	"pairchat/internal/domain"
	"pairchat/internal/events"
	"pairchat/internal/redis"
	"pairchat/internal/repository"
	chat_errors "pairchat/pkg/errors"
	"pairchat/pkg/logger"

	"github.com/google/uuid"
)

// PresenceService handles status persistence plus the ephemeral relays:
// presence broadcasts on the global channel, typing on the conversation
// channel. Typing is never persisted.
type PresenceService struct {
	userRepo repository.UserRepository
	presence *redis.PresenceStore
	broker   Broker
	log      *logger.Logger
}

func NewPresenceService(userRepo repository.UserRepository, presence *redis.PresenceStore, broker Broker, log *logger.Logger) *PresenceService {
	return &PresenceService{
		userRepo: userRepo,
		presence: presence,
		broker:   broker,
		log:      log,
	}
}

// SetStatus persists status and last-seen, refreshes the Redis presence
// cache, and broadcasts on the global presence channel. The row update is
// the operation; cache and broadcast failures are logged only.
func (s *PresenceService) SetStatus(ctx context.Context, userID uuid.UUID, status string) (domain.User, error) {
	if !domain.ValidStatus(status) {
		return domain.User{}, chat_errors.ErrInvalidInput
	}

	user, err := s.userRepo.UpdateStatus(ctx, userID, status)
	if err != nil {
		return domain.User{}, err
	}

	lastSeen := time.Now().UTC()
	if user.LastSeenAt.Valid {
		lastSeen = user.LastSeenAt.Time
	}

	if s.presence != nil {
		if err := s.presence.SetStatus(ctx, userID.String(), status, lastSeen); err != nil {
			s.log.Warnf("presence cache for %s: %v", userID, err)
		}
	}

	payload := events.PresencePayload{UserID: userID, Status: status, LastSeen: lastSeen}
	envelope, err := events.NewEnvelope(events.EventTypePresenceChanged, events.AggregateTypePresence, userID.String(), payload)
	if err != nil {
		s.log.Errorf("encode presence event: %v", err)
		return user, nil
	}
	s.publish(ctx, events.ChannelPresence, envelope)

	return user, nil
}

// Typing relays a typing indicator to the conversation channel. Receivers
// expire the flag on their own timer, so a lost stop event self-heals.
func (s *PresenceService) Typing(ctx context.Context, senderID, receiverID uuid.UUID, isTyping bool) error {
	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		return err
	}

	payload := events.TypingPayload{
		UserID:      senderID,
		DisplayName: sender.DisplayName(),
		IsTyping:    isTyping,
	}
	envelope, err := events.NewEnvelope(events.EventTypeTyping, events.AggregateTypeTyping, senderID.String(), payload)
	if err != nil {
		s.log.Errorf("encode typing event: %v", err)
		return nil
	}
	s.publish(ctx, events.ConversationChannel(senderID, receiverID), envelope)
	return nil
}

// Heartbeat refreshes the caller's presence TTL.
func (s *PresenceService) Heartbeat(ctx context.Context, userID uuid.UUID) {
	if s.presence == nil {
		return
	}
	if err := s.presence.Heartbeat(ctx, userID.String()); err != nil {
		s.log.Warnf("presence heartbeat for %s: %v", userID, err)
	}
}

func (s *PresenceService) publish(ctx context.Context, channel string, envelope events.Envelope) {
	data, err := envelope.Encode()
	if err != nil {
		s.log.Errorf("encode envelope: %v", err)
		return
	}
	if err := s.broker.Publish(ctx, channel, data); err != nil {
		s.log.Errorf("publish %s to %s: %v", envelope.EventType, channel, err)
	}
}

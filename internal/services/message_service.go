package services

import (
	"context"
	"database/sql"
	"time"

	"pairchat/internal/domain"
	"pairchat/internal/events"
	"pairchat/internal/repository"
	chat_errors "pairchat/pkg/errors"
	"pairchat/pkg/logger"

	"github.com/google/uuid"
)

// MessageService is the only writer of the messages table and the only
// publisher of message events.
type MessageService struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	broker      Broker
	log         *logger.Logger
}

func NewMessageService(userRepo repository.UserRepository, messageRepo repository.MessageRepository, broker Broker, log *logger.Logger) *MessageService {
	return &MessageService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		broker:      broker,
		log:         log,
	}
}

type SendMessageInput struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Content    string
	ImageURL   string
}

// Send persists the message and then pushes it to the conversation
// channel. The push is best-effort: a publish failure is logged and the
// call still succeeds, receivers catch up on their next fetch.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (domain.Message, error) {
	if in.Content == "" && in.ImageURL == "" {
		return domain.Message{}, chat_errors.ErrInvalidInput
	}
	if in.SenderID == in.ReceiverID {
		return domain.Message{}, chat_errors.ErrInvalidInput
	}

	sender, err := s.userRepo.GetByID(ctx, in.SenderID)
	if err != nil {
		return domain.Message{}, err
	}
	receiver, err := s.userRepo.GetByID(ctx, in.ReceiverID)
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Content:    toNullString(in.Content),
		ImageURL:   toNullString(in.ImageURL),
	}
	if err := s.messageRepo.Create(ctx, &msg); err != nil {
		return domain.Message{}, err
	}

	s.publishNewMessage(ctx, msg, sender, receiver)
	return msg, nil
}

// List returns the conversation between userID and peerID ascending by
// creation time. As a side effect every unread peer→user message is
// marked read, but the returned slice carries the pre-mutation read
// state: the response answers "was it read before this fetch".
func (s *MessageService) List(ctx context.Context, userID, peerID uuid.UUID) ([]domain.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, peerID); err != nil {
		return nil, err
	}

	key := events.ConversationKey(userID, peerID)
	messages, err := s.messageRepo.ListConversation(ctx, key)
	if err != nil {
		return nil, err
	}

	if _, err := s.messageRepo.MarkConversationRead(ctx, peerID, userID); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkRead batch-flips every unread otherUserID→userID message and, when
// anything changed, pushes a read receipt to the sender's user channel so
// their client can flip local flags without a re-fetch.
func (s *MessageService) MarkRead(ctx context.Context, userID, otherUserID uuid.UUID) (int64, error) {
	ids, err := s.messageRepo.MarkConversationRead(ctx, otherUserID, userID)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	payload := events.MessageReadPayload{
		ReaderID:        userID,
		ConversationKey: events.ConversationKey(userID, otherUserID),
		MessageIDs:      ids,
		ReadAt:          time.Now().UTC(),
	}
	envelope, err := events.NewEnvelope(events.EventTypeMessageRead, events.AggregateTypeReceipt, payload.ConversationKey, payload)
	if err != nil {
		s.log.Errorf("encode read receipt event: %v", err)
	} else {
		s.publish(ctx, events.UserChannel(otherUserID), envelope)
	}

	return int64(len(ids)), nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID, otherUserID uuid.UUID) (int64, error) {
	return s.messageRepo.UnreadCount(ctx, otherUserID, userID)
}

func (s *MessageService) publishNewMessage(ctx context.Context, msg domain.Message, sender, receiver domain.User) {
	payload := events.MessageNewPayload{
		ID:              msg.ID,
		ConversationKey: msg.ConversationKey,
		SenderID:        msg.SenderID,
		ReceiverID:      msg.ReceiverID,
		Content:         msg.Content.String,
		ImageURL:        msg.ImageURL.String,
		Read:            msg.Read,
		CreatedAt:       msg.CreatedAt,
		Sender:          profileRef(sender),
		Receiver:        profileRef(receiver),
	}
	envelope, err := events.NewEnvelope(events.EventTypeMessageNew, events.AggregateTypeMessage, msg.ID.String(), payload)
	if err != nil {
		s.log.Errorf("encode message event: %v", err)
		return
	}
	s.publish(ctx, events.ConversationChannel(msg.SenderID, msg.ReceiverID), envelope)
}

func (s *MessageService) publish(ctx context.Context, channel string, envelope events.Envelope) {
	data, err := envelope.Encode()
	if err != nil {
		s.log.Errorf("encode envelope: %v", err)
		return
	}
	if err := s.broker.Publish(ctx, channel, data); err != nil {
		s.log.Errorf("publish %s to %s: %v", envelope.EventType, channel, err)
	}
}

func profileRef(u domain.User) events.ProfileRef {
	return events.ProfileRef{
		ID:          u.ID,
		DisplayName: u.DisplayName(),
		AvatarURL:   u.AvatarURL.String,
	}
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

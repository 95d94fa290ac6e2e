package events

import (
	"time"

	"github.com/google/uuid"
)

// ProfileRef carries the denormalized profile fields delivered alongside
// a message so clients can render without an extra user fetch.
type ProfileRef struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}

// MessageNewPayload is pushed on the conversation channel when a message
// is created.
type MessageNewPayload struct {
	ID              uuid.UUID  `json:"id"`
	ConversationKey string     `json:"conversation_key"`
	SenderID        uuid.UUID  `json:"sender_id"`
	ReceiverID      uuid.UUID  `json:"receiver_id"`
	Content         string     `json:"content,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	Read            bool       `json:"read"`
	CreatedAt       time.Time  `json:"created_at"`
	Sender          ProfileRef `json:"sender"`
	Receiver        ProfileRef `json:"receiver"`
}

// MessageReadPayload is pushed on the original sender's user channel when
// a batch of their messages flips to read.
type MessageReadPayload struct {
	ReaderID        uuid.UUID   `json:"reader_id"`
	ConversationKey string      `json:"conversation_key"`
	MessageIDs      []uuid.UUID `json:"message_ids"`
	ReadAt          time.Time   `json:"read_at"`
}

// TypingPayload is relayed on the conversation channel; never persisted.
type TypingPayload struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	IsTyping    bool      `json:"is_typing"`
}

// PresencePayload is broadcast on the global presence channel.
type PresencePayload struct {
	UserID   uuid.UUID `json:"user_id"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
}

package httpdto

import (
	"time"

	"pairchat/internal/domain"
)

// SendMessageRequest is the body for POST /api/messages/send/:id.
// Either content or image_url must be present.
type SendMessageRequest struct {
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}

// TypingRequest is the body for POST /api/typing.
type TypingRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
	IsTyping   bool   `json:"is_typing"`
}

// MessageDTO represents a message in API responses.
type MessageDTO struct {
	ID              string `json:"id"`
	ConversationKey string `json:"conversation_key"`
	SenderID        string `json:"sender_id"`
	ReceiverID      string `json:"receiver_id"`
	Content         string `json:"content,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	Read            bool   `json:"read"`
	ReadAt          string `json:"read_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// MarkReadResponse is returned by PUT /api/messages/mark-read/:id.
type MarkReadResponse struct {
	MarkedAsRead int64 `json:"marked_as_read"`
}

// UnreadCountResponse is returned by GET /api/messages/unread/:id.
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// FromMessage converts a domain message to MessageDTO.
func FromMessage(m domain.Message) MessageDTO {
	dto := MessageDTO{
		ID:              m.ID.String(),
		ConversationKey: m.ConversationKey,
		SenderID:        m.SenderID.String(),
		ReceiverID:      m.ReceiverID.String(),
		Read:            m.Read,
		CreatedAt:       m.CreatedAt.Format(time.RFC3339Nano),
	}
	if m.Content.Valid {
		dto.Content = m.Content.String
	}
	if m.ImageURL.Valid {
		dto.ImageURL = m.ImageURL.String
	}
	if m.ReadAt.Valid {
		dto.ReadAt = m.ReadAt.Time.Format(time.RFC3339Nano)
	}
	return dto
}

// FromMessageSlice converts a slice of domain messages to MessageDTO slice.
func FromMessageSlice(messages []domain.Message) []MessageDTO {
	dtos := make([]MessageDTO, len(messages))
	for i, m := range messages {
		dtos[i] = FromMessage(m)
	}
	return dtos
}

package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Message represents the messages table. A message belongs to exactly one
// conversation, the unordered pair {SenderID, ReceiverID}; ConversationKey
// is the canonical sorted form of that pair. Content is mutated only by
// flipping the read flag, never edited or deleted.
type Message struct {
	ID              uuid.UUID
	ConversationKey string
	SenderID        uuid.UUID
	ReceiverID      uuid.UUID
	Content         sql.NullString
	ImageURL        sql.NullString
	Read            bool
	ReadAt          sql.NullTime
	CreatedAt       time.Time
}

// HasBody reports whether the message carries any content at all.
// Either text or an image reference is required.
func (m Message) HasBody() bool {
	return (m.Content.Valid && m.Content.String != "") || (m.ImageURL.Valid && m.ImageURL.String != "")
}

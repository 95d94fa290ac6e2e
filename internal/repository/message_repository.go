package repository

import (
	"context"
	"database/sql"
	"errors"

	"pairchat/internal/domain"
	"pairchat/internal/events"
	chat_errors "pairchat/pkg/errors"

	"github.com/google/uuid"
)

type PostgresMessageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

const messageColumns = `id, conversation_key, sender_id, receiver_id, content, image_url, read, read_at, created_at`

func (r *PostgresMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.ConversationKey == "" {
		m.ConversationKey = events.ConversationKey(m.SenderID, m.ReceiverID)
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO messages (id, conversation_key, sender_id, receiver_id, content, image_url, read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING created_at`,
		m.ID, m.ConversationKey, m.SenderID, m.ReceiverID, m.Content, m.ImageURL)
	if err := row.Scan(&m.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return chat_errors.ErrAlreadyExists
		}
		return err
	}
	m.Read = false
	return nil
}

func (r *PostgresMessageRepository) ListConversation(ctx context.Context, conversationKey string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE conversation_key = $1
		ORDER BY created_at ASC`, conversationKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkConversationRead is a single update-many; concurrent callers race on
// the store's atomic filter, not on application state.
func (r *PostgresMessageRepository) MarkConversationRead(ctx context.Context, senderID, receiverID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE messages SET read = TRUE, read_at = now()
		WHERE sender_id = $1 AND receiver_id = $2 AND read = FALSE
		RETURNING id`, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresMessageRepository) UnreadCount(ctx context.Context, senderID, receiverID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE sender_id = $1 AND receiver_id = $2 AND read = FALSE`,
		senderID, receiverID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresMessageRepository) LastMessage(ctx context.Context, conversationKey string) (domain.Message, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE conversation_key = $1
		ORDER BY created_at DESC
		LIMIT 1`, conversationKey)
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Message{}, chat_errors.ErrNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

func scanMessage(row rowScanner) (domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.ConversationKey, &m.SenderID, &m.ReceiverID, &m.Content,
		&m.ImageURL, &m.Read, &m.ReadAt, &m.CreatedAt)
	return m, err
}

package database

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

	`CREATE TABLE IF NOT EXISTS users (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		external_id  TEXT NOT NULL UNIQUE,
		email        TEXT NOT NULL UNIQUE,
		username     TEXT,
		first_name   TEXT,
		last_name    TEXT,
		avatar_url   TEXT,
		status       TEXT NOT NULL DEFAULT 'offline',
		last_seen_at TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		conversation_key TEXT NOT NULL,
		sender_id        UUID NOT NULL REFERENCES users(id),
		receiver_id      UUID NOT NULL REFERENCES users(id),
		content          TEXT,
		image_url        TEXT,
		read             BOOLEAN NOT NULL DEFAULT FALSE,
		read_at          TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT messages_body_present CHECK (content IS NOT NULL OR image_url IS NOT NULL)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_conversation
		ON messages (conversation_key, created_at)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_unread
		ON messages (receiver_id, sender_id) WHERE read = FALSE`,
}

// Migrate applies the schema statements in order. Statements are
// idempotent so re-running on startup is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

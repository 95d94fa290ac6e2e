package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Presence statuses stored on the users table.
const (
	StatusOnline  = "online"
	StatusAway    = "away"
	StatusOffline = "offline"
)

// User represents the users table. Identity lives with the external
// auth provider; rows are upserted from identity events or lazily on
// the first authenticated request.
type User struct {
	ID         uuid.UUID
	ExternalID string
	Email      string
	Username   sql.NullString
	FirstName  sql.NullString
	LastName   sql.NullString
	AvatarURL  sql.NullString
	Status     string
	LastSeenAt sql.NullTime
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName builds a human-readable name from the optional profile parts.
func (u User) DisplayName() string {
	switch {
	case u.FirstName.Valid && u.LastName.Valid:
		return u.FirstName.String + " " + u.LastName.String
	case u.FirstName.Valid:
		return u.FirstName.String
	case u.Username.Valid:
		return u.Username.String
	default:
		return u.Email
	}
}

// ValidStatus reports whether s is one of the presence statuses.
func ValidStatus(s string) bool {
	return s == StatusOnline || s == StatusAway || s == StatusOffline
}

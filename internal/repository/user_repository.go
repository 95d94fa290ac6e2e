package repository

import (
	"context"
	"database/sql"
	"errors"

	"pairchat/internal/domain"
	chat_errors "pairchat/pkg/errors"

	"github.com/google/uuid"
)

type PostgresUserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, external_id, email, username, first_name, last_name, avatar_url, status, last_seen_at, created_at, updated_at`

// Upsert inserts the user or, when the external id already exists,
// refreshes the profile fields. The row id and timestamps are read back
// into u so callers observe the stable internal id on repeat syncs.
func (r *PostgresUserRepository) Upsert(ctx context.Context, u *domain.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Status == "" {
		u.Status = domain.StatusOffline
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, external_id, email, username, first_name, last_name, avatar_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (external_id) DO UPDATE SET
			email = EXCLUDED.email,
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = now()
		RETURNING `+userColumns,
		u.ID, u.ExternalID, u.Email, u.Username, u.FirstName, u.LastName, u.AvatarURL, u.Status)

	stored, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return chat_errors.ErrAlreadyExists
		}
		return err
	}
	*u = stored
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, chat_errors.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) ListOthers(ctx context.Context, userID uuid.UUID) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id <> $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PostgresUserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE users SET status = $2, last_seen_at = now(), updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, status)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, chat_errors.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) DeleteByExternalID(ctx context.Context, externalID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE external_id = $1`, externalID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.ExternalID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.AvatarURL, &u.Status, &u.LastSeenAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

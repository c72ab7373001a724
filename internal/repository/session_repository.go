package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hamdk/auth-service/internal/model"
)

// SessionRepo persists refresh sessions keyed by the token string.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Save inserts a refresh session row. The unique index on token rejects a
// replayed insert with ErrDuplicateToken.
func (r *SessionRepo) Save(ctx context.Context, s *model.RefreshSession) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_sessions (token, user_id, created_at, expires_at) VALUES (?,?,?,?)",
		s.Token, s.UserID, s.CreatedAt, s.ExpiresAt)
	if err != nil && isDuplicateKey(err) {
		return ErrDuplicateToken
	}
	return err
}

// FindByToken looks up a session by exact token string. Expiry is not
// checked here; the auth layer distinguishes expired from missing.
func (r *SessionRepo) FindByToken(ctx context.Context, token string) (*model.RefreshSession, error) {
	var s model.RefreshSession
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, token, user_id, created_at, expires_at FROM refresh_sessions WHERE token=? LIMIT 1",
		token).Scan(&s.ID, &s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

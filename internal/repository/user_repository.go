package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/hamdk/auth-service/internal/model"
)

// UserRepo is the identity directory backed by the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,nickname,provider,provider_subject_id,role,is_active,created_at,updated_at"

// Create inserts a user and returns its ID. Uniqueness is enforced by the
// table constraints, not an application lock: a duplicate-key error is
// mapped to ErrDuplicateEmail or ErrDuplicateSubject depending on which
// index rejected the row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, nickname, provider, provider_subject_id, role, is_active) VALUES (?,?,?,?,?,?,?)",
		NormalizeEmail(u.Email), nullable(u.PasswordHash), u.Nickname,
		u.Provider, nullable(u.ProviderSubjectID), u.Role, u.IsActive)
	if err != nil {
		if isDuplicateKey(err) {
			if strings.Contains(err.Error(), "uq_users_provider_subject") {
				return 0, ErrDuplicateSubject
			}
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		NormalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByProviderSubject fetches the user linked to an external identity.
func (r *UserRepo) GetByProviderSubject(ctx context.Context, provider, subjectID string) (*model.User, error) {
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE provider=? AND provider_subject_id=? LIMIT 1",
		provider, subjectID)
}

// ExistsByEmail reports whether a user with the normalized email exists.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE email=? LIMIT 1",
		NormalizeEmail(email)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, args ...any) (*model.User, error) {
	var (
		u       model.User
		pwHash  sql.NullString
		subject sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Email, &pwHash, &u.Nickname, &u.Provider, &subject,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.PasswordHash = pwHash.String
	u.ProviderSubjectID = subject.String
	return &u, nil
}

// NormalizeEmail lowercases and trims an email so that lookups and the
// unique constraint agree on one canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return strings.Contains(err.Error(), "1062") ||
		strings.Contains(strings.ToLower(err.Error()), "duplicate entry")
}

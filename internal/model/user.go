package model

import "time"

// Provider identifies where an account's credentials live. LOCAL accounts
// carry a password hash; delegated accounts carry a provider subject id
// instead and may have no password at all.
const (
	ProviderLocal = "LOCAL"
	ProviderKakao = "KAKAO"
)

// RoleUser is the default role assigned at signup and on first delegated
// login. The auth core treats roles as opaque strings carried into tokens.
const RoleUser = "USER"

// User mirrors the `users` table.
//
// Fields:
//  ID                – primary key identifier of the user.
//  Email             – unique email address, stored lowercase-trimmed.
//  PasswordHash      – bcrypt hash; empty for delegated-only accounts.
//  Nickname          – display name.
//  Provider          – LOCAL or an external provider name (e.g. KAKAO).
//  ProviderSubjectID – provider's stable user id; empty for LOCAL accounts.
//                      (provider, provider_subject_id) is unique.
//  Role              – opaque role string embedded into tokens.
//  IsActive          – whether the account may authenticate.
//  CreatedAt         – timestamp of creation.
//  UpdatedAt         – timestamp of last update.
type User struct {
	ID                uint64    // users.id
	Email             string    // users.email
	PasswordHash      string    // users.password_hash (empty when NULL)
	Nickname          string    // users.nickname
	Provider          string    // users.provider
	ProviderSubjectID string    // users.provider_subject_id (empty when NULL)
	Role              string    // users.role
	IsActive          bool      // users.is_active
	CreatedAt         time.Time // users.created_at
	UpdatedAt         time.Time // users.updated_at
}

// RefreshSession models a row in the `refresh_sessions` table. The token
// column stores the refresh JWT verbatim; a session is alive until
// expires_at passes, checked lazily at refresh time. Rows are never
// updated once written.
//
// Fields:
//  ID        – primary key identifier.
//  Token     – the signed refresh token string (unique).
//  UserID    – owner of the session.
//  CreatedAt – timestamp of issuance.
//  ExpiresAt – issuance time plus the configured refresh lifetime.
type RefreshSession struct {
	ID        uint64    // refresh_sessions.id
	Token     string    // refresh_sessions.token
	UserID    uint64    // refresh_sessions.user_id
	CreatedAt time.Time // refresh_sessions.created_at
	ExpiresAt time.Time // refresh_sessions.expires_at
}

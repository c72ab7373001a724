package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hamdk/auth-service/internal/model"
	"github.com/hamdk/auth-service/internal/repository"
)

// UserStore is the identity directory the orchestrator depends on.
// Lookups report repository.ErrNotFound; Create reports the repository
// duplicate sentinels on unique-constraint violations.
type UserStore interface {
	Create(ctx context.Context, u *model.User) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByProviderSubject(ctx context.Context, provider, subjectID string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// SessionStore persists refresh sessions.
type SessionStore interface {
	Save(ctx context.Context, s *model.RefreshSession) error
	FindByToken(ctx context.Context, token string) (*model.RefreshSession, error)
}

// ProviderExchanger abstracts the delegated-login provider flow.
type ProviderExchanger interface {
	AuthorizationURL() string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*ProviderProfile, error)
}

// LoginResult is the transient aggregate handed back after a successful
// login. It is never persisted; the handler moves RefreshToken onto the
// cookie channel and blanks it before the body is serialized.
type LoginResult struct {
	UserID       uint64
	Email        string
	Nickname     string
	Provider     string
	Role         string
	AccessToken  string
	RefreshToken string
}

// Service composes the codec, stores and provider exchanger into the four
// auth operations. All collaborators are injected once at startup.
type Service struct {
	users      UserStore
	sessions   SessionStore
	codec      *TokenCodec
	provider   ProviderExchanger
	bcryptCost int
}

func NewService(users UserStore, sessions SessionStore, codec *TokenCodec, provider ProviderExchanger, bcryptCost int) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		codec:      codec,
		provider:   provider,
		bcryptCost: bcryptCost,
	}
}

// Signup registers a local account with a hashed password. A duplicate
// email reports ErrDuplicateIdentity; any other persistence failure is
// wrapped in ErrSignupFailed.
func (s *Service) Signup(ctx context.Context, email, password, nickname string) error {
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}
	u := &model.User{
		Email:        repository.NormalizeEmail(email),
		PasswordHash: hash,
		Nickname:     nickname,
		Provider:     model.ProviderLocal,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if _, err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}
	return nil
}

// Login authenticates a password credential. Unknown email and wrong
// password both report ErrInvalidCredential so the response does not
// reveal which check failed.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, repository.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredential
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	return s.issueTokens(ctx, u)
}

// AuthorizationURL exposes the provider consent URL for the redirect route.
func (s *Service) AuthorizationURL() string {
	return s.provider.AuthorizationURL()
}

// DelegatedLogin converts an authorization code into a local session:
// code -> provider token -> profile -> find-or-create identity -> tokens.
// Any upstream failure short-circuits with ErrExternalAuth and no partial
// identity is created.
func (s *Service) DelegatedLogin(ctx context.Context, code string) (*LoginResult, error) {
	providerToken, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAuth, err)
	}
	profile, err := s.provider.FetchProfile(ctx, providerToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAuth, err)
	}
	u, err := s.resolveOrCreateIdentity(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrAccountDisabled
	}
	return s.issueTokens(ctx, u)
}

// resolveOrCreateIdentity maps (provider, subject id) to exactly one local
// user, creating it on first sight. The operation is idempotent: when a
// concurrent create wins the unique-constraint race, the winner's row is
// looked up and returned instead of a duplicate.
func (s *Service) resolveOrCreateIdentity(ctx context.Context, p *ProviderProfile) (*model.User, error) {
	u, err := s.users.GetByProviderSubject(ctx, p.Provider, p.SubjectID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	nu := &model.User{
		Email:             repository.NormalizeEmail(p.Email),
		Nickname:          p.Nickname,
		Provider:          p.Provider,
		ProviderSubjectID: p.SubjectID,
		Role:              model.RoleUser,
		IsActive:          true,
	}
	id, err := s.users.Create(ctx, nu)
	switch {
	case err == nil:
		nu.ID = id
		return nu, nil
	case errors.Is(err, repository.ErrDuplicateSubject):
		// Lost the race against an identical delegated login.
		return s.users.GetByProviderSubject(ctx, p.Provider, p.SubjectID)
	case errors.Is(err, repository.ErrDuplicateEmail):
		// The email is already claimed by a different account.
		return nil, ErrDuplicateIdentity
	default:
		return nil, err
	}
}

// Refresh runs the sequential validation pipeline over a presented refresh
// token and, on full success, mints a new access token. The refresh token
// itself is returned to the caller unchanged; sessions are not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	// 1. Structural/signature validity.
	if !s.codec.Validate(refreshToken) {
		return "", ErrTokenInvalid
	}
	// 2. Subject email embedded in the token.
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return "", ErrTokenInvalid
	}
	// 3. The session must exist. Not-found reads the same as tampered.
	session, err := s.sessions.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrTokenInvalid
		}
		return "", err
	}
	// 4. The session must not be past its expiry.
	if time.Now().UTC().After(session.ExpiresAt) {
		return "", ErrTokenExpired
	}
	// 5. The owning account must exist and be active.
	u, err := s.users.GetByID(ctx, session.UserID)
	if err != nil || !u.IsActive {
		return "", ErrAccountDisabled
	}
	// 6. The account's current email must still match the token subject.
	if u.Email != claims.Subject {
		return "", ErrIdentityMismatch
	}
	// 7. Mint a fresh access token.
	return s.codec.IssueAccessToken(u.Email, u.ID)
}

// issueTokens mints the access/refresh pair and persists the refresh
// session with an expiry derived from the issuance time.
func (s *Service) issueTokens(ctx context.Context, u *model.User) (*LoginResult, error) {
	access, err := s.codec.IssueAccessToken(u.Email, u.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.IssueRefreshToken(u.Email)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session := &model.RefreshSession{
		Token:     refresh,
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codec.RefreshTTL()),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &LoginResult{
		UserID:       u.ID,
		Email:        u.Email,
		Nickname:     u.Nickname,
		Provider:     u.Provider,
		Role:         u.Role,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

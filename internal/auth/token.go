package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenCodec signs and verifies HS256 JWTs. Access tokens embed the subject
// email, the numeric user id and a short expiry; refresh tokens embed only
// the subject and a much longer expiry. The key is derived once from the
// configured secret and never changes after construction.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// TokenClaims is the decoded view of a token's payload.
type TokenClaims struct {
	Subject   string    // "sub": owner's email
	UserID    uint64    // "userId": set on access tokens only
	Type      string    // "type": access or refresh
	IssuedAt  time.Time // "iat"
	ExpiresAt time.Time // "exp"
}

// NewTokenCodec builds a codec from the configured secret and lifetimes.
func NewTokenCodec(secret string, accessTTLMin, refreshTTLDays int) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMin) * time.Minute,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// RefreshTTL returns the configured refresh lifetime, used to derive a
// session's expires_at from its issuance time.
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccessToken signs a short-lived token for the given identity.
func (c *TokenCodec) IssueAccessToken(email string, userID uint64) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":    email,
		"userId": userID,
		"type":   TokenTypeAccess,
		"iat":    now.Unix(),
		"exp":    now.Add(c.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// IssueRefreshToken signs a long-lived token carrying only the subject.
func (c *TokenCodec) IssueRefreshToken(email string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  email,
		"type": TokenTypeRefresh,
		"iat":  now.Unix(),
		"exp":  now.Add(c.refreshTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Validate reports whether the token's signature verifies and it has not
// expired. Any malformed input yields false; it never panics or errors.
func (c *TokenCodec) Validate(token string) bool {
	_, err := c.parse(token)
	return err == nil
}

// Decode parses and verifies a token, returning its claims. Tokens that
// fail signature or structural checks yield ErrTokenMalformed; callers
// either Validate first or handle that error explicitly.
func (c *TokenCodec) Decode(token string) (*TokenClaims, error) {
	tok, err := c.parse(token)
	if err != nil {
		return nil, ErrTokenMalformed
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	claims := &TokenClaims{}
	if sub, ok := mc["sub"].(string); ok {
		claims.Subject = sub
	}
	if typ, ok := mc["type"].(string); ok {
		claims.Type = typ
	}
	// JSON numbers decode as float64.
	if id, ok := mc["userId"].(float64); ok {
		claims.UserID = uint64(id)
	}
	if iat, ok := mc["iat"].(float64); ok {
		claims.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return claims, nil
}

func (c *TokenCodec) parse(token string) (*jwt.Token, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, ErrTokenMalformed
	}
	return tok, nil
}

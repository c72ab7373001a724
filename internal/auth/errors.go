// Package auth implements the authentication core: password and delegated
// login, token issuance and the refresh pipeline. Storage and transport are
// injected; this package owns the error taxonomy callers see.
package auth

import "errors"

// The taxonomy below is the complete set of failures the auth operations
// report. Handlers map each value to a stable HTTP status; none of them is
// fatal to the process. Storage- and provider-level errors never pass
// through untranslated.
var (
	// ErrInvalidCredential covers both unknown email and wrong password,
	// indistinguishably, so responses do not reveal which part failed.
	ErrInvalidCredential = errors.New("invalid credentials")

	// ErrAccountDisabled is returned when the account exists but is not
	// allowed to authenticate.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrDuplicateIdentity is returned when signup or delegated linkage
	// collides with an existing account.
	ErrDuplicateIdentity = errors.New("identity already exists")

	// ErrTokenInvalid is returned for refresh tokens that fail signature or
	// structural checks, and equally for tokens with no stored session.
	// The two cases are collapsed on purpose so the endpoint cannot be
	// used as an oracle for which tokens were ever issued.
	ErrTokenInvalid = errors.New("invalid refresh token")

	// ErrTokenExpired is returned when the stored session exists but its
	// expiry has passed.
	ErrTokenExpired = errors.New("refresh token expired")

	// ErrIdentityMismatch is returned when the token's embedded subject no
	// longer matches the owning account's email, e.g. after an email change.
	ErrIdentityMismatch = errors.New("token subject does not match account")

	// ErrExternalAuth is returned when the delegated provider exchange or
	// profile fetch fails for any reason.
	ErrExternalAuth = errors.New("external provider authentication failed")

	// ErrSignupFailed is the generic persistence failure during signup.
	ErrSignupFailed = errors.New("signup failed")

	// ErrTokenMalformed is returned by Decode for tokens whose structure or
	// signature cannot be verified.
	ErrTokenMalformed = errors.New("malformed token")
)

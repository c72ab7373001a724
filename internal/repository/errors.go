// Package repository implements durable storage for identities and refresh
// sessions on top of database/sql. Not-found and duplicate-key outcomes are
// reported as sentinel values so the auth layer can translate them into its
// own error taxonomy instead of leaking driver error text.
package repository

import "errors"

// ErrNotFound is returned by lookups when no matching row exists.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateEmail is returned when an insert violates the unique
// constraint on users.email. Two concurrent signups with the same email
// race on this constraint; exactly one insert wins.
var ErrDuplicateEmail = errors.New("email already exists")

// ErrDuplicateSubject is returned when an insert violates the unique
// constraint on (provider, provider_subject_id).
var ErrDuplicateSubject = errors.New("provider subject already exists")

// ErrDuplicateToken is returned when a refresh session insert collides on
// the token column. Tokens are unique by construction, so this guards
// against a programming error rather than an expected race.
var ErrDuplicateToken = errors.New("refresh token already exists")

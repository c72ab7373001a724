// Package queue defines the audit events published to the message broker
// and the background consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Event types published on the auth.events queue.
const (
	EventUserRegistered = "user.registered"
	EventUserLoggedIn   = "user.logged_in"
)

// AuthEvent is emitted after a successful signup or login. It carries
// enough for downstream consumers to audit or notify without querying the
// primary database. No tokens or credentials are ever included.
type AuthEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	UserID     uint64 `json:"user_id,omitempty"`
	Email      string `json:"email"`
	Provider   string `json:"provider"`
	OccurredAt string `json:"occurred_at"`
}

// NewAuthEvent stamps an event with a fresh id and the current time.
func NewAuthEvent(eventType string, userID uint64, email, provider string) AuthEvent {
	return AuthEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		Email:      email,
		Provider:   provider,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

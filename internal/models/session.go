package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the live authentication record for a signed-in principal.
// A nil *Session everywhere in the codebase means "absent".
type Session struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Session change event types
const (
	SessionSignedIn  = "session_signed_in"
	SessionSignedOut = "session_signed_out"
	SessionExpired   = "session_expired"
)

// SessionChange is delivered to store subscribers whenever a session is
// created, destroyed, or expires externally. Session carries the snapshot
// for the signed-in type and is nil for signed-out and expired.
type SessionChange struct {
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
	SessionID uuid.UUID `json:"session_id"`
	Session   *Session  `json:"session,omitempty"`
}

package provider

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the provider-issued user record. It is immutable once
// issued; the application never writes to it except through UpdateUser.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session is the provider's access/refresh token pair representing one
// authenticated client. The application holds a read-only copy; the
// provider owns issuance and invalidation.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	Identity     Identity  `json:"user"`
}

// Expired reports whether the access token's lifetime has passed.
// Sessions without a known expiry are treated as live.
func (s *Session) Expired() bool {
	if s == nil {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}

// Event identifies an auth state change emitted by the provider client.
type Event string

const (
	// EventSignedIn fires after any operation that establishes a session:
	// password sign-in, sign-up, SetSession, or code exchange.
	EventSignedIn Event = "signed_in"
	// EventSignedOut fires after sign-out, whether or not the server-side
	// invalidation succeeded.
	EventSignedOut Event = "signed_out"
	// EventTokenRefreshed fires when an expired access token was renewed
	// via the refresh token. The identity is unchanged.
	EventTokenRefreshed Event = "token_refreshed"
	// EventUserUpdated fires after UpdateUser succeeds.
	EventUserUpdated Event = "user_updated"
)

// Listener receives auth state change notifications. The session is nil
// for EventSignedOut. Listeners are invoked sequentially, in
// registration order, with at most one notification in flight.
type Listener func(event Event, session *Session)

// UserAttributes carries updatable identity fields for UpdateUser.
// Nil fields are left unchanged.
type UserAttributes struct {
	Email    *string        `json:"email,omitempty"`
	Password *string        `json:"password,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

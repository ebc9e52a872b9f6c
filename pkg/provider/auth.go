package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session returns the current session, refreshing it through the
// refresh token when the access token has expired. Returns ErrNoSession
// when nothing is stored.
func (c *Client) Session(ctx context.Context) (*Session, error) {
	s, ok := c.storedSession()
	if !ok {
		return nil, ErrNoSession
	}
	if !s.Expired() {
		return s, nil
	}
	if s.RefreshToken == "" {
		c.dropSession()
		return nil, ErrNoSession
	}

	refreshed, err := c.refresh(ctx, s.RefreshToken)
	if err != nil {
		c.dropSession()
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return refreshed, nil
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var s Session
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token",
		"", map[string]string{"refresh_token": refreshToken}, &s)
	if err != nil {
		return nil, err
	}
	c.normalize(&s)
	c.persistSession(&s)
	c.emit(EventTokenRefreshed, &s)
	return &s, nil
}

// SignInWithPassword authenticates with email and password, persists
// the resulting session, and emits EventSignedIn.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=password",
		"", map[string]string{"email": email, "password": password}, &s)
	if err != nil {
		return nil, err
	}
	c.normalize(&s)
	c.persistSession(&s)
	c.emit(EventSignedIn, &s)
	return &s, nil
}

// SignUpOptions carries optional sign-up parameters.
type SignUpOptions struct {
	// EmailRedirectTo is where the confirmation email should send the
	// user after verification.
	EmailRedirectTo string
}

// SignUp registers a new identity. When the provider returns a session
// immediately (confirmation disabled) it is persisted and EventSignedIn
// fires.
func (c *Client) SignUp(ctx context.Context, email, password string, opts *SignUpOptions) (*Session, error) {
	payload := map[string]any{"email": email, "password": password}
	if opts != nil && opts.EmailRedirectTo != "" {
		payload["options"] = map[string]string{"email_redirect_to": opts.EmailRedirectTo}
	}

	var s Session
	if err := c.doJSON(ctx, http.MethodPost, "/auth/v1/signup", "", payload, &s); err != nil {
		return nil, err
	}
	c.normalize(&s)
	if s.AccessToken != "" {
		c.persistSession(&s)
		c.emit(EventSignedIn, &s)
	}
	return &s, nil
}

// SignOut invalidates the session server-side and then drops the local
// copy. The server call runs first because it needs the still-present
// token; the local copy is dropped and EventSignedOut fires even when
// the call fails.
func (c *Client) SignOut(ctx context.Context) error {
	s, ok := c.storedSession()
	if !ok {
		return nil
	}

	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/logout", s.AccessToken, nil, nil)
	if err != nil {
		c.log.Warn("provider sign-out failed, clearing local session anyway",
			slog.Any("error", err))
	}

	c.dropSession()
	c.emit(EventSignedOut, nil)
	return err
}

// SetSession installs a session directly from an access/refresh token
// pair, as delivered by recovery links. Identity and expiry are read
// from the access token's claims. Emits EventSignedIn.
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	s := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}
	if err := fillFromClaims(s); err != nil {
		return nil, fmt.Errorf("set session: %w", err)
	}
	c.persistSession(s)
	c.emit(EventSignedIn, s)
	return s, nil
}

// ExchangeCodeForSession trades a one-time recovery code for a session.
func (c *Client) ExchangeCodeForSession(ctx context.Context, code string) (*Session, error) {
	var s Session
	err := c.doJSON(ctx, http.MethodPost, "/auth/v1/token?grant_type=pkce",
		"", map[string]string{"auth_code": code}, &s)
	if err != nil {
		return nil, err
	}
	c.normalize(&s)
	c.persistSession(&s)
	c.emit(EventSignedIn, &s)
	return &s, nil
}

// UpdateUser changes identity attributes for the signed-in user.
func (c *Client) UpdateUser(ctx context.Context, attrs UserAttributes) (*Identity, error) {
	s, ok := c.storedSession()
	if !ok {
		return nil, ErrNoSession
	}

	var identity Identity
	if err := c.doJSON(ctx, http.MethodPut, "/auth/v1/user", s.AccessToken, attrs, &identity); err != nil {
		return nil, err
	}

	s.Identity = identity
	c.persistSession(s)
	c.emit(EventUserUpdated, s)
	return &identity, nil
}

// normalize derives ExpiresAt when the server only sent expires_in, and
// backfills identity/expiry from token claims when the envelope omitted
// them.
func (c *Client) normalize(s *Session) {
	if s.ExpiresAt.IsZero() && s.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	if s.ExpiresAt.IsZero() || s.Identity.ID == uuid.Nil {
		if err := fillFromClaims(s); err != nil {
			c.log.Debug("could not read access token claims", slog.Any("error", err))
		}
	}
}

// fillFromClaims populates expiry and identity from the access token's
// JWT claims. The token is not signature-verified here; the provider is
// the issuer and the server re-validates on every call.
func fillFromClaims(s *Session) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return fmt.Errorf("parse access token: %w", err)
	}

	if s.ExpiresAt.IsZero() {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.ExpiresAt = exp.Time
		}
	}
	if s.Identity.ID == uuid.Nil {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			if id, err := uuid.Parse(sub); err == nil {
				s.Identity.ID = id
			}
		}
	}
	if s.Identity.Email == "" {
		if email, ok := claims["email"].(string); ok {
			s.Identity.Email = email
		}
	}
	return nil
}

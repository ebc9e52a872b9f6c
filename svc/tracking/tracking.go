package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playforge/gamekit/pkg/apiclient"
	"github.com/playforge/gamekit/pkg/logger"
)

// Action identifies the session event being recorded.
type Action string

const (
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
)

// requestTimeout bounds every tracking call. Telemetry must never hold up
// a sign-in or sign-out.
const requestTimeout = 5 * time.Second

// Service records session lifecycle events against the platform backend.
type Service struct {
	api *apiclient.Client
	log *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a tracking service on top of the backend API client.
func New(api *apiclient.Client, opts ...Option) *Service {
	s := &Service{api: api, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type recordRequest struct {
	Action    Action `json:"action"`
	Email     string `json:"email"`
	SessionID string `json:"session_id,omitempty"`
}

type recordResponse struct {
	SessionID string `json:"session_id"`
}

// Record posts one session event and returns the backend session id, which
// a later logout event should echo back. Failures are logged as warnings
// and returned as soft errors: callers use tracking best-effort and must
// not fail their own operation on a tracking error.
func (s *Service) Record(ctx context.Context, action Action, email, sessionID string) (string, error) {
	var resp recordResponse
	err := s.api.Post(ctx, "/api/session-tracking/", recordRequest{
		Action:    action,
		Email:     email,
		SessionID: sessionID,
	}, &resp, apiclient.WithTimeout(requestTimeout))
	if err != nil {
		s.log.WarnContext(ctx, "session tracking failed",
			slog.String("action", string(action)),
			slog.Any("error", err))
		return "", fmt.Errorf("record session event: %w", err)
	}
	return resp.SessionID, nil
}

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/playforge/gamekit/pkg/logger"
	"github.com/playforge/gamekit/pkg/provider"
)

const (
	usersTable    = "chat_users"
	messagesTable = "chat_messages"

	// presenceChannel is the shared channel every client watches for
	// online/offline changes.
	presenceChannel = "online-users"
)

// defaultHeartbeat is how often presence is re-asserted.
const defaultHeartbeat = 30 * time.Second

// User is one chat participant's presence row.
type User struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	IsOnline    bool      `json:"is_online"`
	LastSeen    time.Time `json:"last_seen"`
}

// Message is one direct message between two users.
type Message struct {
	ID            int       `json:"id"`
	SenderEmail   string    `json:"sender_email"`
	ReceiverEmail string    `json:"receiver_email"`
	Content       string    `json:"content"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

// Service is one user's view of the chat system: their presence row and
// their direct-message conversations.
type Service struct {
	provider  *provider.Client
	self      string
	log       *slog.Logger
	heartbeat time.Duration
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

// WithHeartbeatInterval overrides the presence heartbeat period.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.heartbeat = d
		}
	}
}

// New creates a chat service acting as the given user.
func New(p *provider.Client, selfEmail string, opts ...Option) *Service {
	s := &Service{
		provider:  p,
		self:      selfEmail,
		log:       logger.Discard(),
		heartbeat: defaultHeartbeat,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChannelName derives the realtime channel for a conversation: the two
// emails sorted, joined with a dash, everything outside [a-zA-Z0-9-]
// replaced by underscores, under a "chat-" prefix. Both parties compute
// the same name regardless of who opens the conversation.
func ChannelName(a, b string) string {
	if b < a {
		a, b = b, a
	}
	joined := a + "-" + b
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, joined)
	return "chat-" + sanitized
}

func displayName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// SetOnline upserts the caller's presence row, keyed by email.
func (s *Service) SetOnline(ctx context.Context, online bool) error {
	err := s.provider.From(usersTable).Upsert(ctx, map[string]any{
		"email":        s.self,
		"display_name": displayName(s.self),
		"is_online":    online,
		"last_seen":    time.Now().UTC().Format(time.RFC3339),
	}, "email")
	if err != nil {
		return fmt.Errorf("update presence: %w", err)
	}
	return nil
}

// Heartbeat keeps the caller marked online until the context ends, then
// marks them offline on the way out. The offline write runs on a fresh
// short-lived context because the caller's one is already done.
func (s *Service) Heartbeat(ctx context.Context) error {
	if err := s.SetOnline(ctx, true); err != nil {
		return err
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			offCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.SetOnline(offCtx, false); err != nil {
				s.log.Warn("failed to mark offline", slog.Any("error", err))
			}
			return nil
		case <-ticker.C:
			if err := s.SetOnline(ctx, true); err != nil {
				s.log.WarnContext(ctx, "presence heartbeat failed", slog.Any("error", err))
			}
		}
	}
}

// OnlineUsers lists everyone but the caller, online first, most recently
// seen first within each group.
func (s *Service) OnlineUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := s.provider.From(usersTable).
		Select("*").
		Neq("email", s.self).
		Order("is_online", false).
		Order("last_seen", false).
		Fetch(ctx, &users)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SubscribePresence watches every presence change on the shared channel.
func (s *Service) SubscribePresence(ctx context.Context, handler func(User)) (*provider.Subscription, error) {
	return s.provider.Subscribe(ctx, provider.Channel{
		Name:  presenceChannel,
		Table: usersTable,
		Event: provider.EventAll,
	}, func(ch provider.Change) {
		var u User
		if err := json.Unmarshal(ch.New, &u); err != nil {
			s.log.Warn("bad presence payload", slog.Any("error", err))
			return
		}
		handler(u)
	})
}

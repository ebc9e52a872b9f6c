package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/playforge/gamekit/pkg/provider"
)

func pairExpr(a, b string) string {
	return fmt.Sprintf("(and(sender_email.eq.%s,receiver_email.eq.%s),and(sender_email.eq.%s,receiver_email.eq.%s))",
		a, b, b, a)
}

// Conversation fetches the full message history with the other user,
// oldest first, and marks everything they sent as read.
func (s *Service) Conversation(ctx context.Context, otherEmail string) ([]Message, error) {
	var messages []Message
	err := s.provider.From(messagesTable).
		Select("*").
		Or(pairExpr(s.self, otherEmail)).
		Order("created_at", true).
		Fetch(ctx, &messages)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}

	if err := s.markRead(ctx, otherEmail); err != nil {
		s.log.WarnContext(ctx, "failed to mark conversation read",
			slog.String("with", otherEmail), slog.Any("error", err))
	}
	return messages, nil
}

// UnreadCounts returns the number of unread messages per sender.
func (s *Service) UnreadCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		SenderEmail string `json:"sender_email"`
	}
	err := s.provider.From(messagesTable).
		Select("sender_email").
		Eq("receiver_email", s.self).
		Eq("is_read", false).
		Fetch(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch unread counts: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.SenderEmail]++
	}
	return counts, nil
}

// Send delivers one message to the other user and returns the stored row.
func (s *Service) Send(ctx context.Context, otherEmail, content string) (Message, error) {
	var created Message
	err := s.provider.From(messagesTable).Insert(ctx, map[string]any{
		"sender_email":   s.self,
		"receiver_email": otherEmail,
		"content":        content,
		"is_read":        false,
	}, &created)
	if err != nil {
		return Message{}, fmt.Errorf("send message: %w", err)
	}
	return created, nil
}

func (s *Service) markRead(ctx context.Context, otherEmail string) error {
	return s.provider.From(messagesTable).
		Update(map[string]any{"is_read": true}).
		Eq("sender_email", otherEmail).
		Eq("receiver_email", s.self).
		Eq("is_read", false).
		Do(ctx)
}

// SubscribeMessages streams new messages of one conversation. Messages
// outside the pair are filtered out, already-seen message ids are
// suppressed, and incoming messages addressed to the caller are marked
// read as a side effect before the handler runs.
func (s *Service) SubscribeMessages(ctx context.Context, otherEmail string, handler func(Message)) (*provider.Subscription, error) {
	var (
		mu   sync.Mutex
		seen = make(map[int]struct{})
	)

	return s.provider.Subscribe(ctx, provider.Channel{
		Name:  ChannelName(s.self, otherEmail),
		Table: messagesTable,
		Event: "INSERT",
	}, func(ch provider.Change) {
		var msg Message
		if err := json.Unmarshal(ch.New, &msg); err != nil {
			s.log.Warn("bad message payload", slog.Any("error", err))
			return
		}

		inPair := (msg.SenderEmail == s.self && msg.ReceiverEmail == otherEmail) ||
			(msg.SenderEmail == otherEmail && msg.ReceiverEmail == s.self)
		if !inPair {
			return
		}

		mu.Lock()
		if _, dup := seen[msg.ID]; dup {
			mu.Unlock()
			return
		}
		seen[msg.ID] = struct{}{}
		mu.Unlock()

		if msg.ReceiverEmail == s.self {
			readCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.markRead(readCtx, otherEmail); err != nil {
				s.log.Warn("failed to mark message read", slog.Any("error", err))
			}
			cancel()
		}

		handler(msg)
	})
}

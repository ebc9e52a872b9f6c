package provider

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// EventAll subscribes to every change event on a channel.
const EventAll = "*"

// Channel identifies a realtime subscription scope: a channel name plus
// the table and event type to watch. Event is "*" or a single change
// kind such as "INSERT".
type Channel struct {
	Name  string
	Table string
	Event string
}

// Change is a row-change notification delivered on a channel.
type Change struct {
	Event string          `json:"event"`
	Table string          `json:"table"`
	New   json.RawMessage `json:"new"`
}

// ChangeHandler consumes change notifications. Handlers for one
// subscription run sequentially, in arrival order.
type ChangeHandler func(Change)

// Subscription is an active realtime channel. Unsubscribe must be
// called on cleanup; it is idempotent.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Unsubscribe tears the stream down and waits for the reader goroutine
// to exit. No handler runs after it returns.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed when the stream has ended, whether by Unsubscribe,
// context cancellation, or a server-side close.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Subscribe opens a server-sent-events stream for the channel and
// invokes handler for every matching change. The subscription lives
// until Unsubscribe is called, the context ends, or the server closes
// the stream; there is no automatic reconnect.
func (c *Client) Subscribe(ctx context.Context, ch Channel, handler ChangeHandler) (*Subscription, error) {
	if ch.Event == "" {
		ch.Event = EventAll
	}

	params := url.Values{}
	params.Set("channel", ch.Name)
	params.Set("table", ch.Table)
	params.Set("event", ch.Event)

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/realtime/v1/stream?"+params.Encode(), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build realtime request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerOrAnon())
	req.Header.Set("Accept", "text/event-stream")

	// The stream outlives any client-level timeout; go through the
	// transport directly so reads are bounded by the context alone.
	transport := c.http.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	resp, err := transport.RoundTrip(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open realtime stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, &Error{Status: resp.StatusCode, Message: "realtime subscribe failed"}
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go c.consume(resp, ch, handler, sub)
	return sub, nil
}

func (c *Client) consume(resp *http.Response, ch Channel, handler ChangeHandler, sub *Subscription) {
	defer close(sub.done)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var change Change
		if err := json.Unmarshal([]byte(payload), &change); err != nil {
			c.log.Warn("dropping malformed realtime payload",
				slog.String("channel", ch.Name), slog.Any("error", err))
			continue
		}
		if ch.Event != EventAll && change.Event != ch.Event {
			continue
		}
		if ch.Table != "" && change.Table != "" && change.Table != ch.Table {
			continue
		}

		c.rec.RecordRealtimeEvent(change.Table)
		handler(change)
	}
}

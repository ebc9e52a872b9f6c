package provider_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playforge/gamekit/pkg/provider"
)

func sseHandler(t *testing.T, events []string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for _, e := range events {
			fmt.Fprintf(w, "data: %s\n\n", e)
			flusher.Flush()
		}
		// Keep the stream open until the client goes away.
		<-r.Context().Done()
	})
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	t.Run("delivers matching inserts in order", func(t *testing.T) {
		t.Parallel()

		c := newClient(t, sseHandler(t, []string{
			`{"event":"INSERT","table":"chat_messages","new":{"id":1}}`,
			`{"event":"UPDATE","table":"chat_messages","new":{"id":1}}`,
			`{"event":"INSERT","table":"chat_messages","new":{"id":2}}`,
		}))

		got := make(chan provider.Change, 8)
		sub, err := c.Subscribe(context.Background(), provider.Channel{
			Name:  "chat-a-b",
			Table: "chat_messages",
			Event: "INSERT",
		}, func(ch provider.Change) { got <- ch })
		require.NoError(t, err)
		defer sub.Unsubscribe()

		first := <-got
		second := <-got
		assert.JSONEq(t, `{"id":1}`, string(first.New))
		assert.JSONEq(t, `{"id":2}`, string(second.New))

		select {
		case extra := <-got:
			t.Fatalf("unexpected extra change: %+v", extra)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("wildcard event passes everything on the table", func(t *testing.T) {
		t.Parallel()

		c := newClient(t, sseHandler(t, []string{
			`{"event":"INSERT","table":"chat_users","new":{}}`,
			`{"event":"UPDATE","table":"chat_users","new":{}}`,
		}))

		got := make(chan provider.Change, 8)
		sub, err := c.Subscribe(context.Background(), provider.Channel{
			Name:  "online-users",
			Table: "chat_users",
			Event: provider.EventAll,
		}, func(ch provider.Change) { got <- ch })
		require.NoError(t, err)
		defer sub.Unsubscribe()

		assert.Equal(t, "INSERT", (<-got).Event)
		assert.Equal(t, "UPDATE", (<-got).Event)
	})

	t.Run("malformed payloads are dropped", func(t *testing.T) {
		t.Parallel()

		c := newClient(t, sseHandler(t, []string{
			`{not json`,
			`{"event":"INSERT","table":"chat_messages","new":{"id":3}}`,
		}))

		got := make(chan provider.Change, 8)
		sub, err := c.Subscribe(context.Background(), provider.Channel{
			Name: "c", Table: "chat_messages", Event: "INSERT",
		}, func(ch provider.Change) { got <- ch })
		require.NoError(t, err)
		defer sub.Unsubscribe()

		assert.JSONEq(t, `{"id":3}`, string((<-got).New))
	})

	t.Run("unsubscribe stops delivery and is idempotent", func(t *testing.T) {
		t.Parallel()

		c := newClient(t, sseHandler(t, nil))

		sub, err := c.Subscribe(context.Background(), provider.Channel{
			Name: "c", Table: "chat_messages",
		}, func(provider.Change) {})
		require.NoError(t, err)

		sub.Unsubscribe()
		select {
		case <-sub.Done():
		case <-time.After(time.Second):
			t.Fatal("stream did not shut down")
		}
		assert.NotPanics(t, sub.Unsubscribe)
	})

	t.Run("non-200 response fails the subscribe", func(t *testing.T) {
		t.Parallel()

		c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		_, err := c.Subscribe(context.Background(), provider.Channel{Name: "c"}, func(provider.Change) {})
		var provErr *provider.Error
		require.ErrorAs(t, err, &provErr)
		assert.Equal(t, http.StatusForbidden, provErr.Status)
	})

	t.Run("context cancellation ends the stream", func(t *testing.T) {
		t.Parallel()

		c := newClient(t, sseHandler(t, nil))
		ctx, cancel := context.WithCancel(context.Background())

		sub, err := c.Subscribe(ctx, provider.Channel{Name: "c"}, func(provider.Change) {})
		require.NoError(t, err)

		cancel()
		select {
		case <-sub.Done():
		case <-time.After(time.Second):
			t.Fatal("stream did not end on context cancellation")
		}
	})
}

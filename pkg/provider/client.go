package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/playforge/gamekit/pkg/logger"
	"github.com/playforge/gamekit/pkg/metrics"
)

// Config carries env-driven provider connection settings.
type Config struct {
	URL           string        `env:"PROVIDER_URL,required"`
	AnonKey       string        `env:"PROVIDER_ANON_KEY,required"`
	StoragePrefix string        `env:"PROVIDER_STORAGE_PREFIX" envDefault:"pf-auth-"`
	Timeout       time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"30s"`
}

const sessionStorageKey = "session"

// Client talks to the platform's BaaS provider: the auth API, the
// row-level data API, and the realtime change feed. One Client per
// process is the normal arrangement; all methods are safe for
// concurrent use.
type Client struct {
	baseURL string
	anonKey string
	prefix  string
	http    *http.Client
	storage Storage
	log     *slog.Logger
	rec     metrics.Recorder

	// emitMu serializes listener notification so events are observed in
	// order with at most one in flight.
	emitMu    sync.Mutex
	listeners *listenerSet
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithStorage(s Storage) Option {
	return func(c *Client) {
		if s != nil {
			c.storage = s
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

func WithMetrics(rec metrics.Recorder) Option {
	return func(c *Client) {
		if rec != nil {
			c.rec = rec
		}
	}
}

// New creates a provider client for the given project URL and anon key.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		anonKey:   cfg.AnonKey,
		prefix:    cfg.StoragePrefix,
		http:      &http.Client{Timeout: cfg.Timeout},
		storage:   NewMemoryStorage(),
		log:       logger.Discard(),
		rec:       metrics.Noop{},
		listeners: newListenerSet(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Storage exposes the client's token store, mainly so sign-out flows
// can purge it.
func (c *Client) Storage() Storage { return c.storage }

// StoragePrefix returns the key prefix session material is stored under.
func (c *Client) StoragePrefix() string { return c.prefix }

// OnAuthStateChange registers a listener for auth events. The returned
// function removes it; calling it more than once is harmless.
func (c *Client) OnAuthStateChange(l Listener) func() {
	return c.listeners.add(l)
}

func (c *Client) emit(event Event, session *Session) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	for _, l := range c.listeners.snapshot() {
		l(event, session)
	}
}

// persistSession writes the session to local storage under the
// configured prefix.
func (c *Client) persistSession(s *Session) {
	raw, err := json.Marshal(s)
	if err != nil {
		c.log.Error("failed to encode session", slog.Any("error", err))
		return
	}
	c.storage.Set(c.prefix+sessionStorageKey, string(raw))
}

func (c *Client) storedSession() (*Session, bool) {
	raw, ok := c.storage.Get(c.prefix + sessionStorageKey)
	if !ok {
		return nil, false
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		c.storage.Delete(c.prefix + sessionStorageKey)
		return nil, false
	}
	return &s, true
}

func (c *Client) dropSession() {
	c.storage.Delete(c.prefix + sessionStorageKey)
}

// doJSON performs a provider request with the standard headers and
// decodes the JSON response into out (when non-nil). Non-2xx responses
// are decoded into *Error.
func (c *Client) doJSON(ctx context.Context, method, path string, bearer string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return ErrConflict
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// bearerOrAnon returns the stored access token when one exists,
// otherwise the anon key. Data API calls authenticate this way.
func (c *Client) bearerOrAnon() string {
	if s, ok := c.storedSession(); ok && s.AccessToken != "" {
		return s.AccessToken
	}
	return c.anonKey
}

type listenerSet struct {
	mu     sync.Mutex
	nextID int
	items  map[int]Listener
}

func newListenerSet() *listenerSet {
	return &listenerSet{items: make(map[int]Listener)}
}

func (s *listenerSet) add(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.items[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.items, id)
			s.mu.Unlock()
		})
	}
}

func (s *listenerSet) snapshot() []Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Listener, 0, len(s.items))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.items[id]; ok {
			out = append(out, l)
		}
	}
	return out
}

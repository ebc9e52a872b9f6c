package gamekit

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/playforge/gamekit/pkg/apiclient"
	"github.com/playforge/gamekit/pkg/config"
	"github.com/playforge/gamekit/pkg/logger"
	"github.com/playforge/gamekit/pkg/metrics"
	"github.com/playforge/gamekit/pkg/provider"
	"github.com/playforge/gamekit/svc/analytics"
	"github.com/playforge/gamekit/svc/auth"
	"github.com/playforge/gamekit/svc/billing"
	"github.com/playforge/gamekit/svc/chat"
	"github.com/playforge/gamekit/svc/tracking"
)

// Config aggregates every environment-driven setting the toolkit needs.
type Config struct {
	Provider provider.Config
	API      apiclient.Config
	Logger   logger.Config
}

// LoadConfig reads the configuration from the environment (and a .env
// file when present).
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Client bundles the toolkit's services around one provider connection
// and one auth state.
type Client struct {
	Provider  *provider.Client
	Auth      *auth.Synchronizer
	Billing   *billing.Service
	Analytics *analytics.Service
	Tracking  *tracking.Service

	api *apiclient.Client
	log *slog.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	log   *slog.Logger
	reg   prometheus.Registerer
	cache auth.ProfileCache
}

// WithLogger sets the logger shared by every service.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithRegisterer enables prometheus metrics on the given registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// WithProfileCache replaces the default in-memory profile cache, e.g.
// with auth.NewRedisCache for processes sharing a cache.
func WithProfileCache(c auth.ProfileCache) Option {
	return func(o *options) { o.cache = c }
}

// NewClient wires the full toolkit from a Config. The auth synchronizer
// doubles as the bearer token source for backend API calls, so platform
// requests authenticate as whoever is signed in.
func NewClient(cfg Config, opts ...Option) *Client {
	o := options{log: logger.FromConfig(cfg.Logger)}
	for _, opt := range opts {
		opt(&o)
	}

	var rec metrics.Recorder = metrics.Noop{}
	if o.reg != nil {
		rec = metrics.NewCollector(o.reg)
	}

	prov := provider.New(cfg.Provider,
		provider.WithLogger(o.log),
		provider.WithMetrics(rec),
	)

	authOpts := []auth.Option{
		auth.WithLogger(o.log),
		auth.WithMetrics(rec),
	}
	if o.cache != nil {
		authOpts = append(authOpts, auth.WithCache(o.cache))
	}
	authSync := auth.New(prov, authOpts...)

	api := apiclient.New(cfg.API,
		apiclient.WithTokenSource(authSync),
		apiclient.WithLogger(o.log),
		apiclient.WithMetrics(rec),
	)

	// Tracking rides on the API client, which authenticates through the
	// synchronizer, so the tracker is attached after both exist.
	track := tracking.New(api, tracking.WithLogger(o.log))
	auth.WithTracker(track)(authSync)

	return &Client{
		Provider:  prov,
		Auth:      authSync,
		Billing:   billing.New(api, billing.WithLogger(o.log)),
		Analytics: analytics.New(api, analytics.WithLogger(o.log)),
		Tracking:  track,
		api:       api,
		log:       o.log,
	}
}

// Chat returns a chat service acting as the signed-in user, or
// auth.ErrNotAuthenticated while anonymous.
func (c *Client) Chat() (*chat.Service, error) {
	email := c.Auth.Email()
	if email == "" {
		return nil, auth.ErrNotAuthenticated
	}
	return chat.New(c.Provider, email, chat.WithLogger(c.log)), nil
}

// Close releases the client's subscriptions.
func (c *Client) Close() {
	c.Auth.Close()
}

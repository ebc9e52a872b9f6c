package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playforge/gamekit/pkg/async"
	"github.com/playforge/gamekit/pkg/logger"
	"github.com/playforge/gamekit/pkg/metrics"
	"github.com/playforge/gamekit/pkg/provider"
	"github.com/playforge/gamekit/pkg/redirect"
	"github.com/playforge/gamekit/pkg/watch"
	"github.com/playforge/gamekit/svc/tracking"
)

// fetchTimeout bounds background profile fetches spawned off the event
// stream, which carry no caller context.
const fetchTimeout = 10 * time.Second

// State is the synchronizer's view of the current user. It is replaced
// wholesale on every change, never merged, so observers can treat each
// notification as a full snapshot. Profile may lag Identity: after sign-in
// it stays nil until the background fetch resolves.
type State struct {
	Identity *provider.Identity
	Profile  *Profile
	Session  *provider.Session
	Loading  bool
}

// Authenticated reports whether a signed-in identity is tracked.
func (st State) Authenticated() bool { return st.Identity != nil }

// Result is the uniform outcome of the auth operations. Operations never
// panic and never leak raw transport failures past Err.
type Result struct {
	Err error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Tracker records session lifecycle telemetry. *tracking.Service implements
// it; tests substitute stubs.
type Tracker interface {
	Record(ctx context.Context, action tracking.Action, email, sessionID string) (string, error)
}

// Synchronizer keeps a reactive local mirror of the provider auth state:
// identity, session, and the application profile. It owns the provider
// event subscription and is safe for concurrent use.
type Synchronizer struct {
	provider      *provider.Client
	cache         ProfileCache
	tracker       Tracker
	log           *slog.Logger
	rec           metrics.Recorder
	emailRedirect string

	state *watch.Value[State]

	// mu guards composed state transitions; authMu serializes the
	// auth-mutating operations so a sign-out cannot interleave with a
	// sign-in on the same instance.
	mu     sync.Mutex
	authMu sync.Mutex

	fetchMu  sync.Mutex
	fetching bool

	// trackID is the backend tracking session id, guarded by authMu.
	trackID string

	stopEvents func()
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithCache replaces the default in-memory profile cache.
func WithCache(c ProfileCache) Option {
	return func(s *Synchronizer) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithTracker enables session tracking telemetry.
func WithTracker(t Tracker) Option {
	return func(s *Synchronizer) { s.tracker = t }
}

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(s *Synchronizer) {
		if rec != nil {
			s.rec = rec
		}
	}
}

// WithEmailRedirect sets the destination confirmation emails link back to.
func WithEmailRedirect(u string) Option {
	return func(s *Synchronizer) { s.emailRedirect = u }
}

// New creates a Synchronizer on top of a provider client. The state starts
// in Loading until Bootstrap finishes.
func New(p *provider.Client, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		provider: p,
		cache:    NewMemoryCache(),
		log:      logger.Discard(),
		rec:      metrics.Noop{},
		state:    watch.NewValue(State{Loading: true}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Synchronizer) State() State { return s.state.Get() }

// Subscribe registers an observer called with every new snapshot. The
// returned function removes the observer. Observers run on the goroutine
// that changed the state and must not call auth-mutating operations.
func (s *Synchronizer) Subscribe(cb func(State)) func() {
	return s.state.Subscribe(cb)
}

// Close detaches the synchronizer from the provider event stream.
func (s *Synchronizer) Close() {
	s.authMu.Lock()
	defer s.authMu.Unlock()
	if s.stopEvents != nil {
		s.stopEvents()
		s.stopEvents = nil
	}
}

// Bootstrap restores the auth state at startup. When the URL carries
// recovery parameters those are resolved first (fragment tokens win over a
// PKCE code) and the returned URL has them stripped. The profile fetch is
// spawned in the background: callers observe Identity before Profile.
// Whatever happens, Loading is false afterwards.
func (s *Synchronizer) Bootstrap(ctx context.Context, u *url.URL) (*url.URL, Result) {
	s.authMu.Lock()
	defer s.authMu.Unlock()

	if s.stopEvents == nil {
		s.stopEvents = s.provider.OnAuthStateChange(s.handleEvent)
	}

	cleaned := u
	if u != nil && redirect.HasRecoveryParams(u) {
		params := redirect.Extract(u)
		switch {
		case params.HasTokens():
			if _, err := s.provider.SetSession(ctx, params.AccessToken, params.RefreshToken); err != nil {
				s.log.WarnContext(ctx, "recovery token session failed", slog.Any("error", err))
			}
		case params.Code != "":
			if _, err := s.provider.ExchangeCodeForSession(ctx, params.Code); err != nil {
				s.log.WarnContext(ctx, "recovery code exchange failed", slog.Any("error", err))
			}
		}
		cleaned = redirect.Clean(u)
	}

	sess, err := s.provider.Session(ctx)
	if err != nil || sess == nil {
		s.setState(State{})
		if err != nil && !errors.Is(err, provider.ErrNoSession) {
			return cleaned, Result{Err: fmt.Errorf("restore session: %w", err)}
		}
		return cleaned, Result{}
	}

	s.enter(sess)
	s.spawnProfileFetch(sess.Identity)
	return cleaned, Result{}
}

// SignUp registers a new identity and creates its profile.
func (s *Synchronizer) SignUp(ctx context.Context, email, password string) Result {
	s.authMu.Lock()
	defer s.authMu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	var opts *provider.SignUpOptions
	if s.emailRedirect != "" {
		opts = &provider.SignUpOptions{EmailRedirectTo: s.emailRedirect}
	}
	sess, err := s.provider.SignUp(ctx, email, password, opts)
	if err != nil {
		s.rec.RecordAuthOperation("sign_up", false)
		return Result{Err: fmt.Errorf("sign up: %w", err)}
	}
	s.rec.RecordAuthOperation("sign_up", true)

	if sess != nil && sess.Identity.ID != uuid.Nil {
		s.enter(sess)
		s.loadProfile(ctx, sess.Identity)
	}
	return Result{}
}

// SignIn authenticates with email and password. The profile is backfilled
// when it does not exist yet, and a login event is sent to session tracking
// best-effort: tracking failures never fail the sign-in.
func (s *Synchronizer) SignIn(ctx context.Context, email, password string) Result {
	s.authMu.Lock()
	defer s.authMu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	sess, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		s.rec.RecordAuthOperation("sign_in", false)
		return Result{Err: fmt.Errorf("sign in: %w", err)}
	}
	s.rec.RecordAuthOperation("sign_in", true)

	s.enter(sess)
	s.loadProfile(ctx, sess.Identity)

	if s.tracker != nil {
		if id, terr := s.tracker.Record(ctx, tracking.ActionLogin, email, ""); terr == nil {
			s.trackID = id
		}
	}
	return Result{}
}

// SignOut ends the session. The provider is told first; the local nil-out
// and storage purge run in a deferred path so they happen even when the
// provider call fails, leaving no session material behind either way.
func (s *Synchronizer) SignOut(ctx context.Context) Result {
	s.authMu.Lock()
	defer s.authMu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	cur := s.state.Get()
	if s.tracker != nil && cur.Identity != nil {
		s.tracker.Record(ctx, tracking.ActionLogout, cur.Identity.Email, s.trackID)
		s.trackID = ""
	}

	defer func() {
		if cur.Identity != nil {
			s.cache.Invalidate(ctx, cur.Identity.ID)
		}
		s.setState(State{})
		provider.PurgeAuthKeys(s.provider.Storage(), s.provider.StoragePrefix())
	}()

	if err := s.provider.SignOut(ctx); err != nil {
		s.rec.RecordAuthOperation("sign_out", false)
		return Result{Err: fmt.Errorf("sign out: %w", err)}
	}
	s.rec.RecordAuthOperation("sign_out", true)
	return Result{}
}

// UpdateProfile applies a partial update to the current profile row and
// refreshes both the cache and the state snapshot.
func (s *Synchronizer) UpdateProfile(ctx context.Context, changes map[string]any) Result {
	cur := s.state.Get()
	if cur.Identity == nil {
		return Result{Err: ErrNotAuthenticated}
	}

	var updated Profile
	err := s.provider.From(profileTable).Update(changes).Eq("id", cur.Identity.ID).Fetch(ctx, &updated)
	if err != nil {
		return Result{Err: fmt.Errorf("update profile: %w", err)}
	}
	s.cache.Put(ctx, updated.ID, updated)
	s.applyProfile(updated)
	return Result{}
}

// IsAuthenticated reports whether an identity is tracked.
func (s *Synchronizer) IsAuthenticated() bool { return s.state.Get().Identity != nil }

// IsAdmin reports whether the current profile has admin capabilities.
func (s *Synchronizer) IsAdmin() bool {
	st := s.state.Get()
	return st.Profile != nil && st.Profile.Admin()
}

// Role returns the current role, defaulting to RoleUser while the profile
// is unknown.
func (s *Synchronizer) Role() Role {
	st := s.state.Get()
	if st.Profile == nil || st.Profile.Role == "" {
		return RoleUser
	}
	return st.Profile.Role
}

// Username returns the current profile's username, or "" while unknown.
func (s *Synchronizer) Username() string {
	st := s.state.Get()
	if st.Profile == nil {
		return ""
	}
	return st.Profile.Username
}

// Email returns the current identity's email, or "" when anonymous.
func (s *Synchronizer) Email() string {
	st := s.state.Get()
	if st.Identity == nil {
		return ""
	}
	return st.Identity.Email
}

// Token implements apiclient.TokenSource: it hands out the current access
// token, refreshing through the provider when expired. Without an active
// session it returns an empty token so API requests go out anonymously.
func (s *Synchronizer) Token(ctx context.Context) (string, error) {
	sess, err := s.provider.Session(ctx)
	if errors.Is(err, provider.ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sess.AccessToken, nil
}

// setLoading flips only the Loading flag, preserving the rest of the
// snapshot.
func (s *Synchronizer) setLoading(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.state.Get()
	if cur.Loading == on {
		return
	}
	cur.Loading = on
	s.state.Set(cur)
}

func (s *Synchronizer) setState(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Set(next)
}

// enter replaces identity and session, keeping the profile only when the
// identity is unchanged.
func (s *Synchronizer) enter(sess *provider.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.state.Get()
	next := State{Identity: &sess.Identity, Session: sess}
	if cur.Identity != nil && cur.Identity.ID == sess.Identity.ID {
		next.Profile = cur.Profile
	}
	s.state.Set(next)
}

// applyProfile attaches a fetched profile to the snapshot, unless the
// tracked identity changed while the fetch was in flight.
func (s *Synchronizer) applyProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.state.Get()
	if cur.Identity == nil || cur.Identity.ID != p.ID {
		return
	}
	cur.Profile = &p
	s.state.Set(cur)
}

// spawnProfileFetch resolves the profile in the background. Consumers must
// tolerate a nil Profile until it lands.
func (s *Synchronizer) spawnProfileFetch(identity provider.Identity) {
	async.Fire(context.Background(), func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()
		s.loadProfile(ctx, identity)
		return nil
	}, nil)
}

// loadProfile consults the cache, then fetches. A fetch already in flight
// makes overlapping calls no-ops; the dropped caller simply sees the
// profile arrive through the state snapshot when the winner finishes.
func (s *Synchronizer) loadProfile(ctx context.Context, identity provider.Identity) {
	if p, ok := s.cache.Get(ctx, identity.ID); ok {
		s.rec.RecordProfileCache(true)
		s.applyProfile(p)
		return
	}
	s.rec.RecordProfileCache(false)

	s.fetchMu.Lock()
	if s.fetching {
		s.fetchMu.Unlock()
		return
	}
	s.fetching = true
	s.fetchMu.Unlock()
	defer func() {
		s.fetchMu.Lock()
		s.fetching = false
		s.fetchMu.Unlock()
	}()

	p, err := s.fetchOrCreate(ctx, identity)
	if err != nil {
		s.log.WarnContext(ctx, "profile fetch failed",
			slog.String("identity", identity.ID.String()),
			slog.Any("error", err))
		return
	}
	s.cache.Put(ctx, p.ID, p)
	s.applyProfile(p)
}

// handleEvent mirrors provider auth events into the local state. Token
// refreshes are ignored outright, as are events for the identity already
// tracked, so observers see no churn from background token maintenance.
func (s *Synchronizer) handleEvent(event provider.Event, sess *provider.Session) {
	if event == provider.EventTokenRefreshed {
		return
	}
	if event == provider.EventSignedOut {
		s.setState(State{})
		return
	}
	if sess == nil {
		return
	}
	cur := s.state.Get()
	if cur.Identity != nil && cur.Identity.ID == sess.Identity.ID {
		return
	}
	s.enter(sess)
	s.spawnProfileFetch(sess.Identity)
}

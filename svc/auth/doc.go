// Package auth keeps a local, observable mirror of the PlayForge auth
// state: the provider identity and session plus the application profile
// row that goes with them.
//
// The Synchronizer is the package's center. It bootstraps from a stored
// session (resolving password-recovery redirect parameters first), listens
// to the provider's auth event stream, and exposes the combined state as a
// snapshot that observers subscribe to:
//
//	sync := auth.New(providerClient,
//		auth.WithTracker(trackingSvc),
//		auth.WithLogger(log),
//	)
//	cleanURL, res := sync.Bootstrap(ctx, startURL)
//	stop := sync.Subscribe(func(st auth.State) { ... })
//	defer stop()
//
// Profiles are cached for five minutes; an expired entry is treated as
// absent. Processes that share a cache across instances can swap in the
// redis-backed implementation with WithCache(NewRedisCache(client)).
//
// All operations return a Result instead of panicking, and provider
// failures during sign-out still leave the local state clean.
package auth

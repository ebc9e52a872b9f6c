// Package gamekit is a Go client toolkit for the PlayForge gaming
// subscription platform. It gives CLIs, bots, and backend jobs the same
// capabilities the platform's web client has: authenticate against the
// platform's identity provider, keep a reactive local view of the session
// and profile, browse and purchase subscription plans, read admin
// analytics, and take part in peer-to-peer chat over the provider's
// realtime change feed.
//
// The root package is a thin assembly layer:
//
//	cfg, err := gamekit.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client := gamekit.NewClient(cfg, gamekit.WithLogger(logger))
//	defer client.Close()
//
//	_, res := client.Auth.Bootstrap(ctx, nil)
//	if !res.OK() {
//		log.Fatal(res.Err)
//	}
//
// Each concern also works standalone: pkg/provider for the raw provider
// client, svc/auth for the state synchronizer, svc/billing, svc/analytics,
// and svc/chat for the platform features, with the reusable plumbing in
// pkg/ (config, logger, async, watch, cache, redis, metrics, username,
// redirect, apiclient).
package gamekit

// Package apiclient provides a small JSON client for the PlayForge backend
// API. It handles bearer authentication through a pluggable TokenSource,
// per-call timeout overrides, and translation of backend error payloads into
// typed errors.
//
// The client performs no retries: callers that need at-most-once semantics
// around purchases and session tracking rely on a failed call surfacing
// immediately.
//
// Usage:
//
//	var cfg apiclient.Config
//	config.MustLoad(&cfg)
//
//	api := apiclient.New(cfg,
//		apiclient.WithTokenSource(tokens),
//		apiclient.WithLogger(log),
//	)
//
//	var plans []billing.Plan
//	err := api.Get(ctx, "/api/plans/", &plans, apiclient.WithTimeout(8*time.Second))
package apiclient

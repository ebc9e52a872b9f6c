// Package redirect detects, extracts, and strips the auth provider's
// recovery parameters from redirect URLs.
//
// Password recovery links carry one-time credentials either as query
// parameters (code flow) or as fragment parameters (implicit token
// flow). The auth layer must consume those credentials exactly once and
// then remove them, so they never survive into browser history, logs,
// or copy-pasted links:
//
//	if redirect.HasRecoveryParams(u) {
//		p := redirect.Extract(u)
//		// exchange p.Code or set the session from p tokens
//		u = redirect.Clean(u)
//	}
//
// All functions tolerate URLs without any parameters; Clean is
// idempotent.
package redirect

// Package provider is the client for the platform's backend-as-a-service
// provider. It wraps three surfaces behind one Client:
//
//   - the auth API: password sign-in/sign-up, sign-out, session refresh,
//     recovery-token installation, code exchange, and user updates, with
//     the session persisted in a pluggable token Storage under a
//     recognizable key prefix;
//   - the data API: row-level select/insert/update/upsert with equality
//     filters, used for the profile and chat tables;
//   - the realtime API: per-channel change subscriptions delivered over
//     a server-sent-events stream.
//
// Auth state changes (signed_in, signed_out, token_refreshed,
// user_updated) are pushed to listeners registered with
// OnAuthStateChange; delivery is sequential with at most one
// notification in flight, so consumers never need their own ordering
// logic.
//
// The provider owns all session issuance; this package only holds a
// read-only local copy and never inspects token signatures (the server
// re-validates every call).
package provider

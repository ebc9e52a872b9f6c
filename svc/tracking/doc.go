// Package tracking reports session lifecycle events (login, logout) to the
// PlayForge backend. Tracking is telemetry, not truth: every call is bounded
// by a short timeout and failures are soft, so auth flows complete whether
// or not the backend heard about them.
package tracking

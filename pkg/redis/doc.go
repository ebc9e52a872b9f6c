// Package redis provides connection helpers for the go-redis client:
// env-driven configuration, retrying connect, and a readiness probe.
//
// GameKit uses Redis only as an optional shared backend for the auth
// layer's profile cache; everything works without it.
package redis

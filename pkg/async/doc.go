// Package async provides small helpers for running computations in the
// background and collecting their results later.
//
// Run starts a function in its own goroutine and returns a generic
// Future that can be awaited, polled, or awaited with a timeout. Fire
// starts a function whose result nobody waits for, routing any error to
// an optional callback; it backs the fire-and-forget side effects in the
// auth layer, such as the profile fetch spawned during bootstrap.
package async

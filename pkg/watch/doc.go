// Package watch implements a minimal observed-value primitive: one
// authoritative piece of state with a Get accessor and callback
// subscriptions.
//
// It decouples state ownership from any particular consumer. The auth
// layer publishes its reactive state through a watch.Value so route
// guards, UIs, and background workers can all observe the same source
// of truth:
//
//	state := watch.NewValue(auth.State{Loading: true})
//	stop := state.Subscribe(func(s auth.State) { render(s) })
//	defer stop()
package watch

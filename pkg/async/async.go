package async

import (
	"context"
	"time"
)

// Future represents the eventual result of a spawned computation.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Await blocks until the computation completes and returns its result.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits for completion up to the given duration and
// returns ErrTimeout when the deadline passes first. The computation
// keeps running; only the wait is abandoned.
func (f *Future[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// Done returns true when the computation has completed, without blocking.
func (f *Future[T]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Run executes fn in its own goroutine and returns a Future for its
// result. A context already cancelled at spawn time completes the
// Future immediately with the context error.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.result, f.err = fn(ctx)
	}()

	return f
}

// Fire executes fn in its own goroutine and discards the result,
// delivering any error to onErr when given. Used for best-effort side
// effects that must not block the caller.
func Fire(ctx context.Context, fn func(context.Context) error, onErr func(error)) {
	go func() {
		if err := fn(ctx); err != nil && onErr != nil {
			onErr(err)
		}
	}()
}

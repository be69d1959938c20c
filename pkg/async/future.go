// Package async provides a single-fire future for running one blocking
// operation in the background.
package async

import (
	"context"
	"sync"
)

// Future holds the eventual result of one operation. The result is settled
// exactly once, either by the operation returning or by Cancel.
type Future[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	settled   bool
	canceled  bool
	value     T
	err       error
	callbacks []func(T, error)
}

// Go runs fn in a new goroutine with a context derived from ctx. Canceling
// ctx or calling Cancel cancels that context.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer cancel()
		v, err := fn(ctx)
		f.settle(v, err, false)
	}()

	return f
}

// Done returns a channel closed once the result is settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is settled or ctx ends. After Cancel it
// returns context.Canceled and the zero value.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// OnComplete registers fn to receive the result. It runs at most once, in its
// own goroutine, and never after Cancel. Registering after the result is
// settled schedules fn immediately.
func (f *Future[T]) OnComplete(fn func(T, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.settled {
		f.callbacks = append(f.callbacks, fn)
		return
	}
	if f.canceled {
		return
	}
	v, err := f.value, f.err
	go fn(v, err)
}

// Cancel cancels the operation's context and settles the future as canceled
// unless it has already completed. No callback runs after Cancel returns and
// no partial result is delivered.
func (f *Future[T]) Cancel() {
	var zero T
	f.settle(zero, context.Canceled, true)
	f.cancel()
}

// Canceled reports whether the future was settled by Cancel.
func (f *Future[T]) Canceled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canceled
}

func (f *Future[T]) settle(v T, err error, canceled bool) {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return
	}
	f.settled = true
	f.canceled = canceled
	f.value = v
	f.err = err
	callbacks := f.callbacks
	f.callbacks = nil
	f.mu.Unlock()

	close(f.done)

	if canceled {
		return
	}
	for _, cb := range callbacks {
		go cb(v, err)
	}
}

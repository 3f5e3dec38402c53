// Package async provides a small Future abstraction for fan-out work whose
// results must be collected before a dependent step runs.
package async

import (
	"context"
	"errors"
)

// ErrNoFutures is returned by WaitAll when called without futures.
var ErrNoFutures = errors.New("async: no futures to wait for")

// Future represents the result of an asynchronous computation.
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

// Run executes fn in a new goroutine and returns a Future for its result.
// A pre-canceled context short-circuits without invoking fn.
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

// WaitAll waits for every future and returns their results in submission
// order. The first error encountered is returned, after all futures have
// completed, so no goroutine is left unobserved.
func WaitAll[T any](futures ...*Future[T]) ([]T, error) {
	if len(futures) == 0 {
		return nil, ErrNoFutures
	}

	results := make([]T, len(futures))
	var firstErr error
	for i, f := range futures {
		result, err := f.Await()
		results[i] = result
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return results, firstErr
}

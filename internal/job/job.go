// Package job runs one long operation at a time off the calling goroutine.
//
// A Runner admits a single in-flight job. Starting a second job while one is
// running fails with ErrBusy instead of queueing or interleaving. The result
// is delivered once to the done callback, after the slot is released, so a
// callback may start the next job.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrBusy indicates a job is already running on the Runner.
var ErrBusy = errors.New("a job is already running")

// Runner runs at most one job of result type T at a time.
// The zero value is not usable; create one with NewRunner.
type Runner[T any] struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewRunner creates an idle Runner.
func NewRunner[T any]() *Runner[T] {
	return &Runner[T]{sem: semaphore.NewWeighted(1)}
}

// Start runs work in a new goroutine and passes its outcome to done.
// It returns ErrBusy without running work when another job is in flight.
// A panic in work is recovered and delivered to done as an error.
// done may be nil.
func (r *Runner[T]) Start(ctx context.Context, work func(context.Context) (T, error), done func(T, error)) error {
	if !r.sem.TryAcquire(1) {
		return ErrBusy
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		res, err := r.run(ctx, work)
		r.sem.Release(1)
		if done != nil {
			done(res, err)
		}
	}()
	return nil
}

func (r *Runner[T]) run(ctx context.Context, work func(context.Context) (T, error)) (res T, err error) {
	defer func() {
		if p := recover(); p != nil {
			var zero T
			res, err = zero, fmt.Errorf("job panicked: %v", p)
		}
	}()
	return work(ctx)
}

// Busy reports whether a job is in flight.
func (r *Runner[T]) Busy() bool {
	if r.sem.TryAcquire(1) {
		r.sem.Release(1)
		return false
	}
	return true
}

// Wait blocks until every started job and its callback have returned.
func (r *Runner[T]) Wait() {
	r.wg.Wait()
}

// Run starts work and blocks until it finishes, returning its outcome.
// It is Start with a callback that hands the result back to the caller.
func (r *Runner[T]) Run(ctx context.Context, work func(context.Context) (T, error)) (T, error) {
	type outcome struct {
		res T
		err error
	}
	ch := make(chan outcome, 1)
	if err := r.Start(ctx, work, func(res T, err error) {
		ch <- outcome{res, err}
	}); err != nil {
		var zero T
		return zero, err
	}
	out := <-ch
	return out.res, out.err
}

// Package promise implements single-assignment asynchronous values and the
// combinators used to chain request steps: Then, ThenAsync, Catch and Queue.
//
// A Promise settles exactly once with a mo.Result. Transforms run on the goroutine
// that settles their input; observers run on the Executor they name, guarded by a
// task.Handle so that cancellation suppresses delivery.
package promise

import (
	"context"
	"fmt"
	"sync"

	"github.com/anisan-cli/anifeed/task"
	"github.com/samber/mo"
)

// PanicError wraps a value recovered from a panicking transform.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("promise: transform panicked: %v", e.Value)
}

// Promise is a value that becomes available later, or fails.
type Promise[T any] struct {
	mu        sync.Mutex
	settled   bool
	result    mo.Result[T]
	callbacks []func(mo.Result[T])
	done      chan struct{}
}

func pending[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// New runs executor immediately and returns the promise it settles.
// Only the first call to resolve or reject has any effect.
func New[T any](executor func(resolve func(T), reject func(error))) *Promise[T] {
	p := pending[T]()

	func() {
		defer func() {
			if r := recover(); r != nil {
				p.settle(mo.Err[T](&PanicError{Value: r}))
			}
		}()

		executor(
			func(v T) { p.settle(mo.Ok(v)) },
			func(err error) { p.settle(mo.Err[T](err)) },
		)
	}()

	return p
}

// Resolve returns a promise already fulfilled with v.
func Resolve[T any](v T) *Promise[T] {
	p := pending[T]()
	p.settle(mo.Ok(v))
	return p
}

// Reject returns a promise already failed with err.
func Reject[T any](err error) *Promise[T] {
	p := pending[T]()
	p.settle(mo.Err[T](err))
	return p
}

// Go runs fn on its own goroutine and settles with its outcome.
// The context is handed to fn untouched; fn decides how to honour it.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Promise[T] {
	p := pending[T]()
	go func() {
		p.settle(call(func() (T, error) { return fn(ctx) }))
	}()
	return p
}

func call[T any](fn func() (T, error)) (result mo.Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			result = mo.Err[T](&PanicError{Value: r})
		}
	}()

	return mo.TupleToResult(fn())
}

func (p *Promise[T]) settle(r mo.Result[T]) bool {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return false
	}

	p.settled = true
	p.result = r
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(r)
	}

	return true
}

// onSettle runs fn with the outcome, inline if already settled.
func (p *Promise[T]) onSettle(fn func(mo.Result[T])) {
	p.mu.Lock()
	if p.settled {
		r := p.result
		p.mu.Unlock()
		fn(r)
		return
	}

	p.callbacks = append(p.callbacks, fn)
	p.mu.Unlock()
}

// Done is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} {
	return p.done
}

// Result returns the outcome if the promise has settled.
func (p *Promise[T]) Result() mo.Option[mo.Result[T]] {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.settled {
		return mo.None[mo.Result[T]]()
	}

	return mo.Some(p.result)
}

// Await blocks until the promise settles or ctx is done.
// It is meant for command-line and HTTP edges, never for the UI loop.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.result.Get()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Observe delivers the outcome to fn on exec, at most once.
// Cancelling the returned handle before delivery suppresses it.
func (p *Promise[T]) Observe(exec Executor, fn func(mo.Result[T])) *task.Handle {
	h := task.New()
	p.ObserveWith(h, exec, fn)
	return h
}

// ObserveWith is Observe with a caller-supplied handle, typically one retained in a task.Slot.
func (p *Promise[T]) ObserveWith(h *task.Handle, exec Executor, fn func(mo.Result[T])) {
	p.onSettle(func(r mo.Result[T]) {
		if !h.Pending() {
			return
		}

		exec.Execute(func() {
			if h.TryComplete() {
				fn(r)
			}
		})
	})
}

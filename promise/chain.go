package promise

import (
	"errors"
	"sync"

	"github.com/samber/mo"
)

var errNilPromise = errors.New("promise: async transform returned nil")

// Then applies a synchronous transform once p fulfils. A failure of p, an error
// from fn, or a panic in fn fails the returned promise and skips later steps.
func Then[T, R any](p *Promise[T], fn func(T) (R, error)) *Promise[R] {
	next := pending[R]()

	p.onSettle(func(r mo.Result[T]) {
		v, err := r.Get()
		if err != nil {
			next.settle(mo.Err[R](err))
			return
		}

		next.settle(call(func() (R, error) { return fn(v) }))
	})

	return next
}

// ThenAsync chains a step that is itself asynchronous.
func ThenAsync[T, R any](p *Promise[T], fn func(T) *Promise[R]) *Promise[R] {
	next := pending[R]()

	p.onSettle(func(r mo.Result[T]) {
		v, err := r.Get()
		if err != nil {
			next.settle(mo.Err[R](err))
			return
		}

		inner := call(func() (*Promise[R], error) {
			ip := fn(v)
			if ip == nil {
				return nil, errNilPromise
			}
			return ip, nil
		})

		ip, err := inner.Get()
		if err != nil {
			next.settle(mo.Err[R](err))
			return
		}

		ip.onSettle(func(r mo.Result[R]) { next.settle(r) })
	})

	return next
}

// Catch gives fn the chance to turn a failure back into a value.
// Fulfilled values pass through unchanged.
func Catch[T any](p *Promise[T], fn func(error) (T, error)) *Promise[T] {
	next := pending[T]()

	p.onSettle(func(r mo.Result[T]) {
		if !r.IsError() {
			next.settle(r)
			return
		}

		next.settle(call(func() (T, error) { return fn(r.Error()) }))
	})

	return next
}

// Queue joins ps into one promise of their values in input order,
// whatever order they complete in. The first member failure fails the join
// and the remaining values are discarded. An empty input resolves to an empty slice.
func Queue[T any](ps []*Promise[T]) *Promise[[]T] {
	out := pending[[]T]()

	if len(ps) == 0 {
		out.settle(mo.Ok([]T{}))
		return out
	}

	var (
		mu        sync.Mutex
		values    = make([]T, len(ps))
		remaining = len(ps)
	)

	for i, p := range ps {
		p.onSettle(func(r mo.Result[T]) {
			v, err := r.Get()
			if err != nil {
				out.settle(mo.Err[[]T](err))
				return
			}

			mu.Lock()
			values[i] = v
			remaining--
			last := remaining == 0
			mu.Unlock()

			if last {
				out.settle(mo.Ok(values))
			}
		})
	}

	return out
}

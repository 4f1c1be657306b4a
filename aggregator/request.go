package aggregator

import (
	"sync/atomic"

	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/metrics"
	"github.com/anisan-cli/anifeed/promise"
)

// State of one aggregation request.
type State int32

const (
	Idle State = iota
	Fetching
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Request is a running aggregation. Its embedded promise settles only after the
// request has reached its terminal state.
type Request[T any] struct {
	*promise.Promise[T]

	operation string
	state     atomic.Int32
}

func newRequest[T any](operation string) *Request[T] {
	return &Request[T]{operation: operation}
}

// State reports the current state.
func (r *Request[T]) State() State {
	return State(r.state.Load())
}

// Operation names what is being aggregated.
func (r *Request[T]) Operation() string {
	return r.operation
}

// start moves Idle to Fetching and wires the terminal transitions onto joined.
func (r *Request[T]) start(joined func() *promise.Promise[T]) *Request[T] {
	if !r.state.CompareAndSwap(int32(Idle), int32(Fetching)) {
		panic("aggregator: request started twice")
	}
	log.WithFields(log.Fields{"operation": r.operation}).Debug("aggregator: fetching")

	out := promise.Then(joined(), func(v T) (T, error) {
		r.finish(Succeeded, nil)
		return v, nil
	})

	r.Promise = promise.Catch(out, func(err error) (T, error) {
		r.finish(Failed, err)
		var zero T
		return zero, err
	})

	return r
}

func (r *Request[T]) finish(state State, err error) {
	if !r.state.CompareAndSwap(int32(Fetching), int32(state)) {
		return
	}

	metrics.Aggregations.WithLabelValues(r.operation, state.String()).Inc()

	entry := log.WithFields(log.Fields{"operation": r.operation, "state": state.String()})
	if err != nil {
		entry.WithError(err).Error("aggregator: failed")
		return
	}
	entry.Info("aggregator: succeeded")
}

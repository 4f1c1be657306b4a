// Package task provides cancellable handles for in-flight request chains and the
// single-slot ownership discipline presentation code uses to hold them.
//
// A Handle moves from Pending to exactly one of Completed or Cancelled. Delivery code
// calls TryComplete immediately before running a terminal callback; once Cancel has
// returned, TryComplete can no longer succeed, so a cancelled handle never delivers.
package task

import (
	"sync"
	"sync/atomic"
)

// State of a Handle.
type State int32

const (
	Pending State = iota
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Handle represents one in-flight request chain.
type Handle struct {
	state atomic.Int32

	mu        sync.Mutex
	onCancel  []func()
	cancelled chan struct{}
}

// New returns a pending handle.
func New() *Handle {
	return &Handle{cancelled: make(chan struct{})}
}

// State reports the current state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Pending reports whether the handle has reached neither terminal state.
func (h *Handle) Pending() bool {
	return h.State() == Pending
}

// TryComplete moves a pending handle to Completed. It returns false when the handle
// was already cancelled or completed, in which case the caller must not deliver.
func (h *Handle) TryComplete() bool {
	return h.state.CompareAndSwap(int32(Pending), int32(Completed))
}

// Cancel abandons the handle. It is idempotent and safe from any goroutine.
// Cancelling a completed handle is a no-op.
func (h *Handle) Cancel() {
	if !h.state.CompareAndSwap(int32(Pending), int32(Cancelled)) {
		return
	}

	h.mu.Lock()
	fns := h.onCancel
	h.onCancel = nil
	close(h.cancelled)
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// OnCancel registers fn to run when the handle is cancelled, typically to forward
// cancellation to a transport context. fn runs immediately if the handle is already
// cancelled and never runs if it completes.
func (h *Handle) OnCancel(fn func()) {
	h.mu.Lock()
	if h.State() == Cancelled {
		h.mu.Unlock()
		fn()
		return
	}
	h.onCancel = append(h.onCancel, fn)
	h.mu.Unlock()
}

// Cancelled is closed once the handle is cancelled.
func (h *Handle) Cancelled() <-chan struct{} {
	return h.cancelled
}

package task

import (
	"context"
	"errors"
	"sync"
)

// ErrPending is returned by Slot.Set when the retained handle is still in flight.
// Replacing it without cancelling would let two chains race for the same outcome.
var ErrPending = errors.New("task: slot still holds a pending handle")

// Slot retains at most one handle for a logical request, such as a screen's
// "current episode fetch". The zero value is ready to use.
type Slot struct {
	mu      sync.Mutex
	current *Handle
}

// Start cancels the retained handle, then runs start with a fresh context and
// retains the handle it returns. The context is cancelled together with that handle.
// This is the only sanctioned way to replace an in-flight request.
func (s *Slot) Start(parent context.Context, start func(ctx context.Context) *Handle) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Cancel()
		s.current = nil
	}

	ctx, cancel := context.WithCancel(parent)
	h := start(ctx)
	h.OnCancel(cancel)
	s.current = h
	return h
}

// Set retains h. It refuses to drop a pending handle that was never cancelled.
func (s *Slot) Set(h *Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.Pending() {
		return ErrPending
	}
	s.current = h
	return nil
}

// Current returns the retained handle, or nil.
func (s *Slot) Current() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Cancel cancels and releases the retained handle. Use it on teardown.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Cancel()
		s.current = nil
	}
}

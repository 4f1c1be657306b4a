package promise

import (
	"context"
	"sync"
)

// Executor decides where a delivery callback runs.
type Executor interface {
	Execute(fn func())
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(fn func())

func (f ExecutorFunc) Execute(fn func()) { f(fn) }

var (
	// Inline runs callbacks on whichever goroutine settles the promise.
	Inline Executor = ExecutorFunc(func(fn func()) { fn() })

	// Goroutine runs every callback on a new goroutine.
	Goroutine Executor = ExecutorFunc(func(fn func()) { go fn() })
)

// Loop is a serial executor: callbacks run one at a time, in submission order,
// on the goroutine that called Run. It stands in for a UI thread.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Execute enqueues fn. It never blocks. Calls after Close are dropped.
func (l *Loop) Execute(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
		}

		if closed {
			return
		}

		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
	}
}

// Close stops Run after the already queued callbacks have run.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

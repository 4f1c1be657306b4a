package transport

import (
	"sync"
	"time"
)

// circuitBreaker skips hosts that failed threshold times in a row until cooldown passes.
type circuitBreaker struct {
	mu        sync.Mutex
	failures  map[string]int
	lastSeen  map[string]time.Time
	threshold int
	cooldown  time.Duration
}

func newCircuitBreaker(threshold int, cooldown time.Duration) *circuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	return &circuitBreaker{
		failures:  make(map[string]int),
		lastSeen:  make(map[string]time.Time),
		threshold: threshold,
		cooldown:  cooldown,
	}
}

func (cb *circuitBreaker) allow(host string) bool {
	if host == "" {
		return true
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.failures[host] < cb.threshold {
		return true
	}

	if time.Since(cb.lastSeen[host]) > cb.cooldown {
		delete(cb.failures, host)
		delete(cb.lastSeen, host)
		return true
	}

	return false
}

func (cb *circuitBreaker) success(host string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	delete(cb.failures, host)
	delete(cb.lastSeen, host)
}

func (cb *circuitBreaker) failure(host string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures[host]++
	cb.lastSeen[host] = time.Now()
}

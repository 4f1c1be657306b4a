// Package network provides the HTTP clients shared by the transport and the Lua scrapers.
package network

import (
	"net/http"
	"time"
)

// clientTimeout is the outer bound of any single exchange. The transport applies
// the configured per-request timeout through the request context.
const clientTimeout = time.Minute

// Pool sizes the idle connection pool of a client.
type Pool struct {
	Idle, IdlePerHost, PerHost int
	IdleTimeout               time.Duration
	HeaderTimeout             time.Duration
}

// DefaultPool favours fan-out: an aggregation opens several connections to the same host at once.
var DefaultPool = Pool{
	Idle:          64,
	IdlePerHost:   16,
	PerHost:       32,
	IdleTimeout:   45 * time.Second,
	HeaderTimeout: 20 * time.Second,
}

// Client is the shared plain client.
var Client = NewClient(DefaultPool)

// NewClient builds a client on a cloned default transport sized by pool.
func NewClient(pool Pool) *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	pool.apply(t)

	return &http.Client{
		Timeout:   clientTimeout,
		Transport: t,
	}
}

func (p Pool) apply(t *http.Transport) {
	t.MaxIdleConns = p.Idle
	t.MaxIdleConnsPerHost = p.IdlePerHost
	t.MaxConnsPerHost = p.PerHost
	t.IdleConnTimeout = p.IdleTimeout
	t.ResponseHeaderTimeout = p.HeaderTimeout
}

// Package transport is the HTTP collaborator every source adapter talks through.
//
// Requests resolve to a promise of the raw response. Rate limiting, a per-host circuit
// breaker, bounded retries of idempotent requests and the on-disk response cache all
// live here, below the adapters, so that no layer above retries on its own.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/anisan-cli/anifeed/promise"
)

// Options shape a single request.
type Options struct {
	// Method defaults to GET.
	Method string
	Header map[string]string
	Query  url.Values
	Body   []byte

	// Cache allows the response to be served from and stored in the response cache.
	// It only applies to GET requests and only when caching is enabled.
	Cache bool
}

// Response is a fully read 2xx response.
type Response struct {
	URL        string      `json:"url"`
	StatusCode int         `json:"status"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body"`
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &DecodeError{URL: r.URL, Err: err}
	}

	return nil
}

// Transport issues requests.
type Transport interface {
	Request(ctx context.Context, rawURL string, opts Options) *promise.Promise[*Response]
}

// Decode chains a JSON decode step onto a pending response.
func Decode[T any](p *promise.Promise[*Response]) *promise.Promise[T] {
	return promise.Then(p, func(r *Response) (T, error) {
		var v T
		err := r.Decode(&v)
		return v, err
	})
}

package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/anisan-cli/anifeed/constant"
	"github.com/anisan-cli/anifeed/internal/cache"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/metrics"
	"github.com/anisan-cli/anifeed/network"
	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/util"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

const maxBodySize = 32 << 20

// Config of an HTTP transport.
type Config struct {
	Timeout          time.Duration
	Retries          int
	RateLimit        float64
	RateBurst        int
	Impersonate      bool
	BreakerThreshold int
	BreakerCooldown  time.Duration
	Cache            bool
}

// ConfigFromViper reads the transport.* and cache.enable keys.
func ConfigFromViper() Config {
	return Config{
		Timeout:          viper.GetDuration(key.TransportTimeout),
		Retries:          viper.GetInt(key.TransportRetries),
		RateLimit:        viper.GetFloat64(key.TransportRateLimit),
		RateBurst:        viper.GetInt(key.TransportRateBurst),
		Impersonate:      viper.GetBool(key.TransportImpersonate),
		BreakerThreshold: viper.GetInt(key.TransportBreakerThreshold),
		BreakerCooldown:  viper.GetDuration(key.TransportBreakerCooldown),
		Cache:            viper.GetBool(key.CacheEnable),
	}
}

// HTTP is the production Transport.
type HTTP struct {
	client  *http.Client
	config  Config
	limiter *rate.Limiter
	breaker *circuitBreaker
	backoff []time.Duration
}

// Default returns the process-wide transport built from configuration.
var Default = sync.OnceValue(func() *HTTP {
	return New(ConfigFromViper())
})

// New picks the plain or the impersonating client according to config.
func New(config Config) *HTTP {
	client := network.Client
	if config.Impersonate {
		client = network.Impersonating()
	}

	return NewWithClient(client, config)
}

// NewWithClient builds a transport around client.
func NewWithClient(client *http.Client, config Config) *HTTP {
	t := &HTTP{
		client:  client,
		config:  config,
		breaker: newCircuitBreaker(config.BreakerThreshold, config.BreakerCooldown),
		backoff: []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, 900 * time.Millisecond},
	}

	if config.RateLimit > 0 && config.RateBurst > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst)
	}

	return t
}

// Request runs the request on its own goroutine. Cancelling ctx abandons it.
func (t *HTTP) Request(ctx context.Context, rawURL string, opts Options) *promise.Promise[*Response] {
	return promise.Go(ctx, func(ctx context.Context) (*Response, error) {
		return t.Do(ctx, rawURL, opts)
	})
}

// Do is the blocking form of Request.
func (t *HTTP) Do(ctx context.Context, rawURL string, opts Options) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}

	if len(opts.Query) > 0 {
		q := u.Query()
		for k, vs := range opts.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	method := lo.Ternary(opts.Method == "", http.MethodGet, opts.Method)
	target := u.String()

	useCache := opts.Cache && t.config.Cache && method == http.MethodGet
	cacheKey := cache.GenerateKey(target, method)
	if useCache {
		var cached Response
		if cache.Read(cacheKey, &cached) {
			metrics.CacheHits.Inc()
			log.WithFields(log.Fields{"url": target}).Debug("transport: cache hit")
			return &cached, nil
		}
	}

	if !t.breaker.allow(u.Host) {
		metrics.Requests.WithLabelValues(u.Host, metrics.OutcomeRejected).Inc()
		log.WithFields(log.Fields{"host": u.Host}).Warn("transport: circuit open")
		return nil, &TransportError{URL: target, Err: ErrCircuitOpen}
	}

	attempts := 1
	if (method == http.MethodGet || method == http.MethodHead) && t.config.Retries > 0 {
		attempts += t.config.Retries
	}

	var lastErr *TransportError
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := t.backoff[util.Min(attempt-1, len(t.backoff)-1)]
			select {
			case <-ctx.Done():
				return nil, &TransportError{URL: target, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}

		resp, err := t.once(ctx, method, u, opts)
		if err == nil {
			t.breaker.success(u.Host)
			if useCache {
				if err := cache.Write(cacheKey, resp); err != nil {
					log.Warnf("transport: cache write: %s", err)
				}
			}
			return resp, nil
		}

		lastErr = err
		log.WithFields(log.Fields{
			"url":     target,
			"attempt": attempt + 1,
			"status":  err.StatusCode,
		}).Warn(err.Error())

		if ctx.Err() != nil || !err.Temporary() {
			break
		}
	}

	if lastErr.Temporary() && ctx.Err() == nil {
		t.breaker.failure(u.Host)
	}

	return nil, lastErr
}

func (t *HTTP) once(ctx context.Context, method string, u *url.URL, opts Options) (*Response, *TransportError) {
	target := u.String()

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{URL: target, Err: err}
		}
	}

	if t.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.config.Timeout)
		defer cancel()
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	for k, v := range opts.Header {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	metrics.RequestDuration.WithLabelValues(u.Host).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Requests.WithLabelValues(u.Host, metrics.OutcomeError).Inc()
		return nil, &TransportError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.Requests.WithLabelValues(u.Host, metrics.OutcomeError).Inc()
		return nil, &TransportError{URL: target, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.Requests.WithLabelValues(u.Host, metrics.OutcomeStatus).Inc()
		return nil, &TransportError{URL: target, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	metrics.Requests.WithLabelValues(u.Host, metrics.OutcomeOK).Inc()
	log.WithFields(log.Fields{"url": target, "status": resp.StatusCode, "bytes": len(data)}).Debug("transport: response")

	return &Response{
		URL:        target,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// Package server exposes the aggregator over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/anisan-cli/anifeed/aggregator"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/log"
	"github.com/anisan-cli/anifeed/metrics"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Config struct {
	Address   string
	RateLimit float64
	RateBurst int
}

func ConfigFromViper() Config {
	return Config{
		Address:   viper.GetString(key.ServerAddress),
		RateLimit: viper.GetFloat64(key.ServerRateLimit),
		RateBurst: viper.GetInt(key.ServerRateBurst),
	}
}

type Server struct {
	aggregator *aggregator.Aggregator
	config     Config
	limiter    *rate.Limiter
}

func New(agg *aggregator.Aggregator, config Config) *Server {
	s := &Server{aggregator: agg, config: config}
	if config.RateLimit > 0 && config.RateBurst > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst)
	}
	return s
}

// Handler routes the API. /metrics and /healthz bypass the rate limiter.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/featured", s.route("/featured", s.featured))
	mux.Handle("/search", s.route("/search", s.search))
	mux.Handle("/episodes", s.route("/episodes", s.episodes))
	mux.Handle("/healthz", logging("/healthz", http.HandlerFunc(healthz)))
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func (s *Server) route(name string, h http.HandlerFunc) http.Handler {
	return logging(name, rateLimit(s.limiter, getOnly(h)))
}

// ListenAndServe blocks until ctx is done, then shuts the server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Infof("server listening on %s", s.config.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
			return
		}
		next(w, r)
	}
}

func rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, errors.New("too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func logging(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("request completed")
	})
}

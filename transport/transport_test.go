package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

type listing struct {
	Results []struct {
		Title string `json:"title"`
	} `json:"results"`
}

func newTestTransport(srv *httptest.Server, config Config) *HTTP {
	t := NewWithClient(srv.Client(), config)
	t.backoff = []time.Duration{time.Millisecond}
	return t
}

func await(ctx context.Context, t *HTTP, rawURL string, opts Options) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return t.Request(ctx, rawURL, opts).Await(ctx)
}

func TestRequest(t *testing.T) {
	Convey("Given an upstream server", t, func() {
		filesystem.SetMemMapFs()
		viper.Set(key.CacheTTL, time.Hour)

		var (
			hits   atomic.Int32
			status atomic.Int32
		)
		status.Store(http.StatusOK)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if code := int(status.Load()); code != http.StatusOK {
				w.WriteHeader(code)
				return
			}

			switch r.URL.Path {
			case "/bad-json":
				_, _ = w.Write([]byte(`{"results": 1`))
			case "/echo":
				_, _ = w.Write([]byte(`{"results":[{"title":"` + r.URL.Query().Get("page") + `"}]}`))
			case "/slow":
				time.Sleep(200 * time.Millisecond)
				_, _ = w.Write([]byte(`{}`))
			default:
				_, _ = w.Write([]byte(`{"results":[{"title":"a"},{"title":"b"}]}`))
			}
		}))
		defer srv.Close()

		tr := newTestTransport(srv, Config{Retries: 1, BreakerThreshold: 2, BreakerCooldown: time.Minute, Cache: true})

		Convey("A 2xx response should resolve and decode", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			v, err := Decode[listing](tr.Request(ctx, srv.URL+"/top", Options{})).Await(ctx)
			So(err, ShouldBeNil)
			So(len(v.Results), ShouldEqual, 2)
			So(v.Results[1].Title, ShouldEqual, "b")
		})

		Convey("Query values should be merged into the URL", func() {
			resp, err := await(context.Background(), tr, srv.URL+"/echo", Options{Query: url.Values{"page": {"3"}}})
			So(err, ShouldBeNil)
			So(string(resp.Body), ShouldContainSubstring, `"3"`)
		})

		Convey("A body of the wrong shape should be a DecodeError", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := Decode[listing](tr.Request(ctx, srv.URL+"/bad-json", Options{})).Await(ctx)
			var de *DecodeError
			So(errors.As(err, &de), ShouldBeTrue)
		})

		Convey("A 404 should fail without retrying", func() {
			status.Store(http.StatusNotFound)
			_, err := await(context.Background(), tr, srv.URL+"/missing", Options{})

			var te *TransportError
			So(errors.As(err, &te), ShouldBeTrue)
			So(te.StatusCode, ShouldEqual, http.StatusNotFound)
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("A 503 should be retried once for GET", func() {
			status.Store(http.StatusServiceUnavailable)
			_, err := await(context.Background(), tr, srv.URL+"/top", Options{})
			So(err, ShouldNotBeNil)
			So(hits.Load(), ShouldEqual, 2)
		})

		Convey("A 503 should not be retried for POST", func() {
			status.Store(http.StatusServiceUnavailable)
			_, err := await(context.Background(), tr, srv.URL+"/top", Options{Method: http.MethodPost, Body: []byte("{}")})
			So(err, ShouldNotBeNil)
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("A host failing repeatedly should be skipped", func() {
			status.Store(http.StatusBadGateway)
			_, _ = await(context.Background(), tr, srv.URL+"/top", Options{})
			_, _ = await(context.Background(), tr, srv.URL+"/top", Options{})
			before := hits.Load()

			_, err := await(context.Background(), tr, srv.URL+"/top", Options{})
			So(errors.Is(err, ErrCircuitOpen), ShouldBeTrue)
			So(hits.Load(), ShouldEqual, before)
		})

		Convey("Cacheable responses should be served from disk the second time", func() {
			_, err := await(context.Background(), tr, srv.URL+"/top", Options{Cache: true})
			So(err, ShouldBeNil)
			resp, err := await(context.Background(), tr, srv.URL+"/top", Options{Cache: true})
			So(err, ShouldBeNil)
			So(string(resp.Body), ShouldContainSubstring, `"a"`)
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("Cancelling the context should abandon the request", func() {
			ctx, cancel := context.WithCancel(context.Background())
			p := tr.Request(ctx, srv.URL+"/slow", Options{})
			cancel()

			_, err := p.Await(context.Background())
			var te *TransportError
			So(errors.As(err, &te), ShouldBeTrue)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("An unparsable URL should be a TransportError", func() {
			_, err := await(context.Background(), tr, "http://exa mple.org", Options{})
			var te *TransportError
			So(errors.As(err, &te), ShouldBeTrue)
		})

		Reset(func() {
			viper.Set(key.CacheTTL, 6*time.Hour)
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a limiter of one request per second with no burst headroom", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		tr := newTestTransport(srv, Config{RateLimit: 1, RateBurst: 1})

		Convey("A second request should wait for a token or give up with the context", func() {
			_, err := await(context.Background(), tr, srv.URL, Options{})
			So(err, ShouldBeNil)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err = tr.Request(ctx, srv.URL, Options{}).Await(context.Background())
			So(err, ShouldNotBeNil)
		})
	})
}

package jsonapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anisan-cli/anifeed/aggregator"
	"github.com/anisan-cli/anifeed/auth"
	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/transport"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

const (
	topAiring = `{"results":[
		{"title":"Frieren","id":"sousou-no-frieren","image":"https://img.example.org/frieren.jpg","episodenumber":"28"},
		{"title":"Dandadan","id":"dandadan","image":"https://img.example.org/dandadan.jpg"},
		{"title":"Kaiju No. 8","id":"kaiju no 8","image":"https://img.example.org/kaiju.jpg"}
	]}`
	recent = `{"results":[
		{"title":"A","id":"a","image":"https://img.example.org/a.jpg"},
		{"title":"B","id":"b","image":"https://img.example.org/b.jpg"},
		{"title":"C","id":"c","image":"https://img.example.org/c.jpg"},
		{"title":"D","id":"d","image":"https://img.example.org/d.jpg"},
		{"title":"E","id":"e","image":"https://img.example.org/e.jpg"}
	]}`
	malformed = `{"results":[
		{"title":"A","id":"a","image":"https://img.example.org/a.jpg"},
		{"title":"B","id":"b","image":"::not a url::"},
		{"title":"C","id":"c","image":"https://img.example.org/c.jpg"}
	]}`
	frierenInfo = `{"id":"sousou-no-frieren","title":"Frieren","image":"https://img.example.org/frieren.jpg","episodes":[
		{"id":"sousou-no-frieren-episode-1","number":1},
		{"id":"sousou-no-frieren-episode-2","number":2,"url":"https://anime.example.org/watch/frieren-2"}
	]}`
)

// headers keeps the request headers last seen by the test server.
type headers struct {
	mu   sync.Mutex
	last http.Header
}

func (h *headers) record(header http.Header) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = header.Clone()
}

func (h *headers) Get(name string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last.Get(name)
}

func newServer(routes map[string]string, seen *headers) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			seen.record(r.Header)
		}

		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}

		if r.URL.Path != "/info/sousou-no-frieren" && r.URL.Query().Get("page") != "1" {
			http.Error(w, "missing page", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func newSource(srv *httptest.Server) *Source {
	src, err := New(Config{
		BaseURL:          srv.URL + "/",
		AnimeURLTemplate: "https://anime.example.org/category/{id}",
		Server:           "gogocdn",
	}, transport.NewWithClient(srv.Client(), transport.Config{}))
	if err != nil {
		panic(err)
	}
	return src
}

func TestJSONAPI(t *testing.T) {
	Convey("Given a catalog API", t, func() {
		filesystem.SetMemMapFs()
		keyring.MockInit()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		seen := &headers{}
		srv := newServer(map[string]string{
			"/top-airing":             topAiring,
			"/recent-episodes":        recent,
			"/frieren":                topAiring,
			"/broken":                 malformed,
			"/info/sousou-no-frieren": frierenInfo,
		}, seen)
		defer srv.Close()

		src := newSource(srv)

		Convey("Featured should map each record to one link, in order", func() {
			links, err := src.Featured(ctx).Await(ctx)
			So(err, ShouldBeNil)
			So(len(links), ShouldEqual, 3)
			So(links[0].Title(), ShouldEqual, "Frieren")
			So(links[0].URL(), ShouldEqual, "https://anime.example.org/category/sousou-no-frieren")
			So(links[0].Cover(), ShouldEqual, "https://img.example.org/frieren.jpg")
			So(links[0].SourceID(), ShouldEqual, ID)
			So(links[2].URL(), ShouldEqual, "https://anime.example.org/category/kaiju%20no%208")
		})

		Convey("One malformed image should fail the call, not truncate it", func() {
			links, err := src.Search(ctx, "broken").Await(ctx)
			var mle *source.MalformedLinkError
			So(errors.As(err, &mle), ShouldBeTrue)
			So(mle.Field, ShouldEqual, "cover")
			So(links, ShouldBeNil)
		})

		Convey("An upstream error should be a TransportError", func() {
			_, err := src.Search(ctx, "nothing-here").Await(ctx)
			var te *transport.TransportError
			So(errors.As(err, &te), ShouldBeTrue)
			So(te.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("Episodes should be resolved from the canonical URL", func() {
			featured, err := src.Featured(ctx).Await(ctx)
			So(err, ShouldBeNil)

			eps, err := src.Episodes(ctx, featured[0]).Await(ctx)
			So(err, ShouldBeNil)
			So(len(eps), ShouldEqual, 2)
			So(eps[0].Server(), ShouldEqual, "gogocdn")
			So(eps[0].Episode(), ShouldEqual, "sousou-no-frieren-episode-1")
			So(eps[0].URL(), ShouldEqual, featured[0].URL())
			So(eps[1].URL(), ShouldEqual, "https://anime.example.org/watch/frieren-2")
		})

		Convey("Episodes of a foreign URL should fail before any request", func() {
			foreign, _ := source.NewAnimeLink("x", "https://other.example.org/x", "", ID)
			_, err := src.Episodes(ctx, foreign).Await(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("A stored token should be sent as a bearer token", func() {
			So(auth.SetToken(ID, "secret"), ShouldBeNil)
			withToken := newSource(srv)

			_, err := withToken.Featured(ctx).Await(ctx)
			So(err, ShouldBeNil)
			So(seen.Get("Authorization"), ShouldEqual, "Bearer secret")
		})

		Convey("The token should be read when the source is built, not per call", func() {
			So(auth.SetToken(ID, "late"), ShouldBeNil)
			Reset(func() { _ = auth.DeleteToken(ID) })

			_, err := src.Featured(ctx).Await(ctx)
			So(err, ShouldBeNil)
			So(seen.Get("Authorization"), ShouldBeEmpty)
		})

		Convey("The aggregator should build a 3 + 5 container", func() {
			c, err := aggregator.New(src).Featured(ctx).Await(ctx)
			So(err, ShouldBeNil)
			So(len(c.Featured), ShouldEqual, 3)
			So(len(c.Latest), ShouldEqual, 5)
			So(c.Latest[0].Title(), ShouldEqual, "A")
			So(c.Latest[4].Title(), ShouldEqual, "E")
		})
	})

	Convey("A template without {id} should be rejected", t, func() {
		_, err := New(Config{BaseURL: "https://api.example.org", AnimeURLTemplate: "https://x/"}, nil)
		So(err, ShouldNotBeNil)
	})
}

package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anisan-cli/anifeed/promise"
	"github.com/anisan-cli/anifeed/source"
	"github.com/anisan-cli/anifeed/source/sourcetest"
	"github.com/samber/lo"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func await[T any](r *Request[T]) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Await(ctx)
}

func titles(links []source.AnimeLink) []string {
	return lo.Map(links, func(l source.AnimeLink, _ int) string { return l.Title() })
}

func TestFeatured(t *testing.T) {
	Convey("Given a source with 3 featured and 5 latest entries", t, func() {
		src := sourcetest.New("s1")
		src.FeaturedList = sourcetest.Animes("s1", "featured", 3)
		src.LatestList = sourcetest.Animes("s1", "latest", 5)

		Convey("The container should keep both lists apart and in order", func() {
			src.Delay["featured"] = 30 * time.Millisecond

			req := New(src).Featured(context.Background())
			c, err := await(req)
			So(err, ShouldBeNil)
			So(len(c.Featured), ShouldEqual, 3)
			So(len(c.Latest), ShouldEqual, 5)
			So(titles(c.Featured), ShouldResemble, []string{"featured-0", "featured-1", "featured-2"})
			So(titles(c.Latest)[4], ShouldEqual, "latest-4")
			So(req.State(), ShouldEqual, Succeeded)
			So(src.Calls(), ShouldEqual, 2)
		})

		Convey("A failing latest call should fail the whole request", func() {
			boom := errors.New("latest is down")
			src.Err["latest"] = boom
			src.Delay["featured"] = 20 * time.Millisecond

			req := New(src).Featured(context.Background())
			c, err := await(req)
			So(err, ShouldEqual, boom)
			So(c.Featured, ShouldBeNil)
			So(req.State(), ShouldEqual, Failed)
		})

		Convey("The request should be fetching while in flight", func() {
			src.Delay["featured"] = 50 * time.Millisecond
			req := New(src).Featured(context.Background())
			So(req.State(), ShouldEqual, Fetching)
			_, _ = await(req)
			So(req.State().Terminal(), ShouldBeTrue)
		})

		Convey("An observer should be told exactly once", func() {
			req := New(src).Featured(context.Background())

			delivered := make(chan mo.Result[source.FeaturedContainer], 2)
			req.Observe(promise.Goroutine, func(r mo.Result[source.FeaturedContainer]) {
				delivered <- r
			})
			_, _ = await(req)
			time.Sleep(20 * time.Millisecond)

			So(len(delivered), ShouldEqual, 1)
		})
	})

	Convey("Without sources Featured should fail", t, func() {
		_, err := await(New().Featured(context.Background()))
		So(err, ShouldEqual, ErrNoSources)
	})
}

func TestSearch(t *testing.T) {
	Convey("Given two sources", t, func() {
		a, b := sourcetest.New("a"), sourcetest.New("b")
		a.SearchResults["frieren"] = sourcetest.Animes("a", "a", 2)
		b.SearchResults["frieren"] = sourcetest.Animes("b", "b", 1)
		a.Delay["search"] = 30 * time.Millisecond

		Convey("Results should be concatenated in source order", func() {
			links, err := await(New(a, b).Search(context.Background(), "frieren"))
			So(err, ShouldBeNil)
			So(titles(links), ShouldResemble, []string{"a-0", "a-1", "b-0"})
		})

		Convey("One failing source should fail the search", func() {
			b.Err["search"] = errors.New("b is down")
			_, err := await(New(a, b).Search(context.Background(), "frieren"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestEpisodes(t *testing.T) {
	Convey("Given an anime from a known source", t, func() {
		src := sourcetest.New("s1")
		anime := sourcetest.Animes("s1", "show", 1)[0]
		ep, err := source.NewEpisodeLink(anime, "cdn", "show-episode-1", "")
		So(err, ShouldBeNil)
		src.EpisodeLists[anime.URL()] = []source.EpisodeLink{ep}

		Convey("Episodes should be routed to the producing source", func() {
			eps, err := await(New(sourcetest.New("other"), src).Episodes(context.Background(), anime))
			So(err, ShouldBeNil)
			So(len(eps), ShouldEqual, 1)
			So(source.Equal(eps[0], ep), ShouldBeTrue)
		})

		Convey("An anime from an unknown source should fail", func() {
			_, err := await(New(sourcetest.New("other")).Episodes(context.Background(), anime))
			So(errors.Is(err, ErrUnknownSource), ShouldBeTrue)
		})

		Convey("A missing anime should fail with ErrNoAnime", func() {
			_, err := await(New(src).Episodes(context.Background(), source.AnimeLink{}))
			So(err, ShouldEqual, source.ErrNoAnime)
		})
	})
}

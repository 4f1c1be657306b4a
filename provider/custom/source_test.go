package custom

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/source"
	. "github.com/smartystreets/goconvey/convey"
)

const script = `
local base = "https://anime.example.org"

function FeaturedAnimes()
	return {
		{ title = "Frieren", url = base .. "/frieren", cover = base .. "/frieren.jpg" },
		{ title = "Dandadan", url = base .. "/dandadan" },
	}
end

function LatestAnimes()
	return {
		{ title = "Frieren", url = base .. "/frieren" },
		{ title = "Broken", url = "not a url" },
		{ title = "Dandadan", url = base .. "/dandadan" },
	}
end

function SearchAnimes(query)
	return { { title = query, url = base .. "/" .. query } }
end

function AnimeEpisodes(animeURL)
	local eps = {}
	for i = 1, 3 do
		eps[i] = { id = tostring(i), url = animeURL .. "/" .. i, server = "main" }
	end
	return eps
end
`

func load(content string) (*Source, error) {
	path := filepath.Join("/sources", "example.lua")
	if err := filesystem.API().WriteFile(path, []byte(content), 0644); err != nil {
		return nil, err
	}
	return LoadSource(path)
}

func TestLuaSource(t *testing.T) {
	Convey("Given a loaded Lua source", t, func() {
		filesystem.SetMemMapFs()

		src, err := load(script)
		So(err, ShouldBeNil)
		defer src.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		So(src.ID(), ShouldEqual, "example custom")
		So(src.Name(), ShouldEqual, "example")

		Convey("Featured should map every record in order", func() {
			links, err := src.Featured(ctx).Await(ctx)
			So(err, ShouldBeNil)
			So(len(links), ShouldEqual, 2)
			So(links[0].Title(), ShouldEqual, "Frieren")
			So(links[0].Cover(), ShouldEqual, "https://anime.example.org/frieren.jpg")
			So(links[1].SourceID(), ShouldEqual, "example custom")
		})

		Convey("One malformed record should fail Latest as a whole", func() {
			links, err := src.Latest(ctx).Await(ctx)
			var mle *source.MalformedLinkError
			So(errors.As(err, &mle), ShouldBeTrue)
			So(links, ShouldBeNil)
		})

		Convey("Search should pass the query through", func() {
			links, err := src.Search(ctx, "frieren").Await(ctx)
			So(err, ShouldBeNil)
			So(links[0].URL(), ShouldEqual, "https://anime.example.org/frieren")
		})

		Convey("Episodes should carry the parent", func() {
			parent, _ := source.NewAnimeLink("Frieren", "https://anime.example.org/frieren", "", src.ID())
			eps, err := src.Episodes(ctx, parent).Await(ctx)
			So(err, ShouldBeNil)
			So(len(eps), ShouldEqual, 3)
			So(eps[2].URL(), ShouldEqual, "https://anime.example.org/frieren/3")
			So(eps[0].Parent().Title(), ShouldEqual, "Frieren")
		})

		Convey("Episodes without a parent should fail", func() {
			_, err := src.Episodes(ctx, source.AnimeLink{}).Await(ctx)
			So(err, ShouldEqual, source.ErrNoAnime)
		})

		Convey("Concurrent calls should be serialized safely", func() {
			ps := []func() error{
				func() error { _, err := src.Featured(ctx).Await(ctx); return err },
				func() error { _, err := src.Search(ctx, "a").Await(ctx); return err },
				func() error { _, err := src.Search(ctx, "b").Await(ctx); return err },
			}
			errs := make(chan error, len(ps))
			for _, p := range ps {
				go func() { errs <- p() }()
			}
			for range ps {
				So(<-errs, ShouldBeNil)
			}
		})
	})

	Convey("A script missing an entry point should be rejected", t, func() {
		filesystem.SetMemMapFs()
		_, err := load(`function SearchAnimes(q) return {} end`)
		So(err, ShouldNotBeNil)
	})

	Convey("A script returning a non-table should fail the call", t, func() {
		filesystem.SetMemMapFs()
		src, err := load(`
			function FeaturedAnimes() return "nope" end
			function LatestAnimes() return {} end
			function SearchAnimes(q) return {} end
			function AnimeEpisodes(u) return {} end
		`)
		So(err, ShouldBeNil)
		defer src.Close()

		_, err = src.Featured(context.Background()).Await(context.Background())
		So(err, ShouldNotBeNil)
	})
}

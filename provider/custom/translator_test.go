package custom

import (
	"errors"
	"testing"

	"github.com/anisan-cli/anifeed/source"
	. "github.com/smartystreets/goconvey/convey"
	lua "github.com/yuin/gopher-lua"
)

func TestAnimeFromTable(t *testing.T) {
	Convey("animeFromTable", t, func() {
		L := lua.NewState()
		defer L.Close()

		Convey("Should extract anime from valid Lua table", func() {
			tbl := L.NewTable()
			tbl.RawSetString("title", lua.LString("Bleach"))
			tbl.RawSetString("url", lua.LString("https://example.com/bleach"))
			tbl.RawSetString("cover", lua.LString("https://example.com/cover.jpg"))

			anime, err := animeFromTable(tbl, "bleach custom")
			So(err, ShouldBeNil)
			So(anime.Title(), ShouldEqual, "Bleach")
			So(anime.URL(), ShouldEqual, "https://example.com/bleach")
			So(anime.Cover(), ShouldEqual, "https://example.com/cover.jpg")
			So(anime.SourceID(), ShouldEqual, "bleach custom")
		})

		Convey("Should accept name in place of title", func() {
			tbl := L.NewTable()
			tbl.RawSetString("name", lua.LString("Naruto"))
			tbl.RawSetString("url", lua.LString("https://example.com/naruto"))

			anime, err := animeFromTable(tbl, "x")
			So(err, ShouldBeNil)
			So(anime.Title(), ShouldEqual, "Naruto")
		})

		Convey("Should fail when the title is missing", func() {
			tbl := L.NewTable()
			tbl.RawSetString("url", lua.LString("https://example.com"))

			_, err := animeFromTable(tbl, "x")
			So(err, ShouldNotBeNil)
		})

		Convey("Should fail with MalformedLinkError on a relative url", func() {
			tbl := L.NewTable()
			tbl.RawSetString("title", lua.LString("Naruto"))
			tbl.RawSetString("url", lua.LString("/naruto"))

			_, err := animeFromTable(tbl, "x")
			var mle *source.MalformedLinkError
			So(errors.As(err, &mle), ShouldBeTrue)
		})
	})
}

func TestEpisodeFromTable(t *testing.T) {
	Convey("episodeFromTable", t, func() {
		L := lua.NewState()
		defer L.Close()

		parent, err := source.NewAnimeLink("Bleach", "https://example.com/bleach", "", "x")
		So(err, ShouldBeNil)

		Convey("Should extract an episode", func() {
			tbl := L.NewTable()
			tbl.RawSetString("id", lua.LString("bleach-episode-1"))
			tbl.RawSetString("server", lua.LString("cdn"))
			tbl.RawSetString("url", lua.LString("https://example.com/bleach/1"))

			ep, err := episodeFromTable(tbl, parent)
			So(err, ShouldBeNil)
			So(ep.Episode(), ShouldEqual, "bleach-episode-1")
			So(ep.Server(), ShouldEqual, "cdn")
			So(ep.URL(), ShouldEqual, "https://example.com/bleach/1")
		})

		Convey("Should fail without a server", func() {
			tbl := L.NewTable()
			tbl.RawSetString("id", lua.LString("1"))

			_, err := episodeFromTable(tbl, parent)
			So(err, ShouldEqual, source.ErrNoServer)
		})
	})
}

func TestMapRecords(t *testing.T) {
	Convey("mapRecords", t, func() {
		L := lua.NewState()
		defer L.Close()

		So(L.DoString(`
			good = {
				{ title = "A", url = "https://example.com/a" },
				{ title = "B", url = "https://example.com/b" },
			}
			mixed = {
				{ title = "A", url = "https://example.com/a" },
				"oops",
			}
		`), ShouldBeNil)

		convert := func(t *lua.LTable) (source.AnimeLink, error) { return animeFromTable(t, "x") }

		Convey("Should keep the order of the array", func() {
			links, err := mapRecords(L.GetGlobal("good").(*lua.LTable), convert)
			So(err, ShouldBeNil)
			So(len(links), ShouldEqual, 2)
			So(links[0].Title(), ShouldEqual, "A")
			So(links[1].Title(), ShouldEqual, "B")
		})

		Convey("Should fail on a non-table entry instead of skipping it", func() {
			_, err := mapRecords(L.GetGlobal("mixed").(*lua.LTable), convert)
			So(err, ShouldNotBeNil)
		})
	})
}

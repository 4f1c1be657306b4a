package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/provider/jsonapi"
	"github.com/anisan-cli/anifeed/transport"
	"github.com/anisan-cli/anifeed/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

const script = `
function FeaturedAnimes() return {} end
function LatestAnimes() return {} end
function SearchAnimes(q) return {} end
function AnimeEpisodes(u) return {} end
`

func TestRegistry(t *testing.T) {
	Convey("Given a sources directory with one script", t, func() {
		filesystem.SetMemMapFs()
		So(filesystem.API().WriteFile(filepath.Join(where.Sources(), "kitsu.lua"), []byte(script), 0644), ShouldBeNil)
		So(filesystem.API().WriteFile(filepath.Join(where.Sources(), "notes.txt"), []byte("x"), 0644), ShouldBeNil)

		Convey("Customs should list only Lua scripts", func() {
			customs := Customs()
			So(len(customs), ShouldEqual, 1)
			So(customs[0].Name, ShouldEqual, "kitsu")
			So(customs[0].Kind, ShouldEqual, KindCustom)
		})

		Convey("Builtins should start with the JSON catalog", func() {
			So(Builtins()[0].ID, ShouldEqual, jsonapi.ID)
		})

		Convey("Configured HTML sites should be listed as builtins", func() {
			viper.Set(key.HTMLSources, []map[string]any{
				{"id": "site", "featured_url": "https://x.org/a", "latest_url": "https://x.org/b", "search_url": "https://x.org/s?q={query}", "item": "li"},
			})
			defer viper.Set(key.HTMLSources, []map[string]any{})

			builtins := Builtins()
			So(len(builtins), ShouldEqual, 2)
			So(builtins[1].Kind, ShouldEqual, KindHTML)
		})

		Convey("Get should find by name and by ID", func() {
			p, err := Get("kitsu")
			So(err, ShouldBeNil)
			So(p.Kind, ShouldEqual, KindCustom)

			p, err = Get("kitsu custom")
			So(err, ShouldBeNil)
			So(p.Name, ShouldEqual, "kitsu")
		})

		Convey("Get should suggest the closest name for a typo", func() {
			_, err := Get("kitsuu")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, `did you mean "kitsu"`)
		})

		Convey("Sources should create them in the requested order", func() {
			viper.Set(key.JSONAPIBaseURL, "https://api.example.org")
			viper.Set(key.JSONAPIAnimeURLTemplate, "https://example.org/{id}")

			srcs, err := Sources("kitsu", "jsonapi")
			So(err, ShouldBeNil)
			So(len(srcs), ShouldEqual, 2)
			So(srcs[0].ID(), ShouldEqual, "kitsu custom")
			So(srcs[1].ID(), ShouldEqual, jsonapi.ID)
		})

		Convey("Sources should fall back to the configured defaults", func() {
			viper.Set(key.DefaultSources, []string{"kitsu"})
			defer viper.Set(key.DefaultSources, []string{"jsonapi"})

			srcs, err := Sources()
			So(err, ShouldBeNil)
			So(srcs[0].Name(), ShouldEqual, "kitsu")
		})
	})
}

func TestUpdate(t *testing.T) {
	Convey("Given a scripts server", t, func() {
		filesystem.SetMemMapFs()

		remote := map[string]string{"kitsu.lua": script, "other.lua": "-- other"}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, ok := remote[strings.TrimPrefix(r.URL.Path, "/scripts/")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()

		tr := transport.NewWithClient(srv.Client(), transport.Config{})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		Convey("Missing scripts should be installed", func() {
			updated, err := Update(ctx, tr, srv.URL+"/scripts", "kitsu.lua")
			So(err, ShouldBeNil)
			So(updated, ShouldResemble, []string{"kitsu.lua"})

			content, err := filesystem.API().ReadFile(filepath.Join(where.Sources(), "kitsu.lua"))
			So(err, ShouldBeNil)
			So(string(content), ShouldEqual, script)
		})

		Convey("Unchanged scripts should be left alone", func() {
			So(filesystem.API().WriteFile(filepath.Join(where.Sources(), "kitsu.lua"), []byte(script), 0644), ShouldBeNil)
			So(filesystem.API().WriteFile(filepath.Join(where.Sources(), "other.lua"), []byte("-- old"), 0644), ShouldBeNil)

			updated, err := Update(ctx, tr, srv.URL+"/scripts/")
			So(err, ShouldBeNil)
			So(updated, ShouldResemble, []string{"other.lua"})
		})

		Convey("A missing remote script should fail", func() {
			_, err := Update(ctx, tr, srv.URL+"/scripts", "nope.lua")
			So(err, ShouldNotBeNil)
		})

		Convey("Path traversal should be refused", func() {
			_, err := Update(ctx, tr, srv.URL+"/scripts", "../evil.lua")
			So(err, ShouldNotBeNil)
		})
	})
}

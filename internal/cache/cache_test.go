package cache

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

type entry struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

func TestCache(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()
		viper.Set(key.CacheTTL, time.Hour)

		Convey("Keys should ignore case and whitespace", func() {
			So(GenerateKey("One Piece", "GET"), ShouldEqual, GenerateKey("onepiece", "get"))
			So(GenerateKey("a", "bc"), ShouldNotEqual, GenerateKey("ab", "c"))
		})

		Convey("A written entry should be readable", func() {
			k := GenerateKey("https://example.org/search", "GET")
			So(Write(k, entry{Status: 200, Body: "ok"}), ShouldBeNil)

			var got entry
			So(Read(k, &got), ShouldBeTrue)
			So(got, ShouldResemble, entry{Status: 200, Body: "ok"})

			Convey("And no temporary file should remain", func() {
				names, err := filesystem.API().ReadDir(where.Responses())
				So(err, ShouldBeNil)
				So(names, ShouldHaveLength, 1)
				So(names[0].Name(), ShouldEqual, k)
			})
		})

		Convey("Concurrent writers of one key should each land a whole entry", func() {
			k := GenerateKey("https://example.org/search?q=frieren", "GET")

			const writers = 8
			errs := make(chan error, writers)
			var wg sync.WaitGroup
			for i := range writers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- Write(k, entry{Status: 200, Body: strings.Repeat("x", 1024*(i+1))})
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				So(err, ShouldBeNil)
			}

			var got entry
			So(Read(k, &got), ShouldBeTrue)
			So(len(got.Body)%1024, ShouldEqual, 0)

			names, err := filesystem.API().ReadDir(where.Responses())
			So(err, ShouldBeNil)
			So(names, ShouldHaveLength, 1)
		})

		Convey("A missing entry should not be readable", func() {
			var got entry
			So(Read("missing", &got), ShouldBeFalse)
		})

		Convey("An expired entry should be ignored and collected", func() {
			k := GenerateKey("old")
			So(Write(k, entry{Status: 200}), ShouldBeNil)

			old := time.Now().Add(-2 * time.Hour)
			So(filesystem.API().Chtimes(filepath.Join(where.Responses(), k), old, old), ShouldBeNil)

			var got entry
			So(Read(k, &got), ShouldBeFalse)
			So(CollectGarbage(), ShouldEqual, 1)
		})

		Reset(func() {
			viper.Set(key.CacheTTL, 6*time.Hour)
		})
	})
}

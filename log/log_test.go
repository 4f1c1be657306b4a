package log

import (
	"testing"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)

		Convey("Setup should not create any file", func() {
			So(Setup(), ShouldBeNil)
			entries, err := filesystem.API().ReadDir(where.Logs())
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
		})

		Convey("WithFields should still be usable", func() {
			So(Setup(), ShouldBeNil)
			So(func() { WithFields(Fields{"a": 1}).Info("dropped") }, ShouldNotPanic)
		})
	})

	Convey("Given logging is enabled", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "debug")
		defer viper.Set(key.LogsWrite, false)

		Convey("Setup should create today's log file", func() {
			So(Setup(), ShouldBeNil)
			Info("hello")
			entries, err := filesystem.API().ReadDir(where.Logs())
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 1)
		})
	})
}

package config

import (
	"testing"

	"github.com/anisan-cli/anifeed/filesystem"
	"github.com/anisan-cli/anifeed/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without a config file", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should populate every default", func() {
			So(Setup(), ShouldBeNil)
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Transport defaults should be sane", func() {
			So(Setup(), ShouldBeNil)
			So(viper.GetDuration(key.TransportTimeout).Seconds(), ShouldBeGreaterThan, 0)
			So(viper.GetInt(key.TransportRetries), ShouldBeGreaterThanOrEqualTo, 0)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("sources.jsonapi.base_url"), ShouldEqual, "sources_jsonapi_base_url")
		})
	})
}

func TestFieldEnv(t *testing.T) {
	Convey("Given a field", t, func() {
		f := Default[key.CacheTTL]

		Convey("Env should carry the application prefix once", func() {
			So(f.Env(), ShouldEqual, "ANIFEED_CACHE_TTL")
		})

		Convey("typeName should describe durations", func() {
			So(f.typeName(), ShouldEqual, "duration")
		})
	})
}

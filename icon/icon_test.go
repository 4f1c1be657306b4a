package icon

import (
	"testing"

	"github.com/anisan-cli/anifeed/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given the registered icons", t, func() {
		Reset(func() { viper.Set(key.IconsVariant, plain) })

		for _, variant := range AvailableVariants() {
			Convey("Every icon renders with variant="+variant, func() {
				viper.Set(key.IconsVariant, variant)
				for i := range icons {
					So(Get(i), ShouldNotBeEmpty)
				}
			})
		}

		Convey("An unknown variant falls back to plain", func() {
			viper.Set(key.IconsVariant, "sparkles")
			So(Get(Success), ShouldEqual, "+")
		})

		Convey("An unknown icon renders empty", func() {
			So(Get(Icon(1000)), ShouldBeEmpty)
		})
	})
}

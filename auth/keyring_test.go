package auth

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func TestToken(t *testing.T) {
	Convey("Given a mock keyring", t, func() {
		keyring.MockInit()

		Convey("A missing token should be absent", func() {
			So(Token("jsonapi").IsPresent(), ShouldBeFalse)
		})

		Convey("A stored token should be returned", func() {
			So(SetToken("jsonapi", "secret"), ShouldBeNil)
			So(Token("jsonapi").MustGet(), ShouldEqual, "secret")

			Convey("And deleting it should remove it", func() {
				So(DeleteToken("jsonapi"), ShouldBeNil)
				So(Token("jsonapi").IsPresent(), ShouldBeFalse)
			})
		})

		Convey("Tokens should be kept per source", func() {
			So(SetToken("a", "1"), ShouldBeNil)
			So(Token("b").IsPresent(), ShouldBeFalse)
		})
	})
}

package cache_test

import (
	"testing"

	"github.com/okian/bookings/internal/adapters/cache"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given the table key convention", t, func() {
		Convey("When no window is set", func() {
			Convey("Then the key uses the 'all' suffix", func() {
				So(cache.Key("cards", "", 0), ShouldEqual, "rates:cards:all")
				So(cache.Key("saves", "", 7), ShouldEqual, "rates:saves:all")
			})
		})

		Convey("When a window is set", func() {
			Convey("Then the key encodes the window edge", func() {
				So(cache.Key("cards", "2324", 10), ShouldEqual, "rates:cards:2324:10")
				So(cache.Key("bonus_60_90", "2425", 1), ShouldEqual, "rates:bonus_60_90:2425:1")
			})
		})
	})
}

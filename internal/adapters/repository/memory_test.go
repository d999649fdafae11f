package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/bookings/internal/adapters/repository"
	"github.com/okian/bookings/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seeded memory store", t, func() {
		store := repository.NewMemoryStore(
			repository.WithRecords([]model.MatchRecord{
				{PlayerID: 1, Minutes: 90, YellowCards: 1, Season: "2324", Gameweek: 5},
				{PlayerID: 1, Minutes: 90, Season: "2324", Gameweek: 6},
				{PlayerID: 2, Minutes: 90, Saves: 6, Season: "2324", Gameweek: 5},
				{PlayerID: 3, Minutes: 90, Season: "2425", Gameweek: 1},
			}),
			repository.WithNames(map[int64]string{1: "V. Kompany", 2: "E. Martínez"}),
			repository.WithPositions(map[int64]string{1: "DEF", 2: "GK", 3: "MID"}),
		)

		Convey("When querying without a filter", func() {
			records, err := store.MatchRecords(ctx, repository.Filter{})
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 4)
		})

		Convey("When filtering by position", func() {
			records, err := store.MatchRecords(ctx, repository.Filter{Position: "GK"})
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 1)
			So(records[0].PlayerID, ShouldEqual, 2)
		})

		Convey("When filtering by season window", func() {
			records, err := store.MatchRecords(ctx, repository.Filter{Season: "2324", Gameweek: 6})
			So(err, ShouldBeNil)

			Convey("Then the named gameweek and later seasons are excluded", func() {
				So(records, ShouldHaveLength, 2)
				for _, r := range records {
					So(r.Season, ShouldEqual, "2324")
					So(r.Gameweek, ShouldBeLessThan, 6)
				}
			})
		})

		Convey("When filtering by season only", func() {
			records, err := store.MatchRecords(ctx, repository.Filter{Season: "2324"})
			So(err, ShouldBeNil)

			Convey("Then the whole season and later are excluded", func() {
				So(records, ShouldBeEmpty)
			})
		})

		Convey("When resolving names", func() {
			names, err := store.PlayerNames(ctx, []int64{1, 2, 99})
			So(err, ShouldBeNil)

			Convey("Then unknown ids are absent rather than erroring", func() {
				So(names, ShouldHaveLength, 2)
				So(names[1], ShouldEqual, "V. Kompany")
				_, ok := names[99]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When records are added after construction", func() {
			store.Add(model.MatchRecord{PlayerID: 4, Minutes: 45, Season: "2324", Gameweek: 7})
			records, err := store.MatchRecords(ctx, repository.Filter{})
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 5)
		})

		Convey("When the store is closed", func() {
			So(store.Close(), ShouldBeNil)

			Convey("Then every operation reports ErrClosed", func() {
				_, err := store.MatchRecords(ctx, repository.Filter{})
				So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
				_, err = store.PlayerNames(ctx, []int64{1})
				So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
				So(errors.Is(store.Ping(ctx), repository.ErrClosed), ShouldBeTrue)
			})
		})
	})
}

package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/bookings/internal/adapters/repository"
	service "github.com/okian/bookings/internal/app"
	"github.com/okian/bookings/internal/domain/model"
	"github.com/okian/bookings/internal/domain/ranking"
	"github.com/okian/bookings/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeCache records published tables in memory.
type fakeCache struct {
	mu     sync.Mutex
	tables map[string][]ranking.Row
}

func newFakeCache() *fakeCache {
	return &fakeCache{tables: make(map[string][]ranking.Row)}
}

func (f *fakeCache) Publish(ctx context.Context, stat, season string, gameweek int, rows []ranking.Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[stat] = rows
	return nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }
func (f *fakeCache) Close() error                   { return nil }

// slowStore delays record reads so a refresh can be caught mid-run.
type slowStore struct {
	*repository.MemoryStore
	delay time.Duration
}

func (s *slowStore) MatchRecords(ctx context.Context, f repository.Filter) ([]model.MatchRecord, error) {
	time.Sleep(s.delay)
	return s.MemoryStore.MatchRecords(ctx, f)
}

func seedStore() *repository.MemoryStore {
	return repository.NewMemoryStore(
		repository.WithRecords([]model.MatchRecord{
			// Player 42: three matches, two yellows and a red.
			{PlayerID: 42, Minutes: 90, YellowCards: 1, Season: "2324", Gameweek: 1},
			{PlayerID: 42, Minutes: 90, Season: "2324", Gameweek: 2},
			{PlayerID: 42, Minutes: 60, YellowCards: 1, RedCards: 1, Season: "2324", Gameweek: 3},
			// Player 7: clean record over two matches.
			{PlayerID: 7, Minutes: 90, Season: "2324", Gameweek: 1},
			{PlayerID: 7, Minutes: 90, Bonus: 3, Season: "2324", Gameweek: 2},
			// Player 9: goalkeeper with six saves over two full matches.
			{PlayerID: 9, Minutes: 90, Saves: 6, Season: "2324", Gameweek: 1},
			{PlayerID: 9, Minutes: 90, Saves: 3, Season: "2324", Gameweek: 2},
			// Player 11: substitute appearances only.
			{PlayerID: 11, Minutes: 45, Bonus: 1, Season: "2324", Gameweek: 1},
		}),
		repository.WithNames(map[int64]string{42: "R. Keane", 7: "D. Beckham", 9: "P. Schmeichel"}),
		repository.WithPositions(map[int64]string{42: "MID", 7: "MID", 9: "GK", 11: "FWD"}),
	)
}

func newTestService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	svc := service.New(append([]service.Option{service.WithStore(seedStore())}, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	return svc
}

func TestServiceStart(t *testing.T) {
	Convey("Given a service without a store", t, func() {
		if err := logger.Init(); err != nil {
			t.Fatalf("init logger: %v", err)
		}
		svc := service.New()

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then it should fail with ErrNoStore", func() {
				So(errors.Is(err, service.ErrNoStore), ShouldBeTrue)
			})
		})
	})

	Convey("Given a configured service", t, func() {
		svc := newTestService(t)
		defer svc.Stop()

		Convey("When starting twice", func() {
			err := svc.Start(context.Background())

			Convey("Then the second start is a no-op", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When asking for stats", func() {
			stats := svc.GetStats()

			So(stats["started"], ShouldBeTrue)
			So(stats["minMatches"], ShouldEqual, 10)
			So(stats["cache"], ShouldBeFalse)
		})
	})
}

func TestCardRates(t *testing.T) {
	ctx := context.Background()

	Convey("Given the seeded store", t, func() {
		svc := newTestService(t)
		defer svc.Stop()

		Convey("When computing card rates with the default floor", func() {
			rows, err := svc.CardRates(ctx)
			So(err, ShouldBeNil)

			Convey("Then the worst disciplinary record ranks first", func() {
				So(rows, ShouldNotBeEmpty)
				So(rows[0].PlayerID, ShouldEqual, 42)
				So(rows[0].Rank, ShouldEqual, 1)
				So(rows[0].Rate, ShouldEqual, -0.5) // -5 points over max(3, 10) matches
				So(rows[0].SampleSize, ShouldEqual, 3)
			})

			Convey("And display names are joined", func() {
				So(rows[0].Name, ShouldEqual, "R. Keane")
			})

			Convey("And clean players rate at zero", func() {
				last := rows[len(rows)-1]
				So(last.Rate, ShouldEqual, 0.0)
			})
		})

		Convey("When a top-N of one is configured", func() {
			capped := service.New(
				service.WithStore(seedStore()),
				service.WithTopN(1),
			)
			So(capped.Start(ctx), ShouldBeNil)
			defer capped.Stop()

			rows, err := capped.CardRates(ctx)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].PlayerID, ShouldEqual, 42)
		})
	})
}

func TestSaveAndBonusRates(t *testing.T) {
	ctx := context.Background()

	Convey("Given the seeded store", t, func() {
		svc := newTestService(t, service.WithMinMatches(2))
		defer svc.Stop()

		Convey("When computing save rates", func() {
			rows, err := svc.SaveRates(ctx)
			So(err, ShouldBeNil)

			Convey("Then only full-match goalkeepers appear", func() {
				So(rows, ShouldHaveLength, 1)
				So(rows[0].PlayerID, ShouldEqual, 9)
				// (6/3 + 3/3) points over 2 matches
				So(rows[0].Rate, ShouldEqual, 1.5)
			})
		})

		Convey("When computing bonus rates", func() {
			full, sub, err := svc.BonusRates(ctx)
			So(err, ShouldBeNil)

			Convey("Then the 60-90 window excludes substitutes", func() {
				ids := make(map[int64]bool)
				for _, row := range full {
					ids[row.PlayerID] = true
				}
				So(ids[11], ShouldBeFalse)
				So(ids[7], ShouldBeTrue)
			})

			Convey("And the 30-59 window contains only substitutes", func() {
				So(sub, ShouldHaveLength, 1)
				So(sub[0].PlayerID, ShouldEqual, 11)
				So(sub[0].Rate, ShouldEqual, 0.5) // 1 bonus point over max(1, 2)
			})
		})
	})
}

func TestPlayerCardRate(t *testing.T) {
	ctx := context.Background()

	Convey("Given the seeded store", t, func() {
		svc := newTestService(t)
		defer svc.Stop()

		Convey("When asking for a rated player", func() {
			row, err := svc.PlayerCardRate(ctx, 42)
			So(err, ShouldBeNil)

			Convey("Then the row carries rate, rank and name", func() {
				So(row.PlayerID, ShouldEqual, 42)
				So(row.Rate, ShouldEqual, -0.5)
				So(row.Rank, ShouldEqual, 1)
				So(row.Name, ShouldEqual, "R. Keane")
			})
		})

		Convey("When asking for an unknown player", func() {
			_, err := svc.PlayerCardRate(ctx, 999)

			Convey("Then it reports ErrPlayerNotRated", func() {
				So(errors.Is(err, service.ErrPlayerNotRated), ShouldBeTrue)
			})
		})
	})
}

func TestRefreshAll(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a cache", t, func() {
		cache := newFakeCache()
		svc := newTestService(t, service.WithCache(cache))
		defer svc.Stop()

		Convey("When refreshing", func() {
			err := svc.RefreshAll(ctx)
			So(err, ShouldBeNil)

			Convey("Then every statistic is published", func() {
				cache.mu.Lock()
				defer cache.mu.Unlock()
				So(cache.tables, ShouldContainKey, service.StatCards)
				So(cache.tables, ShouldContainKey, service.StatBonus6090)
				So(cache.tables, ShouldContainKey, service.StatBonus3059)
				So(cache.tables, ShouldContainKey, service.StatSaves)
			})

			Convey("And the last refresh time is recorded", func() {
				So(svc.GetStats(), ShouldContainKey, "lastRefresh")
			})
		})
	})

	Convey("Given a service whose store fails", t, func() {
		if err := logger.Init(); err != nil {
			t.Fatalf("init logger: %v", err)
		}
		store := seedStore()
		So(store.Close(), ShouldBeNil)
		svc := service.New(service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When refreshing", func() {
			err := svc.RefreshAll(ctx)

			Convey("Then the failure surfaces", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
			})
		})
	})
}

func TestWindowedService(t *testing.T) {
	ctx := context.Background()

	Convey("Given a window before gameweek three", t, func() {
		svc := newTestService(t, service.WithWindow("2324", 3))
		defer svc.Stop()

		Convey("When computing card rates", func() {
			rows, err := svc.CardRates(ctx)
			So(err, ShouldBeNil)

			Convey("Then player 42's red-card match is excluded", func() {
				var found ranking.Row
				for _, row := range rows {
					if row.PlayerID == 42 {
						found = row
					}
				}
				So(found.PlayerID, ShouldEqual, 42)
				So(found.SampleSize, ShouldEqual, 2)
				So(found.Rate, ShouldEqual, -0.1) // one yellow over max(2, 10)
			})
		})
	})
}

func TestStopDuringScheduledRefresh(t *testing.T) {
	Convey("Given a running service with a frequent schedule and a slow store", t, func() {
		if err := logger.Init(); err != nil {
			t.Fatalf("init logger: %v", err)
		}
		store := &slowStore{MemoryStore: seedStore(), delay: 150 * time.Millisecond}
		svc := service.New(
			service.WithStore(store),
			service.WithRefreshSchedule("@every 20ms"),
		)
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("When stopping while a scheduled refresh is in flight", func() {
			// Let a scheduled run get past its first store read.
			time.Sleep(60 * time.Millisecond)

			done := make(chan struct{})
			go func() {
				svc.Stop()
				close(done)
			}()

			Convey("Then Stop returns once the run finishes", func() {
				select {
				case <-done:
				case <-time.After(3 * time.Second):
					t.Fatal("Stop blocked while a scheduled refresh was running")
				}
			})
		})
	})
}

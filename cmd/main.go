package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/bookings/internal/adapters/cache"
	"github.com/okian/bookings/internal/adapters/repository"
	service "github.com/okian/bookings/internal/app"
	"github.com/okian/bookings/internal/config"
	"github.com/okian/bookings/internal/render"
	"github.com/okian/bookings/pkg/logger"
	"github.com/okian/bookings/pkg/metrics"
)

// Shutdown timeout for the ops listener.
const shutdownTimeout = 10 * time.Second

func main() {
	statFlag := flag.String("stat", "cards", "statistic to render: cards, bonus, saves or all")
	playerFlag := flag.Int64("player", 0, "render a single player's card rate instead of a table")
	daemonFlag := flag.Bool("daemon", false, "run the scheduled refresh daemon instead of a one-shot table")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "failed to open store", logger.Error(err))
		os.Exit(1)
	}

	opts := []service.Option{
		service.WithStore(store),
		service.WithLogger(log),
		service.WithMinutesRange(cfg.MinMinutes, cfg.MaxMinutes),
		service.WithMinMatches(cfg.MinMatches),
		service.WithTopN(cfg.TopN),
		service.WithWindow(cfg.Season, cfg.Gameweek),
	}

	if *daemonFlag {
		opts = append(opts, service.WithRefreshSchedule(cfg.RefreshSchedule))
		if cfg.RedisAddr != "" {
			tables, err := cache.New(ctx, cfg.RedisAddr,
				cache.WithTTL(time.Duration(cfg.CacheTTLMinutes)*time.Minute))
			if err != nil {
				log.Error(ctx, "failed to connect table cache", logger.Error(err))
				os.Exit(1)
			}
			opts = append(opts, service.WithCache(tables))
		}
	}

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	if *daemonFlag {
		runDaemon(ctx, cfg, svc, log)
		return
	}

	if err := runOnce(ctx, svc, *statFlag, *playerFlag); err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		os.Exit(1)
	}
}

// openStore picks the postgres store when a DSN is configured and falls
// back to an empty in-memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.PostgresDSN != "" {
		return repository.NewPostgresStore(ctx, cfg.PostgresDSN)
	}
	return repository.NewMemoryStore(), nil
}

// runOnce computes and renders the requested tables as a single batch run.
func runOnce(ctx context.Context, svc *service.Service, stat string, playerID int64) error {
	if playerID != 0 {
		row, err := svc.PlayerCardRate(ctx, playerID)
		if err != nil {
			return err
		}
		fmt.Printf("player %d (%s): rank %d, card rate %.4f over %d matches\n",
			row.PlayerID, row.Name, row.Rank, row.Rate, row.SampleSize)
		return nil
	}

	renderCards := func() error {
		rows, err := svc.CardRates(ctx)
		if err != nil {
			return err
		}
		return render.Table(os.Stdout, "Card points per match (worst first)", rows)
	}
	renderBonus := func() error {
		full, sub, err := svc.BonusRates(ctx)
		if err != nil {
			return err
		}
		if err := render.Table(os.Stdout, "Bonus points per match, 60-90 minutes", full); err != nil {
			return err
		}
		return render.Table(os.Stdout, "Bonus points per match, 30-59 minutes", sub)
	}
	renderSaves := func() error {
		rows, err := svc.SaveRates(ctx)
		if err != nil {
			return err
		}
		return render.Table(os.Stdout, "Save points per match (goalkeepers)", rows)
	}

	switch stat {
	case "cards":
		return renderCards()
	case "bonus":
		return renderBonus()
	case "saves":
		return renderSaves()
	case "all":
		if err := renderCards(); err != nil {
			return err
		}
		if err := renderBonus(); err != nil {
			return err
		}
		return renderSaves()
	default:
		return fmt.Errorf("unknown stat %q: want cards, bonus, saves or all", stat)
	}
}

// runDaemon refreshes immediately, then leaves the cron schedule and the
// ops listener running until the process is signalled.
func runDaemon(ctx context.Context, cfg *config.Config, svc *service.Service, log logger.Logger) {
	if err := svc.RefreshAll(ctx); err != nil {
		log.Error(ctx, "initial refresh failed", logger.Error(err))
	}

	ops := metrics.StartServer(cfg.MetricsAddr, svc.Ping)
	log.Info(ctx, "ops listener started", logger.String("addr", cfg.MetricsAddr))

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := ops.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "ops listener shutdown failed", logger.Error(err))
	}
}

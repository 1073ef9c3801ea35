package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Hoang105205/Online-Auction-sub001/internal/bidding"
	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
	"github.com/Hoang105205/Online-Auction-sub001/internal/config"
	"github.com/Hoang105205/Online-Auction-sub001/internal/health"
	"github.com/Hoang105205/Online-Auction-sub001/internal/notify"
	"github.com/Hoang105205/Online-Auction-sub001/internal/rating"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
	"github.com/Hoang105205/Online-Auction-sub001/internal/telemetry"
)

// app is one configured engine with its store and notification channel.
type app struct {
	cfg        *config.Config
	repos      *store.Repositories
	engine     *bidding.Engine
	dispatcher *notify.Dispatcher
	health     *health.Runner
	logger     *slog.Logger
	clock      clock.Clock
	out        io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, tp *telemetry.Provider, clk clock.Clock, out io.Writer) (*app, error) {
	logger := tp.Logger

	repos, err := store.Open(ctx, cfg.Database, clk)
	if err != nil {
		return nil, fmt.Errorf("opening store (driver=%s): %w", cfg.Database.Driver, err)
	}
	logger.DebugContext(ctx, "store opened", slog.String("driver", cfg.Database.Driver))

	var notifier notify.Notifier = notify.NewLog(logger)
	if cfg.Notify.Discord.Enabled {
		d, err := notify.NewDiscord(cfg.Notify.Discord)
		if err != nil {
			repos.Closer.Close()
			return nil, err
		}
		notifier = d
	}
	dispatcher, err := notify.NewDispatcher(notifier, cfg.Notify, logger, tp.MeterProvider)
	if err != nil {
		repos.Closer.Close()
		return nil, err
	}

	engine, err := bidding.NewEngine(bidding.Deps{
		Ledger:            repos.Ledger,
		Ratings:           rating.WithTimeout(repos.Ratings, cfg.Bidding.RatingTimeout),
		Policy:            bidding.NewPolicySource(cfg.Bidding.ExtendPolicy, repos.Settings),
		Dispatcher:        dispatcher,
		MinGoodPercentage: cfg.Bidding.MinGoodPercentage,
		Logger:            logger,
		Tracer:            tp.TracerProvider,
		Meter:             tp.MeterProvider,
		Clock:             clk,
	})
	if err != nil {
		repos.Closer.Close()
		return nil, err
	}

	return &app{
		cfg:        cfg,
		repos:      repos,
		engine:     engine,
		dispatcher: dispatcher,
		health:     health.NewRunner(clk, 5*time.Second, health.Checker{Name: "database", Check: repos.Ping}),
		logger:     logger,
		clock:      clk,
		out:        out,
	}, nil
}

// close waits for pending notifications and releases the store.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Notify.Timeout+time.Second)
	defer cancel()
	if err := a.dispatcher.Close(ctx); err != nil {
		a.logger.Warn("notifications still pending at exit", slog.Any("error", err))
	}
	if err := a.repos.Closer.Close(); err != nil {
		a.logger.Error("store close error", slog.Any("error", err))
	}
}

func (a *app) exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given")
	}
	for _, c := range commandList {
		if c.name == args[0] {
			return c.run(ctx, a, args[1:])
		}
	}
	return fmt.Errorf("unknown command %q", args[0])
}

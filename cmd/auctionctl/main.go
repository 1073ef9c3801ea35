package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
	"github.com/Hoang105205/Online-Auction-sub001/internal/config"
	"github.com/Hoang105205/Online-Auction-sub001/internal/telemetry"

	// Register store drivers so they are available via store.Open.
	_ "github.com/Hoang105205/Online-Auction-sub001/internal/store/memstore"
	_ "github.com/Hoang105205/Online-Auction-sub001/internal/store/postgres"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	if err := run(*configPath, flag.Args()); err != nil {
		slog.Error("fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: auctionctl [-config file] <command> [flags]\n\ncommands:\n")
	for _, c := range commandList {
		fmt.Fprintf(flag.CommandLine.Output(), "  %-12s %s\n", c.name, c.help)
	}
	fmt.Fprintln(flag.CommandLine.Output())
	flag.PrintDefaults()
}

func run(configPath string, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tp, err := telemetry.Setup(ctx, cfg.Telemetry, os.Stderr)
	if err != nil {
		slog.Warn("telemetry setup failed, continuing without OTEL export", slog.Any("error", err))
		tp = telemetry.Local(os.Stderr)
	}
	defer func() {
		if shutdownErr := tp.Shutdown(context.Background()); shutdownErr != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	a, err := newApp(ctx, cfg, tp, clock.Real{}, os.Stdout)
	if err != nil {
		return err
	}
	defer a.close()

	return a.exec(ctx, args)
}

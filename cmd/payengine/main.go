package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payengine/internal/app"
	"payengine/internal/feed"
	"payengine/internal/stream"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config file] <transactions.csv>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Without an input file, connects to the configured live feed.\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "initialization failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		bootstrap.Shutdown(ctx)
	}()

	switch {
	case flag.NArg() >= 1:
		if err := runFile(bootstrap, flag.Arg(0)); err != nil {
			slog.Error("run failed", slog.Any("error", err))
			os.Exit(1)
		}
	case bootstrap.Config.Feed.URL != "":
		runFeed(bootstrap)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// runFile processes a CSV file and writes the snapshot to stdout.
func runFile(bootstrap *app.Bootstrap, path string) error {
	slog.Info("processing payments", slog.String("input", path))

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	driver := stream.NewDriver(bootstrap.Processor, bootstrap.Sink)
	return driver.Run(f, os.Stdout)
}

// runFeed consumes the live websocket feed until interrupted. No snapshot is
// emitted: live mode never reaches end of stream.
func runFeed(bootstrap *app.Bootstrap) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := feed.NewSource(bootstrap.Config.Feed.URL, bootstrap.Processor.Inbox())
	source.Start(ctx)
	defer source.Stop()

	go bootstrap.Processor.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", slog.String("signal", sig.String()))
}

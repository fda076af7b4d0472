// Command heatworker runs one distributed worker session.
//
// Usage:
//
//	heatworker -master host:8888
//
// The worker dials the master, receives its partition assignment and
// global parameters, computes its rows in lockstep with its neighbors,
// reports its results, and exits. It exposes no other network surface.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arloliu/heatgrid/internal/logging"
	"github.com/arloliu/heatgrid/worker"
)

func main() {
	master := flag.String("master", "localhost:8888", "master address to dial")
	dialTimeout := flag.Duration("dial-timeout", 5*time.Second, "per-attempt dial timeout")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	logger := logging.NewSlogDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker starting", "master", *master)
	err := worker.Run(ctx, *master,
		worker.WithLogger(logger),
		worker.WithDialTimeout(*dialTimeout),
	)
	if err != nil {
		logger.Fatal("worker session failed", "error", err)
	}
}

// Command heatsim runs a heat diffusion scenario with the engine of
// choice, or benchmarks the engines against each other.
//
// Usage:
//
//	heatsim -config scenario.yaml
//	heatsim -engine parallel -threads 8 -iterations 500
//	heatsim -bench -iterations 200
//
// A distributed run starts the master side only; workers are separate
// heatworker processes dialing the listen address.
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

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/heatgrid"
	"github.com/arloliu/heatgrid/internal/logging"
	"github.com/arloliu/heatgrid/worker"
)

// Scenario is the YAML description of one simulation run.
type Scenario struct {
	Grid       heatgrid.Config `yaml:"grid"`
	Iterations int             `yaml:"iterations"`
	Engine     string          `yaml:"engine"`
	Threads    int             `yaml:"threads"`
	Listen     string          `yaml:"listen"`
	Workers    int             `yaml:"workers"`
}

func defaultScenario() Scenario {
	return Scenario{
		Iterations: 500,
		Engine:     "sequential",
		Threads:    4,
		Listen:     ":8888",
		Workers:    2,
	}
}

func main() {
	configPath := flag.String("config", "", "path to a YAML scenario file")
	engine := flag.String("engine", "", "engine override: sequential, parallel, distributed")
	iterations := flag.Int("iterations", 0, "iteration count override")
	threads := flag.Int("threads", 0, "parallel thread count override")
	listen := flag.String("listen", "", "distributed master listen address override")
	workers := flag.Int("workers", 0, "distributed worker count override")
	bench := flag.Bool("bench", false, "compare all engines on the scenario")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	logger := logging.NewSlogDefault()

	scenario := defaultScenario()
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			logger.Fatal("failed to read scenario", "path", *configPath, "error", err)
		}
		if err := yaml.Unmarshal(raw, &scenario); err != nil {
			logger.Fatal("failed to parse scenario", "path", *configPath, "error", err)
		}
	}
	if *engine != "" {
		scenario.Engine = *engine
	}
	if *iterations > 0 {
		scenario.Iterations = *iterations
	}
	if *threads > 0 {
		scenario.Threads = *threads
	}
	if *listen != "" {
		scenario.Listen = *listen
	}
	if *workers > 0 {
		scenario.Workers = *workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *bench {
		if err := runBench(ctx, logger, scenario); err != nil {
			logger.Fatal("benchmark failed", "error", err)
		}

		return
	}

	if err := runScenario(ctx, logger, scenario); err != nil {
		logger.Fatal("simulation failed", "engine", scenario.Engine, "error", err)
	}
}

func runScenario(ctx context.Context, logger heatgrid.Logger, s Scenario) error {
	eng, err := buildEngine(logger, s)
	if err != nil {
		return err
	}

	elapsed, err := eng.Simulate(ctx, s.Iterations)
	if err != nil {
		return err
	}

	grid := eng.Grid()
	logger.Info("simulation complete",
		"engine", s.Engine,
		"elapsed", elapsed,
		"avgInteriorTemp", fmt.Sprintf("%.4f", grid.AverageInterior()),
	)

	return nil
}

func buildEngine(logger heatgrid.Logger, s Scenario) (heatgrid.Engine, error) {
	opts := []heatgrid.Option{heatgrid.WithLogger(logger)}

	switch s.Engine {
	case "sequential":
		return heatgrid.NewSequential(&s.Grid, opts...)
	case "parallel":
		return heatgrid.NewParallel(&s.Grid, s.Threads, opts...)
	case "distributed":
		return heatgrid.NewMaster(&s.Grid, s.Listen, s.Workers, opts...)
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", heatgrid.ErrInvalidConfig, s.Engine)
	}
}

// runBench compares the engines on one scenario. The distributed engine
// runs with in-process workers over loopback so the comparison needs no
// external processes.
func runBench(ctx context.Context, logger heatgrid.Logger, s Scenario) error {
	seq, err := heatgrid.NewSequential(&s.Grid, heatgrid.WithLogger(logger))
	if err != nil {
		return err
	}
	seqElapsed, err := seq.Simulate(ctx, s.Iterations)
	if err != nil {
		return err
	}

	par, err := heatgrid.NewParallel(&s.Grid, s.Threads, heatgrid.WithLogger(logger))
	if err != nil {
		return err
	}
	parElapsed, err := par.Simulate(ctx, s.Iterations)
	if err != nil {
		return err
	}

	distElapsed, err := benchDistributed(ctx, logger, s)
	if err != nil {
		return err
	}

	logger.Info("benchmark complete",
		"grid", fmt.Sprintf("%dx%d", s.Grid.Width, s.Grid.Height),
		"iterations", s.Iterations,
		"sequential", seqElapsed,
		"parallel", parElapsed,
		"parallelSpeedup", fmt.Sprintf("%.2fx", seqElapsed.Seconds()/parElapsed.Seconds()),
		"distributed", distElapsed,
		"distributedSpeedup", fmt.Sprintf("%.2fx", seqElapsed.Seconds()/distElapsed.Seconds()),
	)

	return nil
}

func benchDistributed(ctx context.Context, logger heatgrid.Logger, s Scenario) (time.Duration, error) {
	master, err := heatgrid.NewMaster(&s.Grid, "127.0.0.1:0", s.Workers, heatgrid.WithLogger(logger))
	if err != nil {
		return 0, err
	}
	if err := master.Listen(ctx); err != nil {
		return 0, err
	}
	addr := master.Addr().String()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.Workers; i++ {
		g.Go(func() error {
			return worker.Run(gctx, addr)
		})
	}

	var elapsed time.Duration
	g.Go(func() error {
		var simErr error
		elapsed, simErr = master.Simulate(gctx, s.Iterations)

		return simErr
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}

	return elapsed, nil
}

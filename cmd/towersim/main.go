// Package main provides the headless tower simulator: it plays many runs with
// the autopilot and prints how each class fared.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/config"
	"github.com/cory-johannsen/tower/internal/game/session"
	"github.com/cory-johannsen/tower/internal/lifecycle"
	"github.com/cory-johannsen/tower/internal/observability"
	"github.com/cory-johannsen/tower/internal/sim"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults plus TOWER_* env")
	runs := flag.Int("runs", 0, "override sim.runs")
	class := flag.String("class", "", "override sim.class (warrior, mage, tank, archer, all)")
	seed := flag.Int64("seed", 0, "override battle.seed")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *runs > 0 {
		cfg.Sim.Runs = *runs
	}
	if *class != "" {
		cfg.Sim.Class = *class
	}
	if *seed != 0 {
		cfg.Battle.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("validating flags: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting tower simulator",
		zap.Int("runs", cfg.Sim.Runs),
		zap.String("class", cfg.Sim.Class),
		zap.Int("workers", cfg.Sim.Workers),
		zap.Int("floors", cfg.Battle.Floors),
		zap.Int64("seed", cfg.Battle.Seed),
	)

	contentStart := time.Now()
	content, err := sim.LoadContent(cfg, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content ready", zap.Duration("elapsed", time.Since(contentStart)))

	mgr := session.NewManager(content.TowerConfig(cfg.Battle, logger), content.NewSource, logger.Named("session"))

	var summary sim.Summary
	lc := lifecycle.New(logger)
	lc.Add("batch", &lifecycle.FuncJob{
		RunFn: func(ctx context.Context) error {
			var err error
			summary, err = sim.Batch(ctx, mgr, content.Rules, sim.BatchOptions{
				Runs:    cfg.Sim.Runs,
				Workers: cfg.Sim.Workers,
				Class:   cfg.Sim.Class,
				Options: sim.Options{
					Tick:     cfg.Sim.Tick(),
					MaxTicks: cfg.Sim.MaxTicks,
					Logger:   logger.Named("sim"),
				},
			})
			return err
		},
		CloseFn: content.Close,
	})

	runErr := lc.Run(context.Background())
	fmt.Fprint(os.Stdout, summary.String())
	logger.Info("simulation finished",
		zap.Int("runs", summary.Total.Runs),
		zap.Float64("win_rate", summary.Total.WinRate()),
		zap.Float64("avg_floor", summary.Total.AvgFloor()),
		zap.Duration("elapsed", time.Since(start)),
	)
	if runErr != nil {
		logger.Fatal("simulation error", zap.Error(runErr))
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

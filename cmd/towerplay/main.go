// Package main provides the interactive tower client: one run played by
// typing commands at a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/config"
	"github.com/cory-johannsen/tower/internal/console"
	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/session"
	"github.com/cory-johannsen/tower/internal/lifecycle"
	"github.com/cory-johannsen/tower/internal/observability"
	"github.com/cory-johannsen/tower/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty = defaults plus TOWER_* env")
	name := flag.String("name", "Hero", "player name")
	className := flag.String("class", "warrior", "player class (warrior, mage, tank, archer)")
	color := flag.Bool("color", true, "use ANSI colors")
	realtime := flag.Bool("realtime", true, "play animations in real time")
	tick := flag.Duration("tick", 50*time.Millisecond, "animation clock step")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	class, err := character.ParseClass(*className)
	if err != nil {
		log.Fatalf("parsing class: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	content, err := sim.LoadContent(cfg, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}

	mgr := session.NewManager(content.TowerConfig(cfg.Battle, logger), content.NewSource, logger.Named("session"))
	sess, err := mgr.Create(*name, class)
	if err != nil {
		logger.Fatal("creating session", zap.Error(err))
	}

	con, err := console.New(console.Config{
		Session:  sess,
		Rules:    content.Rules,
		In:       os.Stdin,
		Out:      os.Stdout,
		Tick:     *tick,
		Realtime: *realtime,
		Color:    *color,
		Logger:   logger.Named("console"),
	})
	if err != nil {
		logger.Fatal("creating console", zap.Error(err))
	}

	lc := lifecycle.New(logger)
	lc.Add("console", &lifecycle.FuncJob{
		RunFn: con.Run,
		CloseFn: func() {
			_ = mgr.Remove(sess.ID)
			content.Close()
		},
	})
	if err := lc.Run(context.Background()); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("console error", zap.Error(err))
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

// Package sim drives tower runs without a renderer: it loads game content,
// plays a session with a scripted autopilot, and reports how the run ended.
package sim

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/config"
	"github.com/cory-johannsen/tower/internal/game/ai"
	"github.com/cory-johannsen/tower/internal/game/combat"
	"github.com/cory-johannsen/tower/internal/game/condition"
	"github.com/cory-johannsen/tower/internal/game/dice"
	"github.com/cory-johannsen/tower/internal/game/npc"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
	"github.com/cory-johannsen/tower/internal/game/tower"
	"github.com/cory-johannsen/tower/internal/scripting"
)

// Content is every table a run reads, loaded once and shared by all sessions.
type Content struct {
	Rules      *ruleset.Ruleset
	Roster     *npc.Roster
	Policies   *ai.Registry
	Conditions *condition.Registry
	Scripts    *scripting.Manager

	seed   int64
	count  atomic.Int64
	logger *zap.Logger
}

// LoadContent loads the builtin content, replacing each table whose path is set
// in cfg.Content, and loads the policy predicates into a sandboxed Lua VM.
//
// Postcondition: on success the caller must Close the returned Content.
func LoadContent(cfg config.Config, logger *zap.Logger) (*Content, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Content{seed: cfg.Battle.Seed, logger: logger.Named("dice")}

	var err error
	if c.Rules, err = loadRules(cfg.Content.Classes); err != nil {
		return nil, err
	}
	if c.Roster, err = loadRoster(cfg.Content.Roster, cfg.Content.EnemiesDir); err != nil {
		return nil, err
	}
	if c.Conditions, err = loadConditions(cfg.Content.Conditions); err != nil {
		return nil, err
	}
	doc, err := loadPolicies(cfg.Content.Policies)
	if err != nil {
		return nil, err
	}

	roller := dice.NewLoggedRoller(c.newSource(), logger.Named("lua"))
	c.Scripts = scripting.NewManager(roller, logger.Named("scripting"), cfg.Scripting.InstructionLimit)
	if err := c.Scripts.LoadString(ai.ScriptName, ai.BuiltinScript()); err != nil {
		c.Scripts.Close()
		return nil, fmt.Errorf("loading builtin policy script: %w", err)
	}
	if cfg.Scripting.Dir != "" {
		if err := c.Scripts.LoadDir(cfg.Scripting.Dir); err != nil {
			c.Scripts.Close()
			return nil, fmt.Errorf("loading scripts from %s: %w", cfg.Scripting.Dir, err)
		}
	}
	c.Policies = ai.NewRegistry(doc, c.Scripts, logger.Named("ai"))

	logger.Info("content loaded",
		zap.Int("enemies", c.Roster.Len()),
		zap.Strings("policies", c.Policies.Archetypes()),
		zap.Int("conditions", len(c.Conditions.All())),
	)
	return c, nil
}

// Close releases the Lua VM.
func (c *Content) Close() {
	c.Scripts.Close()
}

// NewSource returns a random source for one session that logs every draw at
// debug. A zero seed yields the crypto source; otherwise each call yields the
// next seed in sequence so every session is reproducible on its own.
func (c *Content) NewSource() combat.Source {
	return dice.NewLoggedRoller(c.newSource(), c.logger)
}

func (c *Content) newSource() dice.Source {
	if c.seed == 0 {
		return dice.NewCryptoSource()
	}
	return dice.NewSeededSource(c.seed + c.count.Add(1) - 1)
}

// TowerConfig returns the run configuration shared by every session.
func (c *Content) TowerConfig(cfg config.BattleConfig, logger *zap.Logger) tower.Config {
	return tower.Config{
		Rules:      c.Rules,
		Roster:     c.Roster,
		Policies:   c.Policies,
		Conditions: c.Conditions,
		Animation:  cfg.Animation(),
		Floors:     cfg.Floors,
		Logger:     logger,
	}
}

func loadRules(path string) (*ruleset.Ruleset, error) {
	if path == "" {
		return ruleset.Default(), nil
	}
	rs, err := ruleset.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	return rs, nil
}

func loadRoster(path, enemiesDir string) (*npc.Roster, error) {
	var (
		r   *npc.Roster
		err error
	)
	if path == "" {
		r, err = npc.Builtin()
	} else {
		r, err = npc.LoadRosterFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	if enemiesDir == "" {
		return r, nil
	}
	templates, err := npc.LoadTemplates(enemiesDir)
	if err != nil {
		return nil, fmt.Errorf("loading enemy templates: %w", err)
	}
	if r, err = r.WithTemplates(templates); err != nil {
		return nil, fmt.Errorf("enemy templates in %s: %w", enemiesDir, err)
	}
	return r, nil
}

func loadConditions(dir string) (*condition.Registry, error) {
	var (
		reg *condition.Registry
		err error
	)
	if dir == "" {
		reg, err = condition.Builtin()
	} else {
		reg, err = condition.LoadDirectory(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("loading conditions: %w", err)
	}
	return reg, nil
}

func loadPolicies(path string) (*ai.Document, error) {
	var (
		doc *ai.Document
		err error
	)
	if path == "" {
		doc, err = ai.Builtin()
	} else {
		doc, err = ai.LoadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading policies: %w", err)
	}
	return doc, nil
}

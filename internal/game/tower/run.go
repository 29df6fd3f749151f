// Package tower drives a run through the floors: it spawns each floor's
// enemy, applies rewards between floors and resets the run.
package tower

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/game/ai"
	"github.com/cory-johannsen/tower/internal/game/battle"
	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/combat"
	"github.com/cory-johannsen/tower/internal/game/condition"
	"github.com/cory-johannsen/tower/internal/game/npc"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
)

var (
	// ErrNoRewardPending is returned by Choose outside StageReward.
	ErrNoRewardPending = errors.New("tower: no reward pending")
	// ErrRunInProgress is returned by Restart or Retry before the run has ended.
	ErrRunInProgress = errors.New("tower: run in progress")
	// ErrUnknownReward is returned for a reward outside Rewards().
	ErrUnknownReward = errors.New("tower: unknown reward")
)

// DefaultFloors is the number of floors in a run.
const DefaultFloors = 8

// Stage is where a run currently is.
type Stage int

const (
	StageBattle Stage = iota
	StageReward
	StageComplete
	StageDefeat
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageBattle:
		return "battle"
	case StageReward:
		return "reward"
	case StageComplete:
		return "complete"
	case StageDefeat:
		return "defeat"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Config holds the content and collaborators a run draws on.
type Config struct {
	Rules      *ruleset.Ruleset
	Roster     *npc.Roster
	Policies   *ai.Registry
	Conditions *condition.Registry
	Source     combat.Source
	Animation  time.Duration
	// Floors is the top floor; 0 means DefaultFloors.
	Floors int
	Logger *zap.Logger
}

// Run is one player's climb. The player persists across floors; each floor
// gets a fresh enemy.
type Run struct {
	cfg    Config
	name   string
	class  character.Class
	player *character.Character
	floor  int
	stage  Stage
	battle *battle.Battle
	// cleared counts floors won since the run started, across restarts.
	cleared int
	events  []combat.Event
	logger  *zap.Logger
}

// New creates a run for a fresh player and starts floor 1.
//
// Precondition: Rules, Roster, Policies and Source are non-nil.
func New(cfg Config, name string, class character.Class) (*Run, error) {
	var errs []error
	if cfg.Rules == nil {
		errs = append(errs, errors.New("ruleset is required"))
	}
	if cfg.Roster == nil {
		errs = append(errs, errors.New("roster is required"))
	}
	if cfg.Policies == nil {
		errs = append(errs, errors.New("decision policies are required"))
	}
	if cfg.Source == nil {
		errs = append(errs, errors.New("random source is required"))
	}
	if cfg.Floors < 0 {
		errs = append(errs, fmt.Errorf("floors must be >= 0, got %d", cfg.Floors))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("new run: %w", err)
	}
	if cfg.Floors == 0 {
		cfg.Floors = DefaultFloors
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	player, err := cfg.Rules.NewPlayer(name, class)
	if err != nil {
		return nil, fmt.Errorf("new run: %w", err)
	}
	r := &Run{
		cfg:    cfg,
		name:   name,
		class:  class,
		player: player,
		logger: cfg.Logger.With(zap.String("player", name), zap.Stringer("class", class)),
	}
	if err := r.enter(1); err != nil {
		return nil, err
	}
	return r, nil
}

// Floor returns the current floor, starting at 1.
func (r *Run) Floor() int { return r.floor }

// Floors returns the top floor.
func (r *Run) Floors() int { return r.cfg.Floors }

// Stage returns the current stage.
func (r *Run) Stage() Stage { return r.stage }

// Player returns the run's player character.
func (r *Run) Player() *character.Character { return r.player }

// Battle returns the current floor's battle. It stays available after the
// battle ends until the next floor starts.
func (r *Run) Battle() *battle.Battle { return r.battle }

// Cleared returns how many floors were won over the run's lifetime.
func (r *Run) Cleared() int { return r.cleared }

// Submit forwards a player action to the current battle.
func (r *Run) Submit(a ruleset.Action) error {
	if err := r.battle.Submit(battle.Request{Action: a, Actor: battle.SidePlayer}); err != nil {
		return err
	}
	r.settle()
	r.collect()
	return nil
}

// Update advances the current battle and moves the run on once it ends.
func (r *Run) Update(dt time.Duration) {
	if r.stage != StageBattle {
		return
	}
	r.battle.Update(dt)
	r.settle()
	r.collect()
}

// Drain returns every battle event since the previous call, across floors.
func (r *Run) Drain() []combat.Event {
	r.collect()
	out := r.events
	r.events = nil
	return out
}

func (r *Run) collect() {
	if r.battle != nil {
		r.events = append(r.events, r.battle.Drain()...)
	}
}

// settle maps a finished battle onto the run's stage.
func (r *Run) settle() {
	if r.stage != StageBattle || !r.battle.Over() {
		return
	}
	switch r.battle.Outcome() {
	case battle.OutcomeFloorCleared:
		r.cleared++
		r.stage = StageReward
	case battle.OutcomeRunComplete:
		r.cleared++
		r.stage = StageComplete
		r.logger.Info("run complete", zap.Int("cleared", r.cleared))
	case battle.OutcomeDefeat:
		r.stage = StageDefeat
		r.logger.Info("run lost", zap.Int("floor", r.floor))
	}
}

// Choose applies reward rw to the player and starts the next floor.
//
// Precondition: Stage() == StageReward.
// Postcondition: ErrNoRewardPending and ErrUnknownReward leave the run unchanged.
func (r *Run) Choose(rw Reward) error {
	if r.stage != StageReward {
		return ErrNoRewardPending
	}
	if !rw.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownReward, int(rw))
	}
	if err := rw.Apply(r.player); err != nil {
		return err
	}
	r.logger.Debug("reward chosen", zap.Stringer("reward", rw), zap.Int("floor", r.floor))
	return r.enter(r.floor + 1)
}

// Restart begins a new climb after a completed run. The player keeps every
// reward earned and is fully restored.
//
// Precondition: Stage() == StageComplete.
func (r *Run) Restart() error {
	if r.stage != StageComplete {
		return ErrRunInProgress
	}
	r.player.Restore()
	return r.enter(1)
}

// Retry begins a new climb after a defeat with a fresh player of the same class.
//
// Precondition: Stage() == StageDefeat.
func (r *Run) Retry() error {
	if r.stage != StageDefeat {
		return ErrRunInProgress
	}
	player, err := r.cfg.Rules.NewPlayer(r.name, r.class)
	if err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	r.player = player
	return r.enter(1)
}

// enter spawns floor's enemy and starts its battle.
func (r *Run) enter(floor int) error {
	enemy, err := r.cfg.Roster.Spawn(floor)
	if err != nil {
		return fmt.Errorf("spawning floor %d: %w", floor, err)
	}
	r.collect()
	r.player.Defending = false
	b, err := battle.New(battle.Config{
		Floor:      floor,
		Final:      floor >= r.cfg.Floors,
		Player:     r.player,
		Enemy:      enemy,
		Rules:      r.cfg.Rules,
		Policies:   r.cfg.Policies,
		Conditions: r.cfg.Conditions,
		Source:     r.cfg.Source,
		Animation:  r.cfg.Animation,
		Logger:     r.logger,
	})
	if err != nil {
		return fmt.Errorf("floor %d: %w", floor, err)
	}
	r.floor = floor
	r.battle = b
	r.stage = StageBattle
	r.settle()
	return nil
}

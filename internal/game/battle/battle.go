// Package battle runs one encounter between the player and an enemy as a
// tick-driven turn machine.
package battle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/game/ai"
	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/combat"
	"github.com/cory-johannsen/tower/internal/game/condition"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
)

var (
	// ErrNotPlayerTurn is returned when an action is submitted outside PlayerTurn.
	ErrNotPlayerTurn = errors.New("battle: not the player's turn")
	// ErrStunned is returned when the player tries to act while stunned.
	ErrStunned = errors.New("battle: player is stunned")
	// ErrNotPlayer is returned for requests whose actor is not the player.
	ErrNotPlayer = errors.New("battle: only the player submits actions")
)

// DefaultAnimation is the delay between choosing an animated action and its resolution.
const DefaultAnimation = 600 * time.Millisecond

// Side identifies one of the two combatants.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

// Request asks the battle to perform an action for Actor.
type Request struct {
	Action ruleset.Action
	Actor  Side
}

// Config holds everything a Battle needs. Player and Enemy are owned by the
// battle until it ends.
type Config struct {
	Floor int
	// Final marks the top floor; winning it completes the run.
	Final bool

	Player *character.Character
	Enemy  *character.Character

	Rules      *ruleset.Ruleset
	Policies   *ai.Registry
	Conditions *condition.Registry // optional; statuses are listed without names when nil
	Source     combat.Source

	Animation time.Duration
	Logger    *zap.Logger
}

// Battle is a single encounter. It is not safe for concurrent use; callers
// serialise access (see the session package).
type Battle struct {
	id      string
	floor   int
	final   bool
	machine *fsm.FSM

	player *character.Character
	enemy  *character.Character

	rules      *ruleset.Ruleset
	policies   *ai.Registry
	conditions *condition.Registry
	src        combat.Source

	animation time.Duration
	timer     time.Duration
	pending   *combat.Strike
	message   string
	events    []combat.Event
	turns     int

	logger *zap.Logger
}

// New starts a battle in PlayerTurn.
//
// Precondition: Floor >= 1; Player, Enemy, Rules, Policies and Source are non-nil; Animation >= 0.
// Postcondition: the enemy's turn-start effects have ticked once, as on every PlayerTurn entry.
func New(cfg Config) (*Battle, error) {
	var errs []error
	if cfg.Floor < 1 {
		errs = append(errs, fmt.Errorf("floor must be >= 1, got %d", cfg.Floor))
	}
	if cfg.Player == nil || cfg.Enemy == nil {
		errs = append(errs, errors.New("player and enemy are required"))
	} else if !cfg.Player.IsPlayer() {
		errs = append(errs, fmt.Errorf("%q has no class", cfg.Player.Name))
	}
	if cfg.Rules == nil {
		errs = append(errs, errors.New("ruleset is required"))
	}
	if cfg.Policies == nil {
		errs = append(errs, errors.New("decision policies are required"))
	}
	if cfg.Source == nil {
		errs = append(errs, errors.New("random source is required"))
	}
	if cfg.Animation < 0 {
		errs = append(errs, fmt.Errorf("animation must be >= 0, got %s", cfg.Animation))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("new battle: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Battle{
		id:         uuid.NewString(),
		floor:      cfg.Floor,
		final:      cfg.Final,
		player:     cfg.Player,
		enemy:      cfg.Enemy,
		rules:      cfg.Rules,
		policies:   cfg.Policies,
		conditions: cfg.Conditions,
		src:        cfg.Source,
		animation:  cfg.Animation,
	}
	b.logger = logger.With(zap.String("battle_id", b.id), zap.Int("floor", b.floor))
	b.machine = newMachine(fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			b.logger.Debug("phase changed",
				zap.String("event", e.Event),
				zap.String("from", e.Src),
				zap.String("to", e.Dst),
			)
		},
	})

	b.logger.Info("battle started",
		zap.String("player", b.player.Name),
		zap.String("enemy", b.enemy.Name),
		zap.Int("enemy_hp", b.enemy.MaxHP),
	)
	b.message = fmt.Sprintf("A wild %s appears!", b.enemy.Name)
	b.enterPlayerTurn()
	return b, nil
}

// ID returns the battle's unique identifier.
func (b *Battle) ID() string { return b.id }

// Floor returns the floor this battle is fought on.
func (b *Battle) Floor() int { return b.floor }

// Phase returns the current phase.
func (b *Battle) Phase() Phase { return Phase(b.machine.Current()) }

// Outcome returns how the battle ended, or OutcomeNone while it is running.
func (b *Battle) Outcome() Outcome { return b.Phase().Outcome() }

// Over reports whether the battle reached a terminal phase.
func (b *Battle) Over() bool { return b.Phase().Terminal() }

// Player returns the player character. Callers must not mutate it while the battle runs.
func (b *Battle) Player() *character.Character { return b.player }

// Enemy returns the enemy character. Callers must not mutate it while the battle runs.
func (b *Battle) Enemy() *character.Character { return b.enemy }

// Drain returns every event queued since the previous call and clears the queue.
func (b *Battle) Drain() []combat.Event {
	out := b.events
	b.events = nil
	return out
}

// Submit performs the player's action.
//
// Precondition: req.Actor == SidePlayer.
// Postcondition: on error the phase and both characters are unchanged; the
// error wraps ErrNotPlayer, ErrNotPlayerTurn, ErrStunned or a combat rejection.
func (b *Battle) Submit(req Request) error {
	err := b.submit(req)
	if err != nil {
		b.logger.Debug("action rejected", zap.Stringer("action", req.Action), zap.Error(err))
	}
	return err
}

func (b *Battle) submit(req Request) error {
	if req.Actor != SidePlayer {
		return ErrNotPlayer
	}
	if b.Phase() != PlayerTurn {
		return ErrNotPlayerTurn
	}
	if b.player.IsStunned() {
		return ErrStunned
	}
	plan, err := combat.Use(b.rules, b.player, b.enemy, req.Action, b.src)
	if err != nil {
		return err
	}
	b.logger.Debug("player action", zap.Stringer("action", req.Action), zap.Bool("animated", plan.Pending != nil))
	b.message = plan.Message
	b.emit(plan.Events...)

	if plan.Pending != nil {
		b.pending = plan.Pending
		b.timer = b.animation
		b.fire(evChoose)
		return nil
	}
	if b.checkEnd() {
		return nil
	}
	b.endTurn(b.player)
	b.fire(evPass)
	b.enemyTurn()
	return nil
}

// Update advances the battle by dt of elapsed time.
//
// A stunned player forfeits PlayerTurn here. Animation timers count down to
// exactly zero before the pending action resolves. Terminal battles ignore Update.
func (b *Battle) Update(dt time.Duration) {
	switch b.Phase() {
	case PlayerTurn:
		if !b.player.IsStunned() {
			return
		}
		b.message = fmt.Sprintf("%s is stunned and loses the turn!", b.player.Name)
		b.emit(combat.Event{
			Kind: combat.EventTurnSkipped, Actor: b.player.Name, Target: b.player.Name, Status: condition.Stun,
			Text: b.message,
		})
		b.fire(evPass)
		b.enemyTurn()

	case PlayerAnimating:
		if !b.countdown(dt) {
			return
		}
		b.resolvePending(b.player, b.enemy)
		if b.checkEnd() {
			return
		}
		b.endTurn(b.player)
		b.fire(evResolve)
		b.enemyTurn()

	case EnemyAnimating:
		if !b.countdown(dt) {
			return
		}
		b.resolvePending(b.enemy, b.player)
		if b.checkEnd() {
			return
		}
		b.endTurn(b.enemy)
		b.fire(evYield)
		b.enterPlayerTurn()
	}
}

// countdown decrements the animation timer, clamped at zero, and reports whether it expired.
func (b *Battle) countdown(dt time.Duration) bool {
	b.timer = max(0, b.timer-max(0, dt))
	return b.timer == 0
}

func (b *Battle) resolvePending(attacker, defender *character.Character) {
	if b.pending == nil {
		return
	}
	s := *b.pending
	b.pending = nil
	res, events := combat.ResolveStrike(attacker, defender, s, b.src)
	b.emit(events...)
	switch {
	case res.Dodged:
		b.message = fmt.Sprintf("%s dodged!", defender.Name)
	case res.Blocked:
		b.message = fmt.Sprintf("%s blocked the attack!", defender.Name)
	default:
		b.message = fmt.Sprintf("%s dealt %d damage to %s.", attacker.Name, res.Final, defender.Name)
	}
}

// enemyTurn runs EnemyTurn: the player's turn-start tick, the stun check and
// the enemy's decision.
func (b *Battle) enemyTurn() {
	if b.checkEnd() {
		return
	}
	tick, events := combat.TickTurnStart(b.player)
	b.emit(events...)
	if tick.Outcome == combat.DeadByDot {
		b.finish(evFall)
		return
	}
	if b.enemy.IsStunned() {
		b.message = fmt.Sprintf("%s is stunned!", b.enemy.Name)
		b.emit(combat.Event{
			Kind: combat.EventTurnSkipped, Actor: b.enemy.Name, Target: b.enemy.Name, Status: condition.Stun,
			Text: b.message,
		})
		b.fire(evYield)
		b.enterPlayerTurn()
		return
	}

	d := b.policies.Decide(b.enemy, b.player, b.src)
	b.logger.Debug("enemy action", zap.String("rule", d.Rule), zap.Bool("animated", d.Strike != nil))
	b.message = d.Message
	b.emit(d.Events...)
	b.pending = d.Strike
	b.timer = b.animation
	b.fire(evAct)
}

// enterPlayerTurn clears last turn's shield and ticks the enemy's effects.
func (b *Battle) enterPlayerTurn() {
	b.player.Defending = false
	tick, events := combat.TickTurnStart(b.enemy)
	b.emit(events...)
	if tick.Outcome == combat.DeadByDot {
		b.checkEnd()
	}
}

// checkEnd moves to a terminal phase if either side is dead. The player's
// death is checked first, so a double knockout is a defeat.
func (b *Battle) checkEnd() bool {
	switch {
	case b.player.IsDead():
		b.finish(evFall)
	case b.enemy.IsDead() && b.final:
		b.finish(evComplete)
	case b.enemy.IsDead():
		b.finish(evClear)
	default:
		return false
	}
	return true
}

func (b *Battle) finish(event string) {
	b.pending = nil
	b.timer = 0
	b.fire(event)
	outcome := b.Outcome()
	switch outcome {
	case OutcomeDefeat:
		b.message = fmt.Sprintf("%s has fallen.", b.player.Name)
	case OutcomeRunComplete:
		b.message = fmt.Sprintf("%s defeated %s and conquered the tower!", b.player.Name, b.enemy.Name)
	default:
		b.message = fmt.Sprintf("%s defeated %s!", b.player.Name, b.enemy.Name)
	}
	b.emit(combat.Event{Kind: combat.EventBattleEnded, Actor: b.player.Name, Target: b.enemy.Name, Text: outcome.String()})
	b.logger.Info("battle ended",
		zap.Stringer("outcome", outcome),
		zap.Int("turns", b.turns),
		zap.Int("player_hp", b.player.HP),
		zap.Int("enemy_hp", b.enemy.HP),
	)
}

func (b *Battle) endTurn(actor *character.Character) {
	b.turns++
	b.emit(combat.Event{Kind: combat.EventTurnEnded, Actor: actor.Name, Target: actor.Name, Amount: b.turns})
}

func (b *Battle) emit(events ...combat.Event) {
	b.events = append(b.events, events...)
}

// fire performs a phase transition. Every call site is guarded by the current
// phase, so a failure means the transition table and the turn logic disagree.
func (b *Battle) fire(event string) {
	if err := b.machine.Event(context.Background(), event); err != nil {
		panic(fmt.Sprintf("battle %s: %s from %s: %v", b.id, event, b.machine.Current(), err))
	}
}

package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/game/battle"
	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/combat"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
	"github.com/cory-johannsen/tower/internal/game/session"
	"github.com/cory-johannsen/tower/internal/game/tower"
)

// Options bounds a simulated run.
type Options struct {
	// Tick is the frame length passed to every Update.
	Tick time.Duration
	// MaxTicks stops a run that has not finished.
	MaxTicks int
	Logger   *zap.Logger
}

// Report summarises one simulated run.
type Report struct {
	SessionID string
	Class     character.Class
	// Stage is StageComplete or StageDefeat, or the stage the run stopped in when TimedOut.
	Stage    tower.Stage
	Floor    int
	Cleared  int
	Ticks    int
	Actions  int
	Rejected int
	Events   map[combat.EventKind]int
	TimedOut bool
}

// Elapsed is the simulated time the run took.
func (r Report) Elapsed(tick time.Duration) time.Duration {
	return time.Duration(r.Ticks) * tick
}

// EventTotal is the number of events delivered during the run.
func (r Report) EventTotal() int {
	n := 0
	for _, c := range r.Events {
		n += c
	}
	return n
}

// Run plays s with pilot until the run is complete or lost, or opts.MaxTicks
// frames have passed. Rewards are picked as soon as they are offered.
//
// Precondition: opts.Tick > 0 and opts.MaxTicks > 0.
// Postcondition: returns ctx.Err() if ctx is cancelled first, with the partial report.
func Run(ctx context.Context, s *session.Session, pilot *Autopilot, opts Options) (Report, error) {
	if opts.Tick <= 0 || opts.MaxTicks <= 0 {
		return Report{}, fmt.Errorf("sim: tick and max ticks must be positive, got %s and %d", opts.Tick, opts.MaxTicks)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session_id", s.ID))

	rep := Report{SessionID: s.ID, Class: s.Class, Events: make(map[combat.EventKind]int)}
	count := func() {
		for _, ev := range s.Drain() {
			rep.Events[ev.Kind]++
		}
	}

	for rep.Ticks < opts.MaxTicks {
		if err := ctx.Err(); err != nil {
			return rep.fill(s), err
		}
		st := s.State()
		switch st.Stage {
		case tower.StageComplete, tower.StageDefeat:
			count()
			return rep.fill(s), nil
		case tower.StageReward:
			rw := pilot.Reward()
			if err := s.Choose(rw); err != nil {
				return rep.fill(s), fmt.Errorf("choosing %s: %w", rw, err)
			}
			logger.Debug("reward chosen", zap.Int("floor", st.Floor), zap.Stringer("reward", rw))
		case tower.StageBattle:
			if st.Battle.Phase == battle.PlayerTurn {
				act := pilot.Choose(st.Battle)
				err := s.Submit(act)
				switch {
				case err == nil:
					rep.Actions++
				case errors.Is(err, battle.ErrStunned):
					// Update forfeits the turn.
				default:
					rep.Rejected++
					logger.Debug("autopilot action rejected", zap.Stringer("action", act), zap.Error(err))
					if act != ruleset.Attack && s.Submit(ruleset.Attack) == nil {
						rep.Actions++
					}
				}
			}
		}
		s.Update(opts.Tick)
		count()
		rep.Ticks++
	}

	rep.TimedOut = true
	logger.Warn("run did not finish", zap.Int("ticks", rep.Ticks))
	return rep.fill(s), nil
}

func (r Report) fill(s *session.Session) Report {
	st := s.State()
	r.Stage = st.Stage
	r.Floor = st.Floor
	r.Cleared = st.Cleared
	return r
}

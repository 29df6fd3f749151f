package sim

import (
	"github.com/cory-johannsen/tower/internal/game/battle"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
	"github.com/cory-johannsen/tower/internal/game/tower"
)

// HealBelowPct is the HP percentage under which the autopilot heals.
const HealBelowPct = 40

// Autopilot plays the player side from what a renderer would see.
//
// An Autopilot is not safe for concurrent use; give each session its own.
type Autopilot struct {
	rules   *ruleset.Ruleset
	rewards int
}

// NewAutopilot returns an Autopilot that reads skill costs from rules.
func NewAutopilot(rules *ruleset.Ruleset) *Autopilot {
	return &Autopilot{rules: rules}
}

// Choose picks the player's next action:
// the ultimate when charged, then Heal when hurt, then the hardest-hitting
// affordable skill, and Attack otherwise.
func (a *Autopilot) Choose(s battle.Snapshot) ruleset.Action {
	p := s.Player
	if p.MaxRage > 0 && p.Rage >= p.MaxRage {
		return ruleset.Ultimate
	}
	if p.HP*100 < HealBelowPct*p.MaxHP && a.affordable(p, ruleset.Heal) {
		return ruleset.Heal
	}

	best, bestMax := ruleset.Attack, 0
	for _, act := range []ruleset.Action{ruleset.Skill1, ruleset.Skill2} {
		sk, ok := a.rules.Skill(p.Class, act)
		if !ok || !sk.Damaging() || !a.affordable(p, act) {
			continue
		}
		if m := sk.Damage.Max * max(sk.Damage.Multiplier, 1); m > bestMax {
			best, bestMax = act, m
		}
	}
	return best
}

// Reward picks the next reward, cycling through every choice in order.
func (a *Autopilot) Reward() tower.Reward {
	all := tower.Rewards()
	rw := all[a.rewards%len(all)]
	a.rewards++
	return rw
}

func (a *Autopilot) affordable(p battle.View, act ruleset.Action) bool {
	sk, ok := a.rules.Skill(p.Class, act)
	if !ok {
		return false
	}
	if p.MP < sk.CostMP {
		return false
	}
	return sk.CostHP == 0 || p.HP > sk.CostHP
}

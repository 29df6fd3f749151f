package ai

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/combat"
	"github.com/cory-johannsen/tower/internal/game/condition"
	"github.com/cory-johannsen/tower/internal/game/dice"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
)

// Rule IDs of the fallback behaviour.
const (
	BasicAttack = "attack"
	BasicHeal   = "heal"
)

// Decision is the enemy's chosen action. Costs are already paid.
//
// A non-nil Strike waits on an animation before it resolves; otherwise the
// action already happened and Events describe it.
type Decision struct {
	Rule    string
	Message string
	Strike  *combat.Strike
	Events  []combat.Event
}

// Decide picks and pays for self's action against foe.
//
// Rules are evaluated top-down: precondition, then probability gate, then
// the damage roll, then the grant gate. The first rule that passes wins.
// Otherwise the fallback attacks with AttackChance or heals self immediately.
//
// Precondition: self, foe and src must be non-nil.
func (r *Registry) Decide(self, foe *character.Character, src combat.Source) Decision {
	if p, ok := r.policies[self.Archetype]; ok {
		for _, rule := range p.Rules {
			if !r.precondition(rule, self, foe) {
				continue
			}
			if !dice.Chance(src, rule.Chance) {
				continue
			}
			self.SpendMP(rule.CostMP)
			st := &combat.Strike{Label: rule.ID, Base: dice.Roll(rule.Damage, src).Total()}
			if rule.GrantChance == 0 || dice.Chance(src, rule.GrantChance) {
				st.Grants = append([]ruleset.Grant(nil), rule.Grants...)
			}
			msg := rule.Message
			if msg == "" {
				msg = fmt.Sprintf("%s uses %s!", self.Name, rule.ID)
			}
			return Decision{Rule: rule.ID, Message: msg, Strike: st}
		}
	}

	fb := r.fallback
	if dice.Chance(src, fb.AttackChance) {
		base := dice.Roll(fb.Damage, src).Total()
		if foe.Status.Has(condition.Vulnerability) {
			base = base * fb.VulnerablePct / 100
		}
		return Decision{
			Rule:    BasicAttack,
			Message: fmt.Sprintf("%s attacks...", self.Name),
			Strike:  &combat.Strike{Label: BasicAttack, Base: base},
		}
	}
	healed := self.Heal(dice.Roll(fb.Heal, src).Total())
	return Decision{
		Rule:    BasicHeal,
		Message: fmt.Sprintf("%s healed %d HP.", self.Name, healed),
		Events: []combat.Event{{
			Kind: combat.EventHeal, Actor: self.Name, Target: self.Name, Amount: healed,
			Text: fmt.Sprintf("%s healed %d HP", self.Name, healed),
		}},
	}
}

// precondition evaluates rule's Lua predicate, or falls back to an MP check when
// no script is configured. Script failures count as false.
func (r *Registry) precondition(rule *Rule, self, foe *character.Character) bool {
	if self.MP < rule.CostMP {
		return false
	}
	if r.caller == nil || rule.Precondition == "" {
		return true
	}
	ok, err := r.caller.CallPredicate(rule.Precondition,
		view(self), view(foe),
		map[string]float64{"cost": float64(rule.CostMP), "chance": rule.Chance},
	)
	if err != nil {
		r.logger.Warn("ai: precondition failed",
			zap.String("archetype", self.Archetype),
			zap.String("rule", rule.ID),
			zap.String("hook", rule.Precondition),
			zap.Error(err),
		)
		return false
	}
	return ok
}

func view(c *character.Character) map[string]float64 {
	return map[string]float64{
		"hp":         float64(c.HP),
		"max_hp":     float64(c.MaxHP),
		"mp":         float64(c.MP),
		"max_mp":     float64(c.MaxMP),
		"vulnerable": boolNum(c.Status.Has(condition.Vulnerability)),
		"stunned":    boolNum(c.IsStunned()),
	}
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

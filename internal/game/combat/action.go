package combat

import (
	"fmt"

	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/dice"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
)

// Plan is the result of a player choosing an action.
//
// Costs are paid and immediate effects are applied by the time a Plan is returned.
// A non-nil Pending strike still has to be resolved with ResolveStrike once its
// animation completes.
type Plan struct {
	Action  ruleset.Action
	Skill   *ruleset.Skill
	Pending *Strike
	Events  []Event
	// Message is a short line describing what the actor did.
	Message string
}

// Check reports whether actor can pay for action a right now, without changing anything.
func Check(rs *ruleset.Ruleset, actor *character.Character, a ruleset.Action) (*ruleset.Skill, error) {
	sk, ok := rs.Skill(actor.Class, a)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	if a == ruleset.Ultimate {
		// The rage gate is authoritative; the MP cost is taken only when affordable.
		if !actor.RageFull() {
			return nil, ErrUltimateNotReady
		}
		return sk, nil
	}
	if actor.MP < sk.CostMP {
		return nil, fmt.Errorf("%w for %s (%d < %d)", ErrInsufficientMP, sk.Name, actor.MP, sk.CostMP)
	}
	if sk.CostHP > 0 && actor.HP <= sk.CostHP {
		return nil, fmt.Errorf("%w for %s (%d <= %d)", ErrInsufficientHP, sk.Name, actor.HP, sk.CostHP)
	}
	return sk, nil
}

// Use pays for action a and applies everything that does not wait on an animation.
//
// Damaging non-ultimate actions roll their base damage now and return it as Plan.Pending.
// The ultimate resolves completely: its damage bypasses dodge, crit and mitigation.
//
// Precondition: actor, foe and src must be non-nil.
// Postcondition: on error, neither character has changed.
func Use(rs *ruleset.Ruleset, actor, foe *character.Character, a ruleset.Action, src Source) (Plan, error) {
	sk, err := Check(rs, actor, a)
	if err != nil {
		return Plan{}, err
	}
	p := Plan{Action: a, Skill: sk}

	// Check already guaranteed MP for everything except the ultimate, where it is best-effort.
	actor.SpendMP(sk.CostMP)
	if a == ruleset.Ultimate {
		actor.Rage = 0
	} else if sk.CostHP > 0 {
		actor.SpendHP(sk.CostHP)
	}

	if sk.Damaging() {
		base := dice.Roll(sk.Damage, src).Total()
		if a != ruleset.Ultimate {
			p.Pending = &Strike{Label: sk.Name, Base: base, Grants: sk.Grants}
			p.Message = fmt.Sprintf("%s uses %s!", actor.Name, sk.Name)
			p.Events = append(p.Events, selfEffects(actor, sk, src)...)
			return p, nil
		}
		foe.ApplyDamage(base)
		p.Events = append(p.Events, Event{
			Kind: EventDamage, Actor: actor.Name, Target: foe.Name, Amount: base,
			Text: fmt.Sprintf("%s dealt %d damage", actor.Name, base),
		})
		for _, g := range sk.Grants {
			if g.Target == ruleset.Foe && foe.Status.Extend(g.Kind, g.Turns) {
				p.Events = append(p.Events, statusEvent(actor, foe, g))
			}
		}
		if foe.IsDead() && sk.KillHealPct > 0 {
			healed := actor.Heal(actor.MaxHP * sk.KillHealPct / 100)
			p.Events = append(p.Events, Event{
				Kind: EventHeal, Actor: actor.Name, Target: actor.Name, Amount: healed,
				Text: fmt.Sprintf("%s recovered %d HP", actor.Name, healed),
			})
		}
	}

	for _, g := range sk.Grants {
		if g.Target == ruleset.Foe && !sk.Damaging() && foe.Status.Extend(g.Kind, g.Turns) {
			p.Events = append(p.Events, statusEvent(actor, foe, g))
		}
	}
	p.Events = append(p.Events, selfEffects(actor, sk, src)...)
	if p.Message == "" {
		p.Message = fmt.Sprintf("%s uses %s!", actor.Name, sk.Name)
	}
	return p, nil
}

// selfEffects applies the parts of sk that land on the actor.
func selfEffects(actor *character.Character, sk *ruleset.Skill, src Source) []Event {
	var events []Event
	if !sk.Heal.IsZero() {
		healed := actor.Heal(dice.Roll(sk.Heal, src).Total())
		events = append(events, Event{
			Kind: EventHeal, Actor: actor.Name, Target: actor.Name, Amount: healed,
			Text: fmt.Sprintf("%s healed %d HP", actor.Name, healed),
		})
	}
	if sk.Defend {
		actor.Defending = true
	}
	if sk.RestoreMP > 0 {
		if n := actor.RestoreMP(sk.RestoreMP); n > 0 {
			events = append(events, Event{Kind: EventMana, Actor: actor.Name, Target: actor.Name, Amount: n})
		}
	}
	if sk.Rage > 0 {
		if n := actor.GainRage(sk.Rage); n > 0 {
			events = append(events, Event{Kind: EventRage, Actor: actor.Name, Target: actor.Name, Amount: n})
		}
	}
	for _, g := range sk.Grants {
		if g.Target == ruleset.Self && actor.Status.Extend(g.Kind, g.Turns) {
			events = append(events, statusEvent(actor, actor, g))
		}
	}
	if sk.Reflect > 0 {
		actor.ReflectPct = sk.Reflect
	}
	return events
}

package combat

import (
	"fmt"

	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/condition"
	"github.com/cory-johannsen/tower/internal/game/dice"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
)

// Strike is an offensive action whose base damage is already rolled and
// whose costs are already paid. It waits for an animation before resolving.
type Strike struct {
	Label string
	Base  int
	// Grants land on the defender. A player's grants land even on a dodge
	// because they are committed when the skill is used; an enemy's need the
	// strike not to be dodged.
	Grants []ruleset.Grant
}

// StrikeResult holds the outcome of a single resolved strike.
type StrikeResult struct {
	Base       int
	Final      int
	Dodged     bool
	Crit       bool
	Blocked    bool
	Reflected  int
	RageGained int
	ManaGained int
	Applied    []condition.Kind
}

// ResolveStrike resolves s from attacker against defender.
//
// Order: dodge, crit (player attackers only), mitigation (defending or
// invulnerable with reflect, then iron skin while damage remains), damage with
// rage and MP returns, then status grants with extend-if-greater.
//
// Precondition: attacker, defender and src must be non-nil.
// Postcondition: Dodged implies Final == 0; Crit implies Final was computed from
// Base*CritPercent/100 before mitigation.
func ResolveStrike(attacker, defender *character.Character, s Strike, src Source) (StrikeResult, []Event) {
	res := StrikeResult{Base: max(0, s.Base)}
	var events []Event

	if dice.Chance(src, defender.DodgeChance) {
		res.Dodged = true
		events = append(events, Event{
			Kind: EventDodge, Actor: attacker.Name, Target: defender.Name,
			Text: fmt.Sprintf("%s dodged %s", defender.Name, s.Label),
		})
		if attacker.IsPlayer() {
			events = append(events, applyGrants(attacker, defender, s.Grants, &res)...)
		}
		return res, events
	}

	dmg := res.Base
	if attacker.IsPlayer() && dice.Chance(src, attacker.CritChance) {
		res.Crit = true
		dmg = dmg * CritPercent / 100
		events = append(events, Event{
			Kind: EventCrit, Actor: attacker.Name, Target: defender.Name, Amount: dmg,
			Text: fmt.Sprintf("CRIT! %d", dmg),
		})
	}

	switch {
	case defender.Defending:
		dmg = dmg * DefendPercent / 100
	case defender.Status.Has(condition.Invulnerable):
		if defender.ReflectPct > 0 {
			res.Reflected = int(float64(dmg) * defender.ReflectPct)
			attacker.ApplyDamage(res.Reflected)
			events = append(events, Event{
				Kind: EventReflect, Actor: defender.Name, Target: attacker.Name, Amount: res.Reflected,
				Text: fmt.Sprintf("%s reflected %d damage", defender.Name, res.Reflected),
			})
		}
		dmg = 0
		res.Blocked = true
	}
	if dmg > 0 && defender.Status.Has(condition.IronSkin) {
		defender.Status.Consume(condition.IronSkin)
		dmg = 0
		res.Blocked = true
	}
	if res.Blocked {
		events = append(events, Event{
			Kind: EventBlocked, Actor: attacker.Name, Target: defender.Name,
			Text: "BLOCKED",
		})
	}

	if dmg > 0 {
		defender.ApplyDamage(dmg)
		res.Final = dmg
		events = append(events, Event{
			Kind: EventDamage, Actor: attacker.Name, Target: defender.Name, Amount: dmg,
			Text: fmt.Sprintf("%s dealt %d damage", attacker.Name, dmg),
		})
		if attacker.IsPlayer() {
			res.RageGained = attacker.GainRage(max(1, dmg*RagePercent/100))
			if res.RageGained > 0 {
				events = append(events, Event{Kind: EventRage, Actor: attacker.Name, Target: attacker.Name, Amount: res.RageGained})
			}
		}
		if defender.IsPlayer() {
			res.ManaGained = defender.RestoreMP(HitManaReturn)
			if res.ManaGained > 0 {
				events = append(events, Event{Kind: EventMana, Actor: defender.Name, Target: defender.Name, Amount: res.ManaGained})
			}
		}
	}

	events = append(events, applyGrants(attacker, defender, s.Grants, &res)...)
	return res, events
}

func applyGrants(attacker, defender *character.Character, grants []ruleset.Grant, res *StrikeResult) []Event {
	var events []Event
	for _, g := range grants {
		if g.Target != ruleset.Foe {
			continue
		}
		if defender.Status.Extend(g.Kind, g.Turns) {
			res.Applied = append(res.Applied, g.Kind)
			events = append(events, statusEvent(attacker, defender, g))
		}
	}
	return events
}

func statusEvent(actor, target *character.Character, g ruleset.Grant) Event {
	return Event{
		Kind: EventStatusApplied, Actor: actor.Name, Target: target.Name,
		Status: g.Kind, Amount: g.Turns,
		Text: fmt.Sprintf("%s: %s for %d turns", target.Name, g.Kind, g.Turns),
	}
}

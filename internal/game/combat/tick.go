package combat

import (
	"fmt"

	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/condition"
)

// TickOutcome says whether the ticked character survived its turn-start effects.
type TickOutcome int

const (
	Continue TickOutcome = iota
	DeadByDot
)

// String returns "continue" or "dead_by_dot".
func (o TickOutcome) String() string {
	if o == DeadByDot {
		return "dead_by_dot"
	}
	return "continue"
}

// TickResult reports what one turn-start tick did.
type TickResult struct {
	Outcome TickOutcome
	Poison  int
	Burn    int
}

// PoisonDamage returns the per-tick poison damage for a character with maxHP: max(1, ceil(maxHP*3%)).
func PoisonDamage(maxHP int) int {
	return max(1, (maxHP*PoisonPercent+99)/100)
}

// TickTurnStart decrements every status duration on c by one, then applies
// poison and burn damage for durations still above zero, in that order.
//
// Postcondition: Outcome == DeadByDot iff a DOT applied and left HP at 0.
// A character with no active status is left unchanged.
func TickTurnStart(c *character.Character) (TickResult, []Event) {
	var res TickResult
	var events []Event

	c.Status.DecrementAll()
	if !c.Status.Has(condition.Invulnerable) {
		c.ReflectPct = 0
	}

	if c.Status.Has(condition.Poison) {
		res.Poison = c.ApplyDamage(PoisonDamage(c.MaxHP))
		events = append(events, dotEvent(c, condition.Poison, res.Poison))
		if c.IsDead() {
			res.Outcome = DeadByDot
			return res, events
		}
	}
	if c.Status.Has(condition.Burn) {
		res.Burn = c.ApplyDamage(BurnDamage)
		events = append(events, dotEvent(c, condition.Burn, res.Burn))
		if c.IsDead() {
			res.Outcome = DeadByDot
		}
	}
	return res, events
}

func dotEvent(c *character.Character, k condition.Kind, n int) Event {
	return Event{
		Kind: EventDot, Actor: c.Name, Target: c.Name, Amount: n, Status: k,
		Text: fmt.Sprintf("%s takes %d %s damage", c.Name, n, k),
	}
}

package ruleset

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/tower/internal/game/character"
)

// Action identifies one of the six player action slots. The zero value is not a valid Action.
type Action int

const (
	Attack Action = iota + 1
	Heal
	Shield
	Skill1
	Skill2
	Ultimate
)

var actionNames = map[Action]string{
	Attack:   "attack",
	Heal:     "heal",
	Shield:   "shield",
	Skill1:   "skill1",
	Skill2:   "skill2",
	Ultimate: "ultimate",
}

// String returns the lowercase action identifier.
func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Valid reports whether a is one of the six known actions.
func (a Action) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

// ParseAction resolves a case-insensitive action identifier.
func ParseAction(s string) (Action, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for a, n := range actionNames {
		if n == want {
			return a, nil
		}
	}
	return 0, fmt.Errorf("ruleset: unknown action %q", s)
}

// Slot is one rendered action button: the UI draws Label and Cost and submits Action.
type Slot struct {
	Action Action
	Label  string
	Cost   string
	Skill  *Skill
}

// slotOrder is the button layout: three basics on top, then skill, ultimate, skill.
var slotOrder = []Action{Attack, Heal, Shield, Skill1, Ultimate, Skill2}

// Actions returns the six action slots for class in layout order.
//
// Postcondition: len(result) == 6 on success.
func (r *Ruleset) Actions(class character.Class) ([]Slot, error) {
	if _, ok := r.Class(class); !ok {
		return nil, fmt.Errorf("ruleset: no class definition for %s", class)
	}
	slots := make([]Slot, 0, len(slotOrder))
	for _, a := range slotOrder {
		sk, ok := r.Skill(class, a)
		if !ok {
			return nil, fmt.Errorf("ruleset: %s has no %s", class, a)
		}
		label := sk.Name
		if a == Ultimate {
			label = "ULTIMATE"
		}
		slots = append(slots, Slot{Action: a, Label: label, Cost: sk.CostLabel(), Skill: sk})
	}
	return slots, nil
}

// Actions returns the action slots for class from the builtin ruleset.
func Actions(class character.Class) ([]Slot, error) {
	return Default().Actions(class)
}

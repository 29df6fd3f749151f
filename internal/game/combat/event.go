package combat

import (
	"fmt"

	"github.com/cory-johannsen/tower/internal/game/condition"
)

// EventKind classifies a battle event for the rendering layer.
type EventKind int

const (
	EventDamage EventKind = iota + 1
	EventHeal
	EventMana
	EventRage
	EventStatusApplied
	EventDodge
	EventCrit
	EventBlocked
	EventReflect
	EventDot
	EventTurnSkipped
	EventTurnEnded
	EventBattleEnded
)

var eventKindNames = map[EventKind]string{
	EventDamage:        "damage",
	EventHeal:          "heal",
	EventMana:          "mana",
	EventRage:          "rage",
	EventStatusApplied: "status_applied",
	EventDodge:         "dodge",
	EventCrit:          "crit",
	EventBlocked:       "blocked",
	EventReflect:       "reflect",
	EventDot:           "dot",
	EventTurnSkipped:   "turn_skipped",
	EventTurnEnded:     "turn_ended",
	EventBattleEnded:   "battle_ended",
}

// String returns the snake_case event kind name.
func (k EventKind) String() string {
	if n, ok := eventKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one observable effect produced during a battle.
type Event struct {
	Kind EventKind
	// Actor is the name of the character whose action produced the event.
	Actor string
	// Target is the name of the character the event lands on.
	Target string
	// Amount is damage, healing, MP, rage, or turns, depending on Kind.
	Amount int
	// Status is set for EventStatusApplied and EventDot.
	Status condition.Kind
	// Text is a short human-readable line.
	Text string
}

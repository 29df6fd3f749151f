package battle

import (
	"time"

	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/condition"
)

// View is a read-only copy of one character for rendering.
type View struct {
	Name      string
	Class     character.Class
	Archetype string
	HP        int
	MaxHP     int
	MP        int
	MaxMP     int
	Rage      int
	MaxRage   int
	Defending bool
	Statuses  []condition.Active
}

// Snapshot is the battle state polled once per render tick.
type Snapshot struct {
	ID      string
	Floor   int
	Phase   Phase
	Outcome Outcome
	Message string
	// Pending is true while an action waits on its animation.
	Pending       bool
	AnimRemaining time.Duration
	Player        View
	Enemy         View
}

// Snapshot copies the current state. Later changes to the battle do not affect it.
func (b *Battle) Snapshot() Snapshot {
	return Snapshot{
		ID:            b.id,
		Floor:         b.floor,
		Phase:         b.Phase(),
		Outcome:       b.Outcome(),
		Message:       b.message,
		Pending:       b.pending != nil,
		AnimRemaining: b.timer,
		Player:        b.view(b.player),
		Enemy:         b.view(b.enemy),
	}
}

func (b *Battle) view(c *character.Character) View {
	v := View{
		Name:      c.Name,
		Class:     c.Class,
		Archetype: c.Archetype,
		HP:        c.HP,
		MaxHP:     c.MaxHP,
		MP:        c.MP,
		MaxMP:     c.MaxMP,
		Rage:      c.Rage,
		MaxRage:   c.MaxRage,
		Defending: c.Defending,
	}
	if b.conditions != nil {
		v.Statuses = b.conditions.Describe(c.Status)
		return v
	}
	for _, k := range c.Status.Active() {
		v.Statuses = append(v.Statuses, condition.Active{Kind: k, Name: k.String(), Turns: c.Status.Get(k)})
	}
	return v
}

// Package character defines the combatant record and its clamped mutators.
package character

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/tower/internal/game/condition"
)

// Class is a player class. Enemies carry ClassNone.
type Class int

const (
	ClassNone Class = iota
	Warrior
	Mage
	Tank
	Archer
)

var classNames = map[Class]string{
	ClassNone: "none",
	Warrior:   "warrior",
	Mage:      "mage",
	Tank:      "tank",
	Archer:    "archer",
}

// String returns the lowercase class identifier.
func (c Class) String() string {
	if n, ok := classNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Classes returns the four playable classes in selection order.
func Classes() []Class {
	return []Class{Warrior, Mage, Tank, Archer}
}

// ParseClass resolves a case-insensitive class identifier to a playable Class.
func ParseClass(s string) (Class, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Classes() {
		if classNames[c] == want {
			return c, nil
		}
	}
	return ClassNone, fmt.Errorf("character: unknown class %q", s)
}

// Character is one combatant: the player or the current enemy.
//
// Invariant: 0 <= HP <= MaxHP, 0 <= MP <= MaxMP, 0 <= Rage <= MaxRage.
// HP == 0 means the character is dead.
type Character struct {
	Name      string
	Class     Class
	Archetype string // enemy decision policy key; empty for players

	HP      int
	MaxHP   int
	MP      int
	MaxMP   int
	Rage    int
	MaxRage int

	CritChance  float64
	DodgeChance float64

	Status     condition.Set
	ReflectPct float64 // fraction of blocked damage returned while invulnerable
	Defending  bool
}

// IsDead reports whether HP has reached 0.
func (c *Character) IsDead() bool { return c.HP <= 0 }

// IsStunned reports whether the stun status is active.
func (c *Character) IsStunned() bool { return c.Status.Has(condition.Stun) }

// IsPlayer reports whether c has a player class.
func (c *Character) IsPlayer() bool { return c.Class != ClassNone }

// RageFull reports whether the ultimate is charged.
func (c *Character) RageFull() bool { return c.MaxRage > 0 && c.Rage >= c.MaxRage }

// ApplyDamage reduces HP by n, clamped at 0. Negative n is treated as 0.
//
// Postcondition: HP == max(0, prev - n). Returns the HP actually removed.
func (c *Character) ApplyDamage(n int) int {
	if n <= 0 {
		return 0
	}
	prev := c.HP
	c.HP = max(0, c.HP-n)
	return prev - c.HP
}

// Heal raises HP by n, clamped at MaxHP.
//
// Postcondition: HP == min(MaxHP, prev + n). Returns the HP actually restored.
func (c *Character) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	prev := c.HP
	c.HP = min(c.MaxHP, c.HP+n)
	return c.HP - prev
}

// SpendMP deducts n MP when affordable.
//
// Postcondition: returns false and leaves MP unchanged when MP < n.
func (c *Character) SpendMP(n int) bool {
	if n < 0 || c.MP < n {
		return false
	}
	c.MP -= n
	return true
}

// SpendHP deducts n HP as a skill cost. The cost may never be lethal, so HP must exceed n.
func (c *Character) SpendHP(n int) bool {
	if n < 0 || c.HP <= n {
		return false
	}
	c.HP -= n
	return true
}

// RestoreMP raises MP by n, clamped at MaxMP. Returns the MP actually restored.
func (c *Character) RestoreMP(n int) int {
	if n <= 0 {
		return 0
	}
	prev := c.MP
	c.MP = min(c.MaxMP, c.MP+n)
	return c.MP - prev
}

// GainRage raises Rage by n, clamped at MaxRage. Returns the rage actually gained.
func (c *Character) GainRage(n int) int {
	if n <= 0 {
		return 0
	}
	prev := c.Rage
	c.Rage = min(c.MaxRage, c.Rage+n)
	return c.Rage - prev
}

// Restore returns c to full strength with no lingering effects.
//
// Postcondition: HP == MaxHP, MP == MaxMP, Rage == 0, no active status, not defending.
func (c *Character) Restore() {
	c.HP = c.MaxHP
	c.MP = c.MaxMP
	c.Rage = 0
	c.Status.Clear()
	c.ReflectPct = 0
	c.Defending = false
}

// Clone returns an independent copy of c.
func (c *Character) Clone() *Character {
	cp := *c
	return &cp
}

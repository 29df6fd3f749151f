// Package dice provides the core randomness abstraction and roll-result types
// for the tower combat engine.
package dice

import "fmt"

// RollResult holds the full audit trail for a single range roll.
//
// Postcondition: Total() == Value * Multiplier (Multiplier < 1 treated as 1).
type RollResult struct {
	Expression string // original expression string, e.g. "18-30x3"
	Value      int    // the drawn value in [Min, Max]
	Multiplier int    // flat multiplier applied to Value
}

// Total returns the rolled value scaled by the multiplier.
//
// Postcondition: return value == r.Value * max(1, r.Multiplier).
func (r RollResult) Total() int {
	if r.Multiplier < 1 {
		return r.Value
	}
	return r.Value * r.Multiplier
}

// String returns a human-readable audit string in the format:
//
//	"18-30x3 → [22] x3 = 66"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	mult := r.Multiplier
	if mult < 1 {
		mult = 1
	}
	return fmt.Sprintf("%s → [%d] x%d = %d", r.Expression, r.Value, mult, r.Total())
}

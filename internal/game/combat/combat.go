// Package combat resolves single actions and turn-start status ticks between two characters.
package combat

import "errors"

// Source is the subset of dice.Source used by the resolver.
// Using a local interface avoids a circular import.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Rejected actions. A rejected action leaves every character untouched.
var (
	ErrInsufficientMP   = errors.New("not enough MP")
	ErrInsufficientHP   = errors.New("not enough HP")
	ErrUltimateNotReady = errors.New("ultimate not ready")
	ErrUnknownAction    = errors.New("unknown action")
)

// Tuning constants shared by every strike.
const (
	// DefendPercent is the share of damage a defending character still takes.
	DefendPercent = 30
	// CritPercent scales a critical hit's base damage.
	CritPercent = 150
	// RagePercent is the share of final damage the player gains as rage.
	RagePercent = 10
	// HitManaReturn is the MP a player recovers when taking damage.
	HitManaReturn = 5
	// PoisonPercent is the share of max HP poison removes each tick, rounded up.
	PoisonPercent = 3
	// BurnDamage is the flat damage burn deals each tick.
	BurnDamage = 15
)

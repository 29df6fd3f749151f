package character

import (
	"errors"
	"fmt"
	"strings"
)

// Stats are the base numbers a Character is built from.
type Stats struct {
	MaxHP       int
	MaxMP       int
	MaxRage     int
	CritChance  float64
	DodgeChance float64
}

// Validate reports every out-of-range stat.
func (s Stats) Validate() error {
	var errs []error
	if s.MaxHP <= 0 {
		errs = append(errs, fmt.Errorf("max hp must be > 0, got %d", s.MaxHP))
	}
	if s.MaxMP < 0 {
		errs = append(errs, fmt.Errorf("max mp must be >= 0, got %d", s.MaxMP))
	}
	if s.MaxRage < 0 {
		errs = append(errs, fmt.Errorf("max rage must be >= 0, got %d", s.MaxRage))
	}
	if s.CritChance < 0 || s.CritChance > 1 {
		errs = append(errs, fmt.Errorf("crit chance must be in [0,1], got %v", s.CritChance))
	}
	if s.DodgeChance < 0 || s.DodgeChance > 1 {
		errs = append(errs, fmt.Errorf("dodge chance must be in [0,1], got %v", s.DodgeChance))
	}
	return errors.Join(errs...)
}

// Build constructs a Character at full HP and MP with no rage or status.
//
// Precondition: name must be non-empty; stats must validate.
// Postcondition: Returns a Character satisfying every bound invariant, or a non-nil error.
func Build(name string, class Class, archetype string, stats Stats) (*Character, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("character name must not be empty")
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("building %q: %w", name, err)
	}
	return &Character{
		Name:        name,
		Class:       class,
		Archetype:   archetype,
		HP:          stats.MaxHP,
		MaxHP:       stats.MaxHP,
		MP:          stats.MaxMP,
		MaxMP:       stats.MaxMP,
		MaxRage:     stats.MaxRage,
		CritChance:  stats.CritChance,
		DodgeChance: stats.DodgeChance,
	}, nil
}

package npc

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tower/internal/game/character"
)

//go:embed content/roster.yaml
var builtinRoster []byte

// Roster is the ordered enemy cycle. Floor n faces Templates[(n-1) mod len].
type Roster struct {
	CritChance  float64     `yaml:"crit_chance"`
	DodgeChance float64     `yaml:"dodge_chance"`
	ScalePct    int         `yaml:"scale_pct"` // max HP growth per floor above the first
	Templates   []*Template `yaml:"templates"`
}

// Validate checks the roster and every template in it.
func (r *Roster) Validate() error {
	var errs []error
	if len(r.Templates) == 0 {
		errs = append(errs, errors.New("roster: at least one template is required"))
	}
	if r.ScalePct < 0 {
		errs = append(errs, fmt.Errorf("roster: scale_pct must be >= 0, got %d", r.ScalePct))
	}
	if r.CritChance < 0 || r.CritChance > 1 || r.DodgeChance < 0 || r.DodgeChance > 1 {
		errs = append(errs, errors.New("roster: crit_chance and dodge_chance must be in [0,1]"))
	}
	seen := make(map[string]bool, len(r.Templates))
	for i, t := range r.Templates {
		if t == nil {
			errs = append(errs, fmt.Errorf("roster: template %d is empty", i))
			continue
		}
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("roster: template %q listed twice", t.ID))
		}
		seen[t.ID] = true
	}
	return errors.Join(errs...)
}

// LoadRoster parses and validates a roster document.
func LoadRoster(data []byte) (*Roster, error) {
	var r Roster
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("parsing roster: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadRosterFile reads a roster document from path.
func LoadRosterFile(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster %q: %w", path, err)
	}
	r, err := LoadRoster(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return r, nil
}

// WithTemplates returns a copy of r cycling through templates instead, keeping
// r's chances and scaling.
func (r *Roster) WithTemplates(templates []*Template) (*Roster, error) {
	cp := *r
	cp.Templates = templates
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return &cp, nil
}

// Builtin returns the eight-floor roster embedded in the binary.
func Builtin() (*Roster, error) {
	return LoadRoster(builtinRoster)
}

// Len returns the cycle period.
func (r *Roster) Len() int { return len(r.Templates) }

// ForFloor returns the template faced on floor.
//
// Precondition: floor >= 1.
// Postcondition: ForFloor(f) == ForFloor(((f-1) mod Len) + 1) for every f >= 1.
func (r *Roster) ForFloor(floor int) *Template {
	idx := (max(floor, 1) - 1) % len(r.Templates)
	return r.Templates[idx]
}

// ScaledHP returns base max HP scaled for floor: base * (100 + ScalePct*(floor-1)) / 100.
func (r *Roster) ScaledHP(base, floor int) int {
	return base * (100 + r.ScalePct*(max(floor, 1)-1)) / 100
}

// Spawn builds the enemy for floor at full HP and MP.
//
// Precondition: floor >= 1.
func (r *Roster) Spawn(floor int) (*character.Character, error) {
	t := r.ForFloor(floor)
	return character.Build(t.Name, character.ClassNone, t.Archetype, character.Stats{
		MaxHP:       r.ScaledHP(t.BaseHP, floor),
		MaxMP:       t.BaseMP,
		CritChance:  r.CritChance,
		DodgeChance: r.DodgeChance,
	})
}

package ruleset

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tower/internal/game/condition"
	"github.com/cory-johannsen/tower/internal/game/dice"
)

// Target selects which side a Grant lands on.
type Target int

const (
	Foe Target = iota
	Self
)

// UnmarshalYAML decodes "self" or "foe".
func (t *Target) UnmarshalYAML(value *yaml.Node) error {
	switch value.Value {
	case "foe":
		*t = Foe
	case "self":
		*t = Self
	default:
		return fmt.Errorf("line %d: unknown target %q (want self or foe)", value.Line, value.Value)
	}
	return nil
}

// String returns "self" or "foe".
func (t Target) String() string {
	if t == Self {
		return "self"
	}
	return "foe"
}

// Grant is a status effect an action applies with extend-if-greater semantics.
type Grant struct {
	Target Target         `yaml:"target"`
	Kind   condition.Kind `yaml:"kind"`
	Turns  int            `yaml:"turns"`
}

// Skill is the data behind one action: its costs and every effect it produces.
//
// A Skill with a Damage expression is an offensive action; everything else is utility.
type Skill struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	CostMP      int             `yaml:"mp"`
	CostHP      int             `yaml:"hp"`
	Damage      dice.Expression `yaml:"damage"`
	Heal        dice.Expression `yaml:"heal"`
	RestoreMP   int             `yaml:"restore_mp"`
	Rage        int             `yaml:"rage"`
	Defend      bool            `yaml:"defend"`
	Grants      []Grant         `yaml:"grants"`
	Reflect     float64         `yaml:"reflect"`
	KillHealPct int             `yaml:"kill_heal_pct"`
}

// Damaging reports whether the skill rolls damage against the foe.
func (s *Skill) Damaging() bool { return !s.Damage.IsZero() }

// CostLabel renders the resource cost, e.g. "-15 MP". Free actions render as "".
func (s *Skill) CostLabel() string {
	var parts []string
	if s.CostMP > 0 {
		parts = append(parts, fmt.Sprintf("-%d MP", s.CostMP))
	}
	if s.CostHP > 0 {
		parts = append(parts, fmt.Sprintf("-%d HP", s.CostHP))
	}
	return strings.Join(parts, " ")
}

// Validate reports every malformed field of s.
func (s *Skill) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if s.CostMP < 0 || s.CostHP < 0 {
		errs = append(errs, fmt.Errorf("%s: costs must be >= 0", s.Name))
	}
	if s.RestoreMP < 0 || s.Rage < 0 {
		errs = append(errs, fmt.Errorf("%s: restore_mp and rage must be >= 0", s.Name))
	}
	if s.Reflect < 0 || s.Reflect > 1 {
		errs = append(errs, fmt.Errorf("%s: reflect must be in [0,1], got %v", s.Name, s.Reflect))
	}
	if s.KillHealPct < 0 || s.KillHealPct > 100 {
		errs = append(errs, fmt.Errorf("%s: kill_heal_pct must be in [0,100], got %d", s.Name, s.KillHealPct))
	}
	for i, g := range s.Grants {
		if g.Turns <= 0 {
			errs = append(errs, fmt.Errorf("%s: grant %d (%s) must last at least one turn", s.Name, i, g.Kind))
		}
	}
	return errors.Join(errs...)
}

// Package ai chooses the enemy's action each enemy turn from per-archetype
// policy tables.
//
// A policy is an ordered list of rules evaluated top-down; the first rule whose
// precondition holds and whose probability gate fires wins. Preconditions are
// Lua predicates when a ScriptCaller is configured, otherwise an MP check.
// Every archetype falls back to the shared basic behaviour.
package ai

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tower/internal/game/dice"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
)

//go:embed content/policies.yaml
var builtinPolicies []byte

//go:embed content/policies.lua
var builtinScript string

// ScriptName is the chunk name of the builtin precondition script.
const ScriptName = "policies.lua"

// BuiltinScript returns the Lua source defining the builtin rule preconditions.
func BuiltinScript() string { return builtinScript }

// Rule is one special move in an archetype's policy.
//
// Precondition: ID must be non-empty and Damage set.
type Rule struct {
	ID           string          `yaml:"id"`
	Message      string          `yaml:"message"`
	CostMP       int             `yaml:"mp"`
	Chance       float64         `yaml:"chance"`
	Precondition string          `yaml:"precondition"` // Lua function name; empty = MP check only
	Damage       dice.Expression `yaml:"damage"`
	Grants       []ruleset.Grant `yaml:"grants"`
	// GrantChance gates Grants; 0 means the grants always ride along.
	GrantChance float64 `yaml:"grant_chance"`
}

// Validate reports every malformed field of r.
func (r *Rule) Validate() error {
	var errs []error
	if r.ID == "" {
		errs = append(errs, errors.New("rule id must not be empty"))
	}
	if r.CostMP < 0 {
		errs = append(errs, fmt.Errorf("rule %q: mp must be >= 0", r.ID))
	}
	if r.Chance <= 0 || r.Chance > 1 {
		errs = append(errs, fmt.Errorf("rule %q: chance must be in (0,1], got %v", r.ID, r.Chance))
	}
	if r.GrantChance < 0 || r.GrantChance > 1 {
		errs = append(errs, fmt.Errorf("rule %q: grant_chance must be in [0,1], got %v", r.ID, r.GrantChance))
	}
	if r.Damage.IsZero() {
		errs = append(errs, fmt.Errorf("rule %q: damage must be set", r.ID))
	}
	for i, g := range r.Grants {
		if g.Turns <= 0 || g.Target != ruleset.Foe {
			errs = append(errs, fmt.Errorf("rule %q: grant %d must target the foe for at least one turn", r.ID, i))
		}
	}
	return errors.Join(errs...)
}

// Fallback is the basic behaviour shared by every archetype.
type Fallback struct {
	AttackChance float64         `yaml:"attack_chance"`
	Damage       dice.Expression `yaml:"damage"`
	// VulnerablePct scales Damage while the foe is vulnerable, e.g. 120.
	VulnerablePct int             `yaml:"vulnerable_pct"`
	Heal          dice.Expression `yaml:"heal"`
}

// Validate reports every malformed field of f.
func (f *Fallback) Validate() error {
	var errs []error
	if f.AttackChance < 0 || f.AttackChance > 1 {
		errs = append(errs, fmt.Errorf("fallback: attack_chance must be in [0,1], got %v", f.AttackChance))
	}
	if f.Damage.IsZero() || f.Heal.IsZero() {
		errs = append(errs, errors.New("fallback: damage and heal must be set"))
	}
	if f.VulnerablePct < 100 {
		errs = append(errs, fmt.Errorf("fallback: vulnerable_pct must be >= 100, got %d", f.VulnerablePct))
	}
	return errors.Join(errs...)
}

// Policy is the ordered rule table for one archetype.
type Policy struct {
	Archetype string  `yaml:"archetype"`
	Rules     []*Rule `yaml:"rules"`
}

// Document is a full policy file.
type Document struct {
	Fallback Fallback  `yaml:"fallback"`
	Policies []*Policy `yaml:"policies"`
}

// Validate checks every policy and rule and rejects duplicate archetypes.
func (d *Document) Validate() error {
	var errs []error
	if err := d.Fallback.Validate(); err != nil {
		errs = append(errs, err)
	}
	seen := make(map[string]bool, len(d.Policies))
	for i, p := range d.Policies {
		if p == nil || p.Archetype == "" {
			errs = append(errs, fmt.Errorf("policy %d: archetype must not be empty", i))
			continue
		}
		if seen[p.Archetype] {
			errs = append(errs, fmt.Errorf("policy %q defined twice", p.Archetype))
		}
		seen[p.Archetype] = true
		for _, r := range p.Rules {
			if err := r.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("policy %q: %w", p.Archetype, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Load parses and validates a policy document.
func Load(data []byte) (*Document, error) {
	var d Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("parsing policies: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile reads a policy document from path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	d, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Builtin returns the policy document embedded in the binary.
func Builtin() (*Document, error) {
	return Load(builtinPolicies)
}

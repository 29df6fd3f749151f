// Package ruleset holds the class and action tables loaded from YAML content.
package ruleset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tower/internal/game/character"
)

//go:embed content/classes.yaml
var builtinClasses []byte

// ClassDef defines a playable class: base stats plus its two skills and ultimate.
//
// Precondition: ID must name a playable class after loading.
type ClassDef struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	MaxHP       int     `yaml:"max_hp"`
	MaxMP       int     `yaml:"max_mp"`
	CritChance  float64 `yaml:"crit_chance"`
	DodgeChance float64 `yaml:"dodge_chance"`
	Skill1      Skill   `yaml:"skill1"`
	Skill2      Skill   `yaml:"skill2"`
	Ultimate    Skill   `yaml:"ultimate"`

	Class character.Class `yaml:"-"`
}

// Stats returns the character stats of a fresh member of this class.
func (d *ClassDef) Stats(maxRage int) character.Stats {
	return character.Stats{
		MaxHP:       d.MaxHP,
		MaxMP:       d.MaxMP,
		MaxRage:     maxRage,
		CritChance:  d.CritChance,
		DodgeChance: d.DodgeChance,
	}
}

// Basics are the three actions every class shares.
type Basics struct {
	Attack Skill `yaml:"attack"`
	Heal   Skill `yaml:"heal"`
	Shield Skill `yaml:"shield"`
}

// Ruleset is the complete player-side rules content.
type Ruleset struct {
	MaxRage int         `yaml:"max_rage"`
	Basic   Basics      `yaml:"basic"`
	Classes []*ClassDef `yaml:"classes"`

	byClass map[character.Class]*ClassDef
}

// Load parses and validates a ruleset document.
//
// Postcondition: Returns a Ruleset defining all four classes, or a non-nil error.
func Load(data []byte) (*Ruleset, error) {
	var r Ruleset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("parsing ruleset: %w", err)
	}
	if err := r.index(); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadFile reads a ruleset document from path.
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	r, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

func (r *Ruleset) index() error {
	var errs []error
	if r.MaxRage <= 0 {
		errs = append(errs, fmt.Errorf("max_rage must be > 0, got %d", r.MaxRage))
	}
	for name, sk := range map[string]*Skill{"attack": &r.Basic.Attack, "heal": &r.Basic.Heal, "shield": &r.Basic.Shield} {
		if err := sk.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("basic %s: %w", name, err))
		}
	}
	r.byClass = make(map[character.Class]*ClassDef, len(r.Classes))
	for i, def := range r.Classes {
		c, err := character.ParseClass(def.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("class %d: %w", i, err))
			continue
		}
		if _, dup := r.byClass[c]; dup {
			errs = append(errs, fmt.Errorf("class %s defined twice", c))
			continue
		}
		def.Class = c
		if err := def.Stats(r.MaxRage).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("class %s: %w", c, err))
		}
		for _, sk := range []*Skill{&def.Skill1, &def.Skill2, &def.Ultimate} {
			if err := sk.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("class %s: %w", c, err))
			}
		}
		r.byClass[c] = def
	}
	for _, c := range character.Classes() {
		if _, ok := r.byClass[c]; !ok {
			errs = append(errs, fmt.Errorf("class %s is not defined", c))
		}
	}
	return errors.Join(errs...)
}

// Class returns the definition for c, or (nil, false) if not defined.
func (r *Ruleset) Class(c character.Class) (*ClassDef, bool) {
	d, ok := r.byClass[c]
	return d, ok
}

// Skill returns the skill behind action a for class c.
func (r *Ruleset) Skill(c character.Class, a Action) (*Skill, bool) {
	switch a {
	case Attack:
		return &r.Basic.Attack, true
	case Heal:
		return &r.Basic.Heal, true
	case Shield:
		return &r.Basic.Shield, true
	}
	def, ok := r.byClass[c]
	if !ok {
		return nil, false
	}
	switch a {
	case Skill1:
		return &def.Skill1, true
	case Skill2:
		return &def.Skill2, true
	case Ultimate:
		return &def.Ultimate, true
	}
	return nil, false
}

// NewPlayer builds a fresh player of class c at full HP and MP.
//
// Precondition: name must be non-empty.
func (r *Ruleset) NewPlayer(name string, c character.Class) (*character.Character, error) {
	def, ok := r.byClass[c]
	if !ok {
		return nil, fmt.Errorf("ruleset: no class definition for %s", c)
	}
	return character.Build(name, c, "", def.Stats(r.MaxRage))
}

var (
	defaultOnce sync.Once
	defaultSet  *Ruleset
)

// Default returns the ruleset embedded in the binary. It panics if the embedded content is invalid.
func Default() *Ruleset {
	defaultOnce.Do(func() {
		r, err := Load(builtinClasses)
		if err != nil {
			panic("ruleset: builtin content invalid: " + err.Error())
		}
		defaultSet = r
	})
	return defaultSet
}

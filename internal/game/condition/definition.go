package condition

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var builtin embed.FS

// Def is the static display definition of a status Kind, loaded from YAML.
type Def struct {
	ID          Kind   `yaml:"id"`
	Name        string `yaml:"name"`
	Short       string `yaml:"short"`
	Description string `yaml:"description"`
	Harmful     bool   `yaml:"harmful"`
}

// Validate reports a descriptive error when def is incomplete.
func (d *Def) Validate() error {
	var errs []error
	if !d.ID.Valid() {
		errs = append(errs, fmt.Errorf("id %d is not a known kind", int(d.ID)))
	}
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, fmt.Errorf("%s: name must not be empty", d.ID))
	}
	return errors.Join(errs...)
}

type defFile struct {
	Conditions []*Def `yaml:"conditions"`
}

// Registry holds all known Defs keyed by Kind.
type Registry struct {
	defs map[Kind]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Kind]*Def)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
// Precondition: def must not be nil.
func (r *Registry) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the Def for k, or (nil, false) if not found.
func (r *Registry) Get(k Kind) (*Def, bool) {
	d, ok := r.defs[k]
	return d, ok
}

// Name returns the display name of k, falling back to its identifier.
func (r *Registry) Name(k Kind) string {
	if d, ok := r.defs[k]; ok {
		return d.Name
	}
	return k.String()
}

// All returns a snapshot slice of all registered Defs ordered by Kind.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Load parses a conditions document into reg.
//
// Postcondition: every def in data is registered, or an error naming the bad entry is returned.
func (r *Registry) Load(data []byte) error {
	var f defFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return fmt.Errorf("parsing conditions: %w", err)
	}
	for i, def := range f.Conditions {
		if def == nil {
			return fmt.Errorf("condition %d: empty entry", i)
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
		r.Register(def)
	}
	return nil
}

// LoadDirectory reads every *.yaml file in dir and returns a populated Registry.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading condition dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := reg.Load(data); err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
	}
	return reg, nil
}

// Builtin returns a Registry populated from the embedded condition content.
//
// Postcondition: every Kind has a Def.
func Builtin() (*Registry, error) {
	entries, err := builtin.ReadDir("content")
	if err != nil {
		return nil, fmt.Errorf("reading builtin conditions: %w", err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		data, err := builtin.ReadFile("content/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading builtin %q: %w", e.Name(), err)
		}
		if err := reg.Load(data); err != nil {
			return nil, fmt.Errorf("builtin %q: %w", e.Name(), err)
		}
	}
	for _, k := range Kinds() {
		if _, ok := reg.Get(k); !ok {
			return nil, fmt.Errorf("builtin conditions: missing definition for %s", k)
		}
	}
	return reg, nil
}

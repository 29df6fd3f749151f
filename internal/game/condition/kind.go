// Package condition models timed status effects as a typed duration table.
package condition

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind identifies one decaying status effect.
type Kind int

// Kinds in turn-start decrement order.
const (
	Stun Kind = iota
	Vulnerability
	Poison
	Burn
	Slow
	AtkDown
	AtkUp
	DefUp
	IronSkin
	Invulnerable

	numKinds
)

var kindNames = [numKinds]string{
	Stun:          "stun",
	Vulnerability: "vulnerability",
	Poison:        "poison",
	Burn:          "burn",
	Slow:          "slow",
	AtkDown:       "atkDown",
	AtkUp:         "atkUp",
	DefUp:         "defUp",
	IronSkin:      "ironSkin",
	Invulnerable:  "invulnerable",
}

// String returns the content identifier of k, e.g. "atkDown".
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k is a known Kind.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// Kinds returns every Kind in turn-start decrement order.
//
// Postcondition: the returned slice is a fresh allocation.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind resolves a content identifier to its Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("condition: unknown kind %q", s)
}

// UnmarshalYAML decodes a Kind from its identifier.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseKind(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*k = parsed
	return nil
}

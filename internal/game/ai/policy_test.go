package ai_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tower/internal/game/ai"
)

func TestBuiltin_Archetypes(t *testing.T) {
	reg := builtinRegistry(t, nil)
	assert.Equal(t, []string{"dragon", "golem", "orc"}, reg.Archetypes())

	p, ok := reg.PolicyFor("golem")
	require.True(t, ok)
	require.Len(t, p.Rules, 1)
	assert.Equal(t, 14, p.Rules[0].CostMP)
	assert.InDelta(t, 0.4, p.Rules[0].GrantChance, 1e-9)

	_, ok = reg.PolicyFor("goblin")
	assert.False(t, ok, "goblins only use the fallback")
}

func TestBuiltinScript_DefinesPreconditions(t *testing.T) {
	doc, err := ai.Builtin()
	require.NoError(t, err)
	src := ai.BuiltinScript()
	for _, p := range doc.Policies {
		for _, r := range p.Rules {
			if r.Precondition != "" {
				assert.Contains(t, src, "function "+r.Precondition+"(")
			}
		}
	}
}

const validDoc = `
fallback:
  attack_chance: 0.7
  damage: 6-13
  vulnerable_pct: 120
  heal: 6-10
policies:
  - archetype: orc
    rules:
      - id: axe
        mp: 10
        chance: 0.3
        damage: 10-17
        grants:
          - {target: foe, kind: vulnerability, turns: 2}
`

func TestLoad_Valid(t *testing.T) {
	doc, err := ai.Load([]byte(validDoc))
	require.NoError(t, err)
	require.Len(t, doc.Policies, 1)
	assert.Equal(t, 10, doc.Policies[0].Rules[0].Damage.Min)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]struct {
		from, to string
		want     string
	}{
		"zero chance":      {"chance: 0.3", "chance: 0", "chance must be in (0,1]"},
		"self grant":       {"target: foe", "target: self", "must target the foe"},
		"missing damage":   {"        damage: 10-17\n", "", "damage must be set"},
		"duplicate key":    {"damage: 10-17", "mp: 10", "already defined"},
		"bad vulnerable":   {"vulnerable_pct: 120", "vulnerable_pct: 90", "vulnerable_pct"},
		"unknown kind":     {"kind: vulnerability", "kind: frozen", "frozen"},
		"unknown field":    {"chance: 0.3", "chance: 0.3\n        weight: 2", "weight"},
		"duplicate policy": {"policies:\n", "policies:\n  - archetype: orc\n", "defined twice"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ai.Load([]byte(strings.Replace(validDoc, tc.from, tc.to, 1)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0644))
	doc, err := ai.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.Policies, 1)

	_, err = ai.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

package npc_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/npc"
)

func builtin(t *testing.T) *npc.Roster {
	t.Helper()
	r, err := npc.Builtin()
	require.NoError(t, err)
	return r
}

func TestBuiltin_EightFloorCycle(t *testing.T) {
	r := builtin(t)
	require.Equal(t, 8, r.Len())

	want := []struct {
		name      string
		hp, mp    int
		archetype string
	}{
		{"Goblin", 80, 20, "goblin"},
		{"Orc", 120, 30, "orc"},
		{"Golem", 160, 12, "golem"},
		{"Dino", 260, 100, "dino"},
		{"Giant Spider", 320, 50, "spider"},
		{"Dark Mage Lord", 420, 65, "darkmage"},
		{"Devil", 520, 80, "devil"},
		{"Dragon", 650, 100, "dragon"},
	}
	for i, w := range want {
		tmpl := r.ForFloor(i + 1)
		assert.Equal(t, w.name, tmpl.Name)
		assert.Equal(t, w.hp, tmpl.BaseHP)
		assert.Equal(t, w.mp, tmpl.BaseMP)
		assert.Equal(t, w.archetype, tmpl.Archetype)
	}
}

func TestScaledHP_FloorThreeGoblin(t *testing.T) {
	r := builtin(t)
	assert.Equal(t, 80, r.ScaledHP(80, 1))
	assert.Equal(t, 99, r.ScaledHP(80, 3))
}

func TestForFloor_NinthFloorReusesFirstArchetype(t *testing.T) {
	r := builtin(t)
	assert.Same(t, r.ForFloor(1), r.ForFloor(9))

	first, err := r.Spawn(1)
	require.NoError(t, err)
	ninth, err := r.Spawn(9)
	require.NoError(t, err)
	assert.Equal(t, first.Archetype, ninth.Archetype)
	assert.Greater(t, ninth.MaxHP, first.MaxHP)
}

func TestSpawn_FullResources(t *testing.T) {
	r := builtin(t)
	c, err := r.Spawn(3)
	require.NoError(t, err)

	assert.Equal(t, "Golem", c.Name)
	assert.Equal(t, character.ClassNone, c.Class)
	assert.False(t, c.IsPlayer())
	assert.Equal(t, 160*124/100, c.MaxHP)
	assert.Equal(t, c.MaxHP, c.HP)
	assert.Equal(t, 12, c.MP)
	assert.Equal(t, 0, c.MaxRage)
	assert.InDelta(t, 0.1, c.CritChance, 1e-9)
	assert.InDelta(t, 0.05, c.DodgeChance, 1e-9)
}

func TestProperty_FloorCycleLaw(t *testing.T) {
	r := builtin(t)
	rapid.Check(t, func(rt *rapid.T) {
		floor := rapid.IntRange(1, 10000).Draw(rt, "floor")
		assert.Same(rt, r.ForFloor(floor), r.ForFloor((floor-1)%8+1))
	})
}

func TestProperty_ScaledHPNeverShrinks(t *testing.T) {
	r := builtin(t)
	rapid.Check(t, func(rt *rapid.T) {
		base := rapid.IntRange(1, 1000).Draw(rt, "base")
		floor := rapid.IntRange(1, 500).Draw(rt, "floor")
		assert.GreaterOrEqual(rt, r.ScaledHP(base, floor+1), r.ScaledHP(base, floor))
		assert.GreaterOrEqual(rt, r.ScaledHP(base, floor), base)
	})
}

const validRoster = `
crit_chance: 0.1
dodge_chance: 0.05
scale_pct: 12
templates:
  - id: rat
    name: Rat
    base_hp: 10
    base_mp: 0
    archetype: rat
`

func TestLoadRoster_Errors(t *testing.T) {
	tests := map[string]struct {
		from, to string
		want     string
	}{
		"zero hp":         {"base_hp: 10", "base_hp: 0", "base_hp must be >= 1"},
		"negative mp":     {"base_mp: 0", "base_mp: -1", "base_mp must be >= 0"},
		"no archetype":    {"archetype: rat", "archetype: \"\"", "archetype must not be empty"},
		"bad chance":      {"crit_chance: 0.1", "crit_chance: 1.5", "crit_chance"},
		"negative scale":  {"scale_pct: 12", "scale_pct: -3", "scale_pct"},
		"unknown field":   {"base_mp: 0", "base_mp: 0\n    loot: gold", "loot"},
		"empty templates": {"templates:\n  - id: rat\n    name: Rat\n    base_hp: 10\n    base_mp: 0\n    archetype: rat\n", "templates: []\n", "at least one template"},
		"duplicate id":    {"templates:\n", "templates:\n  - {id: rat, name: Rat, base_hp: 1, base_mp: 0, archetype: rat}\n", "listed twice"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := npc.LoadRoster([]byte(strings.Replace(validRoster, tc.from, tc.to, 1)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadTemplates_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"),
		[]byte("id: imp\nname: Imp\nbase_hp: 40\nbase_mp: 10\narchetype: imp\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	templates, err := npc.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Imp", templates[0].Name)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("id: bad\nname: Bad\nbase_hp: 0\narchetype: x\n"), 0644))
	_, err = npc.LoadTemplates(dir)
	assert.ErrorContains(t, err, "b.yaml")
}

func TestWithTemplates_ReplacesCycle(t *testing.T) {
	r := builtin(t)
	custom, err := r.WithTemplates([]*npc.Template{
		{ID: "imp", Name: "Imp", BaseHP: 40, BaseMP: 10, Archetype: "imp"},
		{ID: "orc", Name: "Orc", BaseHP: 120, BaseMP: 30, Archetype: "orc"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, custom.Len())
	assert.Equal(t, "Imp", custom.ForFloor(3).Name)
	assert.Equal(t, r.ScalePct, custom.ScalePct)
	assert.Equal(t, 8, r.Len(), "the original is untouched")

	_, err = r.WithTemplates(nil)
	assert.Error(t, err)
}

func TestLoadRosterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validRoster), 0644))
	r, err := npc.LoadRosterFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Rat", r.ForFloor(5).Name)

	_, err = npc.LoadRosterFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

package combat_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/combat"
	"github.com/cory-johannsen/tower/internal/game/condition"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
)

func use(t *testing.T, actor, foe *character.Character, a ruleset.Action, src combat.Source) combat.Plan {
	t.Helper()
	p, err := combat.Use(ruleset.Default(), actor, foe, a, src)
	require.NoError(t, err)
	return p
}

func TestUse_HealIsImmediate(t *testing.T) {
	p := player(t, character.Warrior)
	p.HP = 100
	e := enemy(t, 80, 20)

	plan := use(t, p, e, ruleset.Heal, &scripted{ints: []int{5}})

	assert.Nil(t, plan.Pending)
	assert.Equal(t, 125, p.HP)
	assert.Equal(t, 15, p.MP)
	require.Len(t, plan.Events, 1)
	assert.Equal(t, combat.EventHeal, plan.Events[0].Kind)
	assert.Equal(t, 25, plan.Events[0].Amount)
}

func TestUse_ShieldDefendsAndRestoresMP(t *testing.T) {
	p := player(t, character.Mage)
	p.MP = 20
	plan := use(t, p, enemy(t, 80, 20), ruleset.Shield, never())
	assert.Nil(t, plan.Pending)
	assert.True(t, p.Defending)
	assert.Equal(t, 25, p.MP)
}

func TestUse_AttackIsPending(t *testing.T) {
	p := player(t, character.Archer)
	e := enemy(t, 80, 20)
	plan := use(t, p, e, ruleset.Attack, &scripted{ints: []int{3}})
	require.NotNil(t, plan.Pending)
	assert.Equal(t, 18, plan.Pending.Base)
	assert.Equal(t, 80, e.HP, "damage waits for the animation")
}

func TestUse_ArmorBreakPendsWithGrant(t *testing.T) {
	p := player(t, character.Warrior)
	e := enemy(t, 200, 20)
	plan := use(t, p, e, ruleset.Skill1, &scripted{ints: []int{10}})

	require.NotNil(t, plan.Pending)
	assert.Equal(t, 90, plan.Pending.Base)
	assert.Equal(t, 15, p.MP, "cost is paid at selection")
	assert.False(t, e.Status.Has(condition.Vulnerability))

	combat.ResolveStrike(p, e, *plan.Pending, never())
	assert.Equal(t, 2, e.Status.Get(condition.Vulnerability))
	assert.Equal(t, 110, e.HP)
}

func TestUse_TripleShotMultiplies(t *testing.T) {
	p := player(t, character.Archer)
	plan := use(t, p, enemy(t, 200, 20), ruleset.Skill1, &scripted{ints: []int{4}})
	require.NotNil(t, plan.Pending)
	assert.Equal(t, 66, plan.Pending.Base)
}

func TestUse_WarriorRageSkill(t *testing.T) {
	p := player(t, character.Warrior)
	plan := use(t, p, enemy(t, 80, 20), ruleset.Skill2, never())
	assert.Nil(t, plan.Pending)
	assert.Equal(t, 40, p.Rage)
	assert.Equal(t, 15, p.MP)
}

func TestUse_TauntGrantsDefUp(t *testing.T) {
	p := player(t, character.Tank)
	use(t, p, enemy(t, 80, 20), ruleset.Skill1, never())
	assert.Equal(t, 2, p.Status.Get(condition.DefUp))
	assert.Equal(t, 10, p.MP)
}

func TestUse_IronSkinCostsHP(t *testing.T) {
	p := player(t, character.Tank)
	use(t, p, enemy(t, 80, 20), ruleset.Skill2, never())
	assert.Equal(t, 165, p.HP)
	assert.Equal(t, 2, p.Status.Get(condition.IronSkin))
	assert.Equal(t, 1, p.Status.Get(condition.AtkUp))
}

func TestUse_IronSkinRequiresMoreHPThanCost(t *testing.T) {
	p := player(t, character.Tank)
	p.HP = 15
	before := p.Clone()
	_, err := combat.Use(ruleset.Default(), p, enemy(t, 80, 20), ruleset.Skill2, never())
	assert.ErrorIs(t, err, combat.ErrInsufficientHP)
	assert.Equal(t, before, p)
}

func TestUse_InsufficientMPRejectedWithoutChange(t *testing.T) {
	p := player(t, character.Warrior)
	p.MP = 10
	e := enemy(t, 80, 20)
	pBefore, eBefore := p.Clone(), e.Clone()

	_, err := combat.Use(ruleset.Default(), p, e, ruleset.Skill1, never())

	assert.ErrorIs(t, err, combat.ErrInsufficientMP)
	assert.Equal(t, pBefore, p)
	assert.Equal(t, eBefore, e)
}

func TestUse_UnknownAction(t *testing.T) {
	_, err := combat.Use(ruleset.Default(), player(t, character.Mage), enemy(t, 80, 20), ruleset.Action(42), never())
	assert.ErrorIs(t, err, combat.ErrUnknownAction)
}

func TestUse_UltimateNeedsFullRage(t *testing.T) {
	p := player(t, character.Warrior)
	p.Rage = 99
	_, err := combat.Use(ruleset.Default(), p, enemy(t, 80, 20), ruleset.Ultimate, never())
	assert.ErrorIs(t, err, combat.ErrUltimateNotReady)
	assert.Equal(t, 99, p.Rage)
}

// A charged warrior ultimate resets rage, hits for 200-250, and heals half max HP on a kill.
func TestUse_DecapitateKillHeals(t *testing.T) {
	p := player(t, character.Warrior)
	p.Rage = 100
	p.HP = 50
	e := enemy(t, 80, 20)

	plan := use(t, p, e, ruleset.Ultimate, &scripted{ints: []int{17}})

	assert.Nil(t, plan.Pending)
	assert.Equal(t, 0, p.Rage)
	assert.Equal(t, 0, e.HP)
	assert.Equal(t, 125, p.HP)
	assert.Equal(t, 0, p.MP)
}

func TestUse_DecapitateDamageRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		roll := rapid.IntRange(0, 50).Draw(rt, "roll")
		p, err := ruleset.Default().NewPlayer("Hero", character.Warrior)
		require.NoError(rt, err)
		p.Rage = 100
		p.HP = 40
		e := &character.Character{Name: "Dragon", HP: 1000, MaxHP: 1000}

		_, err = combat.Use(ruleset.Default(), p, e, ruleset.Ultimate, &scripted{ints: []int{roll}})
		require.NoError(rt, err)

		dealt := 1000 - e.HP
		assert.GreaterOrEqual(rt, dealt, 200)
		assert.LessOrEqual(rt, dealt, 250)
		assert.Equal(rt, 40, p.HP, "no heal without a kill")
		assert.Zero(rt, p.Rage)
	})
}

// The ultimate still fires when MP is short: rage is the only gate.
func TestUse_UltimateMPIsBestEffort(t *testing.T) {
	p := player(t, character.Tank)
	p.Rage = 100
	p.MP = 5
	use(t, p, enemy(t, 80, 20), ruleset.Ultimate, never())
	assert.Equal(t, 5, p.MP)
	assert.Equal(t, 2, p.Status.Get(condition.Invulnerable))
	assert.InDelta(t, 0.5, p.ReflectPct, 1e-9)
	assert.Zero(t, p.Rage)
}

func TestUse_UltimateSpendsMPWhenAffordable(t *testing.T) {
	p := player(t, character.Mage)
	p.Rage = 100
	e := enemy(t, 400, 20)
	use(t, p, e, ruleset.Ultimate, never())
	assert.Equal(t, 65, p.MP)
	assert.Equal(t, 280, e.HP)
	assert.Equal(t, 3, e.Status.Get(condition.Burn))
}

func TestUse_RainOfArrowsIgnoresDodge(t *testing.T) {
	p := player(t, character.Archer)
	p.Rage = 100
	e := enemy(t, 400, 20)
	e.DodgeChance = 1
	use(t, p, e, ruleset.Ultimate, never())
	assert.Equal(t, 250, e.HP)
	assert.Equal(t, 2, e.Status.Get(condition.Slow))
}

func TestProperty_RejectedUseNeverMutates(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		class := rapid.SampledFrom(character.Classes()).Draw(rt, "class")
		action := ruleset.Action(rapid.IntRange(0, 7).Draw(rt, "action"))
		p, err := ruleset.Default().NewPlayer("Hero", class)
		require.NoError(rt, err)
		p.MP = rapid.IntRange(0, p.MaxMP).Draw(rt, "mp")
		p.HP = rapid.IntRange(1, p.MaxHP).Draw(rt, "hp")
		p.Rage = rapid.IntRange(0, p.MaxRage).Draw(rt, "rage")
		e := &character.Character{Name: "Foe", HP: 300, MaxHP: 300}
		pBefore, eBefore := p.Clone(), e.Clone()

		_, err = combat.Use(ruleset.Default(), p, e, action, never())
		if err == nil {
			return
		}
		assert.True(rt, errors.Is(err, combat.ErrInsufficientMP) || errors.Is(err, combat.ErrInsufficientHP) ||
			errors.Is(err, combat.ErrUltimateNotReady) || errors.Is(err, combat.ErrUnknownAction))
		assert.Equal(rt, pBefore, p)
		assert.Equal(rt, eBefore, e)
	})
}

package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tower/internal/game/ai"
	"github.com/cory-johannsen/tower/internal/scripting"
)

func newState(t *testing.T, limit int) *lua.LState {
	t.Helper()
	L := scripting.NewSandboxedState(limit)
	require.NotNil(t, L)
	t.Cleanup(L.Close)
	return L
}

func TestNewSandboxedState_Globals(t *testing.T) {
	L := newState(t, 0)
	for _, name := range []string{"os", "io", "debug", "dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, lua.LNil, L.GetGlobal(name), "%s must not be reachable from content scripts", name)
	}
	for _, name := range []string{"math", "string", "table", "pairs"} {
		assert.NotEqual(t, lua.LNil, L.GetGlobal(name), "%s is needed by policy scripts", name)
	}
}

func TestEffectiveLimit(t *testing.T) {
	assert.Equal(t, scripting.DefaultInstructionLimit, scripting.EffectiveLimit(0))
	assert.Equal(t, scripting.DefaultInstructionLimit, scripting.EffectiveLimit(-5))
	assert.Equal(t, 7, scripting.EffectiveLimit(7))
}

// Each loop costs about 400 opcodes; ten of them only fit a 1000 opcode
// limit because every call starts from a full budget.
func TestWithBudget_ResetsEachCall(t *testing.T) {
	L := newState(t, 1000)
	for i := 0; i < 10; i++ {
		err := scripting.WithBudget(L, 1000, func() error {
			return L.DoString(`for i = 1, 400 do end`)
		})
		require.NoError(t, err, "call %d", i)
	}
}

func TestWithBudget_ExhaustedCallDoesNotStarveNext(t *testing.T) {
	L := newState(t, 0)
	err := scripting.WithBudget(L, 50, func() error { return L.DoString(`while true do end`) })
	require.Error(t, err)

	err = scripting.WithBudget(L, 50, func() error { return L.DoString(`x = 1 + 1`) })
	require.NoError(t, err)
	assert.Equal(t, lua.LNumber(2), L.GetGlobal("x"))
}

func TestBuiltinPolicyScript_HasManaInFreshSandbox(t *testing.T) {
	L := newState(t, 0)
	require.NoError(t, L.DoString(ai.BuiltinScript()))

	table := func(kv map[string]float64) *lua.LTable {
		tbl := L.NewTable()
		for k, v := range kv {
			tbl.RawSetString(k, lua.LNumber(v))
		}
		return tbl
	}
	hasMana := func(mp, cost float64) bool {
		t.Helper()
		err := L.CallByParam(lua.P{Fn: L.GetGlobal("has_mana"), NRet: 1, Protect: true},
			table(map[string]float64{"mp": mp, "max_mp": 100}),
			table(map[string]float64{"hp": 50}),
			table(map[string]float64{"cost": cost, "chance": 0.5}))
		require.NoError(t, err)
		ret := L.Get(-1)
		L.Pop(1)
		return lua.LVAsBool(ret)
	}

	assert.True(t, hasMana(30, 30))
	assert.True(t, hasMana(100, 30))
	assert.False(t, hasMana(29, 30))
}

func TestProperty_InstructionLimitAlwaysErrors(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		limit := rapid.IntRange(1, 50).Draw(rt, "limit")
		L := scripting.NewSandboxedState(limit)
		defer L.Close()
		err := scripting.WithBudget(L, limit, func() error { return L.DoString(`while true do end`) })
		if err == nil {
			rt.Fatalf("expected error with limit=%d but got nil", limit)
		}
	})
}

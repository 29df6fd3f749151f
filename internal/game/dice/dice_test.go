package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tower/internal/game/dice"
)

// fixedSource returns the same Intn and Float64 values on every call.
type fixedSource struct {
	n int
	f float64
}

func (s fixedSource) Intn(n int) int {
	if s.n >= n {
		return n - 1
	}
	return s.n
}
func (s fixedSource) Float64() float64 { return s.f }

// TestRollResult_Total verifies the postcondition: Total() == Value * Multiplier.
func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{Expression: "18-30x3", Value: 22, Multiplier: 3}
	assert.Equal(t, 66, r.Total())

	r = dice.RollResult{Expression: "15-28", Value: 20}
	assert.Equal(t, 20, r.Total(), "zero multiplier is treated as 1")
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "18-30x3", Value: 22, Multiplier: 3}
	assert.Equal(t, "18-30x3 → [22] x3 = 66", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Value: 4}
	assert.Panics(t, func() { _ = r.String() })
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want dice.Expression
	}{
		{"15-28", dice.Expression{Raw: "15-28", Min: 15, Max: 28, Multiplier: 1}},
		{"18-30x3", dice.Expression{Raw: "18-30x3", Min: 18, Max: 30, Multiplier: 3}},
		{"15", dice.Expression{Raw: "15", Min: 15, Max: 15, Multiplier: 1}},
		{" 6 - 13 ", dice.Expression{Raw: " 6 - 13 ", Min: 6, Max: 13, Multiplier: 1}},
	}
	for _, tc := range tests {
		got, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"", "abc", "10-5", "5-x", "5-10x0", "5-10xq"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected error for %q", in)
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
	assert.NotPanics(t, func() { dice.MustParse("1-2") })
}

func TestExpression_UnmarshalYAML(t *testing.T) {
	var doc struct {
		Damage dice.Expression `yaml:"damage"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("damage: 28-42\n"), &doc))
	assert.Equal(t, 28, doc.Damage.Min)
	assert.Equal(t, 42, doc.Damage.Max)

	err := yaml.Unmarshal([]byte("damage: 42-28\n"), &doc)
	assert.Error(t, err)
}

func TestRoll_UsesSourceOffset(t *testing.T) {
	r := dice.Roll(dice.MustParse("15-28"), fixedSource{n: 5})
	assert.Equal(t, 20, r.Value)
	assert.Equal(t, 20, r.Total())

	r = dice.Roll(dice.MustParse("7"), fixedSource{n: 5})
	assert.Equal(t, 7, r.Value, "fixed expression never consults the source")
}

func TestRoll_Property_WithinBounds(t *testing.T) {
	src := dice.NewSeededSource(42)
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(0, 300).Draw(rt, "lo")
		hi := lo + rapid.IntRange(0, 300).Draw(rt, "span")
		mult := rapid.IntRange(1, 5).Draw(rt, "mult")
		expr := dice.MustParse(fmt.Sprintf("%d-%dx%d", lo, hi, mult))
		r := dice.Roll(expr, src)
		assert.GreaterOrEqual(rt, r.Value, lo)
		assert.LessOrEqual(rt, r.Value, hi)
		assert.Equal(rt, r.Value*mult, r.Total())
	})
}

func TestChance(t *testing.T) {
	assert.True(t, dice.Chance(fixedSource{f: 0.49}, 0.5))
	assert.False(t, dice.Chance(fixedSource{f: 0.5}, 0.5), "draw equal to p is a miss")
	assert.False(t, dice.Chance(fixedSource{f: 0}, 0))
}

func TestCryptoSource_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
		f := src.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(7)
	b := dice.NewSeededSource(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(100), b.Intn(100))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestLoggedRoller_DelegatesToSource(t *testing.T) {
	roller := dice.NewLoggedRoller(fixedSource{n: 2, f: 0.25}, zaptest.NewLogger(t))
	r, err := roller.RollExpr("10-17")
	require.NoError(t, err)
	assert.Equal(t, 12, r.Total())
	assert.True(t, roller.Chance("orc_axe", 0.3))
	assert.False(t, roller.Chance("golem_smash", 0.2))
	assert.Equal(t, 2, roller.Intn(10))
	assert.Equal(t, 0.25, roller.Float64())

	_, err = roller.RollExpr("bogus")
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bogus"))
}

// Combat draws straight from the session source, so the Roller logs every raw draw.
func TestLoggedRoller_LogsEveryDraw(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	roller := dice.NewLoggedRoller(fixedSource{n: 2, f: 0.25}, zap.New(core))

	assert.True(t, dice.Chance(roller, 0.3))
	assert.Equal(t, 2, roller.Intn(10))
	roller.Chance("orc_axe", 0.3)

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, "draw", entries[0].Message)
	assert.Equal(t, 0.25, entries[0].ContextMap()["value"])
	assert.Equal(t, "draw", entries[1].Message)
	assert.Equal(t, int64(2), entries[1].ContextMap()["value"])
	assert.Equal(t, "chance gate", entries[2].Message, "a named gate logs once, not as a raw draw")
}

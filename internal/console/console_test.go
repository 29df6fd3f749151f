package console_test

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/tower/internal/console"
	"github.com/cory-johannsen/tower/internal/game/ai"
	"github.com/cory-johannsen/tower/internal/game/battle"
	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/combat"
	"github.com/cory-johannsen/tower/internal/game/command"
	"github.com/cory-johannsen/tower/internal/game/condition"
	"github.com/cory-johannsen/tower/internal/game/dice"
	"github.com/cory-johannsen/tower/internal/game/npc"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
	"github.com/cory-johannsen/tower/internal/game/session"
	"github.com/cory-johannsen/tower/internal/game/tower"
	"github.com/cory-johannsen/tower/internal/sim"
)

func newSession(t *testing.T, class character.Class) *session.Session {
	t.Helper()
	roster, err := npc.Builtin()
	require.NoError(t, err)
	doc, err := ai.Builtin()
	require.NoError(t, err)
	conds, err := condition.Builtin()
	require.NoError(t, err)
	var seed atomic.Int64
	seed.Store(20)
	m := session.NewManager(tower.Config{
		Rules:      ruleset.Default(),
		Roster:     roster,
		Policies:   ai.NewRegistry(doc, nil, nil),
		Conditions: conds,
		Animation:  100 * time.Millisecond,
	}, func() combat.Source {
		return dice.NewSeededSource(seed.Add(1))
	}, zaptest.NewLogger(t))
	s, err := m.Create("Hero", class)
	require.NoError(t, err)
	return s
}

func newConsole(t *testing.T, s *session.Session, input string) (*console.Console, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c, err := console.New(console.Config{
		Session: s,
		Rules:   ruleset.Default(),
		In:      strings.NewReader(input),
		Out:     &out,
		Tick:    50 * time.Millisecond,
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return c, &out
}

func TestConsole_InfoCommands(t *testing.T) {
	c, out := newConsole(t, newSession(t, character.Warrior), "help\nactions\nstatus\nfrobnicate\n\nquit\nattack\n")
	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Hero the warrior enters the tower")
	assert.Contains(t, text, "Combat:")
	assert.Contains(t, text, "Armor Break")
	assert.Contains(t, text, "Floor 1/8")
	assert.Contains(t, text, "Goblin (goblin)")
	assert.Contains(t, text, `Unknown command "frobnicate"`)
	assert.Contains(t, text, "You leave the tower.")
	assert.NotContains(t, text, "\033[", "color is off")
	assert.NotContains(t, text, "Hero dealt", "nothing runs after quit")
}

func TestConsole_AttackAdvancesToNextPlayerTurn(t *testing.T) {
	s := newSession(t, character.Mage)
	c, out := newConsole(t, s, "attack\n")
	require.NoError(t, c.Run(context.Background()), "end of input is a clean exit")

	st := s.State()
	if st.Stage == tower.StageBattle {
		assert.Equal(t, battle.PlayerTurn, st.Battle.Phase)
	}
	assert.Contains(t, out.String(), "Goblin")
	assert.Regexp(t, `Hero dealt \d+ damage|Goblin dodged`, out.String())
}

func TestConsole_RejectedActionKeepsTurn(t *testing.T) {
	s := newSession(t, character.Tank)
	c, out := newConsole(t, s, "")
	quit, err := c.Exec(context.Background(), "ultimate")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, out.String(), "Can't ultimate")
	assert.Equal(t, battle.PlayerTurn, s.State().Battle.Phase)

	_, err = c.Exec(context.Background(), "reward 1")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Can't choose that")

	_, err = c.Exec(context.Background(), "restart")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Can't restart")
}

func TestConsole_PlaysThroughAFloor(t *testing.T) {
	s := newSession(t, character.Warrior)
	c, out := newConsole(t, s, "")
	ctx := context.Background()
	pilot := sim.NewAutopilot(ruleset.Default())
	reg := command.DefaultRegistry()

	for i := 0; i < 500 && s.State().Stage == tower.StageBattle; i++ {
		cmd, ok := reg.ForAction(pilot.Choose(s.State().Battle))
		require.True(t, ok)
		_, err := c.Exec(ctx, cmd.Name)
		require.NoError(t, err)
	}

	switch s.State().Stage {
	case tower.StageReward:
		assert.Contains(t, out.String(), "FLOOR CLEARED")
		assert.Contains(t, out.String(), "Choose a reward:")
		maxMP := s.State().Battle.Player.MaxMP

		_, err := c.Exec(ctx, "9")
		require.NoError(t, err)
		assert.Equal(t, tower.StageReward, s.State().Stage, "out-of-range choice changes nothing")

		_, err = c.Exec(ctx, "2")
		require.NoError(t, err)
		st := s.State()
		assert.Equal(t, tower.StageBattle, st.Stage)
		assert.Equal(t, 2, st.Floor)
		assert.Equal(t, maxMP+tower.MaxMPBonus, st.Battle.Player.MaxMP)
		assert.Contains(t, out.String(), "You gain Max MP +10.")
	case tower.StageDefeat:
		assert.Contains(t, out.String(), "You fell on floor 1")
		_, err := c.Exec(ctx, "retry")
		require.NoError(t, err)
		assert.Equal(t, tower.StageBattle, s.State().Stage)
	default:
		t.Fatalf("battle did not end: %s", s.State().Stage)
	}
}

func TestConsole_ColorOutput(t *testing.T) {
	var out bytes.Buffer
	c, err := console.New(console.Config{
		Session: newSession(t, character.Archer),
		Rules:   ruleset.Default(),
		In:      strings.NewReader("status\nq\n"),
		Out:     &out,
		Tick:    time.Millisecond,
		Color:   true,
	})
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))
	assert.Contains(t, out.String(), console.BrightYellow+"Floor 1/8")
}

func TestConsole_CancelledContext(t *testing.T) {
	c, _ := newConsole(t, newSession(t, character.Mage), "status\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}

func TestNew_Errors(t *testing.T) {
	_, err := console.New(console.Config{})
	require.Error(t, err)
	for _, want := range []string{"session and rules", "input and output", "tick"} {
		assert.Contains(t, err.Error(), want)
	}
}

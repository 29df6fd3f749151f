package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
)

// scripted is a deterministic Source. Queued values are returned in order;
// once a queue is empty Intn returns 0 and Float64 returns 0.999 so no chance gate fires.
type scripted struct {
	ints   []int
	floats []float64
}

func (s *scripted) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		return n - 1
	}
	return v
}

func (s *scripted) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.999
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// never is a Source whose chance gates never fire and whose rolls are always the minimum.
func never() *scripted { return &scripted{} }

func player(t *testing.T, class character.Class) *character.Character {
	t.Helper()
	p, err := ruleset.Default().NewPlayer("Hero", class)
	require.NoError(t, err)
	return p
}

func enemy(t *testing.T, hp, mp int) *character.Character {
	t.Helper()
	e, err := character.Build("Goblin", character.ClassNone, "goblin",
		character.Stats{MaxHP: hp, MaxMP: mp, CritChance: 0.1, DodgeChance: 0.05})
	require.NoError(t, err)
	return e
}

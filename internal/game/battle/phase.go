package battle

import (
	"github.com/looplab/fsm"
)

// Phase is a battle phase. The four turn phases loop until one of the three
// terminal phases is reached.
type Phase string

const (
	PlayerTurn      Phase = "player_turn"
	PlayerAnimating Phase = "player_animating"
	EnemyTurn       Phase = "enemy_turn"
	EnemyAnimating  Phase = "enemy_animating"
	FloorCleared    Phase = "floor_cleared"
	RunComplete     Phase = "run_complete"
	Defeat          Phase = "defeat"
)

// Terminal reports whether p ends the battle.
func (p Phase) Terminal() bool {
	return p == FloorCleared || p == RunComplete || p == Defeat
}

// Outcome returns the battle result for a terminal phase, or OutcomeNone.
func (p Phase) Outcome() Outcome {
	switch p {
	case FloorCleared:
		return OutcomeFloorCleared
	case RunComplete:
		return OutcomeRunComplete
	case Defeat:
		return OutcomeDefeat
	}
	return OutcomeNone
}

// Outcome is how a battle ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeFloorCleared
	OutcomeRunComplete
	OutcomeDefeat
)

// String returns the outcome's phase name, or "none".
func (o Outcome) String() string {
	switch o {
	case OutcomeFloorCleared:
		return string(FloorCleared)
	case OutcomeRunComplete:
		return string(RunComplete)
	case OutcomeDefeat:
		return string(Defeat)
	}
	return "none"
}

// Victory reports whether the player won.
func (o Outcome) Victory() bool {
	return o == OutcomeFloorCleared || o == OutcomeRunComplete
}

// Transition names.
const (
	evChoose   = "choose"   // player picked an animated action
	evPass     = "pass"     // player's turn ended without an animation
	evResolve  = "resolve"  // player's animation finished
	evAct      = "act"      // enemy picked an action
	evYield    = "yield"    // enemy's turn is over
	evClear    = "clear"    // enemy died below the top floor
	evComplete = "complete" // enemy died on the top floor
	evFall     = "fall"     // player died
)

var live = []string{string(PlayerTurn), string(PlayerAnimating), string(EnemyTurn), string(EnemyAnimating)}

// newMachine builds the phase machine. Only the transitions listed here are legal.
func newMachine(callbacks fsm.Callbacks) *fsm.FSM {
	return fsm.NewFSM(
		string(PlayerTurn),
		fsm.Events{
			{Name: evChoose, Src: []string{string(PlayerTurn)}, Dst: string(PlayerAnimating)},
			{Name: evPass, Src: []string{string(PlayerTurn)}, Dst: string(EnemyTurn)},
			{Name: evResolve, Src: []string{string(PlayerAnimating)}, Dst: string(EnemyTurn)},
			{Name: evAct, Src: []string{string(EnemyTurn)}, Dst: string(EnemyAnimating)},
			{Name: evYield, Src: []string{string(EnemyTurn), string(EnemyAnimating)}, Dst: string(PlayerTurn)},
			{Name: evClear, Src: live, Dst: string(FloorCleared)},
			{Name: evComplete, Src: live, Dst: string(RunComplete)},
			{Name: evFall, Src: live, Dst: string(Defeat)},
		},
		callbacks,
	)
}

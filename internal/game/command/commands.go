// Package command provides the command registry, parser, and built-in
// commands for playing a run from a text terminal.
package command

import "github.com/cory-johannsen/tower/internal/game/ruleset"

// Categories for organizing commands.
const (
	CategoryCombat   = "combat"
	CategoryProgress = "progress"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to console handlers.
const (
	HandlerAction  = "action"
	HandlerStatus  = "status"
	HandlerActions = "actions"
	HandlerReward  = "reward"
	HandlerRestart = "restart"
	HandlerRetry   = "retry"
	HandlerHelp    = "help"
	HandlerQuit    = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (combat, progress, system).
	Category string
	// Handler selects the console handler.
	Handler string
	// Action is the battle action submitted by HandlerAction commands.
	Action ruleset.Action
}

// BuiltinCommands returns all built-in commands. The six action commands are
// numbered in action-bar order so "1".."6" press the matching button.
func BuiltinCommands() []Command {
	return []Command{
		// Combat commands
		{Name: "attack", Aliases: []string{"a", "1"}, Help: "Strike with your weapon", Category: CategoryCombat, Handler: HandlerAction, Action: ruleset.Attack},
		{Name: "heal", Aliases: []string{"h", "2"}, Help: "Spend MP to restore HP", Category: CategoryCombat, Handler: HandlerAction, Action: ruleset.Heal},
		{Name: "shield", Aliases: []string{"s", "3"}, Help: "Brace for the next blow and recover MP", Category: CategoryCombat, Handler: HandlerAction, Action: ruleset.Shield},
		{Name: "skill1", Aliases: []string{"4"}, Help: "Use your first class skill", Category: CategoryCombat, Handler: HandlerAction, Action: ruleset.Skill1},
		{Name: "ultimate", Aliases: []string{"u", "ult", "5"}, Help: "Unleash your ultimate once rage is full", Category: CategoryCombat, Handler: HandlerAction, Action: ruleset.Ultimate},
		{Name: "skill2", Aliases: []string{"6"}, Help: "Use your second class skill", Category: CategoryCombat, Handler: HandlerAction, Action: ruleset.Skill2},
		{Name: "actions", Aliases: []string{"bar"}, Help: "List your actions and their costs", Category: CategoryCombat, Handler: HandlerActions},
		{Name: "status", Aliases: []string{"st", "look", "l"}, Help: "Show both combatants", Category: CategoryCombat, Handler: HandlerStatus},

		// Progress commands
		{Name: "reward", Aliases: []string{"choose", "pick"}, Help: "Pick a reward after clearing a floor: reward <1-3|max_hp|max_mp|crit>", Category: CategoryProgress, Handler: HandlerReward},
		{Name: "restart", Aliases: nil, Help: "Climb again after reaching the top, keeping your rewards", Category: CategoryProgress, Handler: HandlerRestart},
		{Name: "retry", Aliases: nil, Help: "Start over after a defeat", Category: CategoryProgress, Handler: HandlerRetry},

		// System commands
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"q", "exit"}, Help: "Leave the tower", Category: CategorySystem, Handler: HandlerQuit},
	}
}

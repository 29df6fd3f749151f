package console

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/tower/internal/game/battle"
	"github.com/cory-johannsen/tower/internal/game/combat"
	"github.com/cory-johannsen/tower/internal/game/command"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
	"github.com/cory-johannsen/tower/internal/game/session"
	"github.com/cory-johannsen/tower/internal/game/tower"
)

const barWidth = 20

// Bar draws a fixed-width gauge such as "[#####.....]".
func Bar(cur, total int) string {
	filled := 0
	if total > 0 {
		filled = min(barWidth, max(0, cur)*barWidth/total)
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}

// RenderState formats the floor header and both combatants.
func RenderState(st session.State) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(Colorf(BrightYellow, "Floor %d/%d", st.Floor, st.Floors))
	if st.Cleared > 0 {
		b.WriteString(Colorf(Dim, "  (%d cleared)", st.Cleared))
	}
	b.WriteString("\n")
	b.WriteString(renderView(st.Battle.Player, true))
	b.WriteString(renderView(st.Battle.Enemy, false))
	if st.Battle.Message != "" {
		b.WriteString(Colorize(White, st.Battle.Message))
		b.WriteString("\n")
	}
	return b.String()
}

func renderView(v battle.View, player bool) string {
	var b strings.Builder
	nameColor := BrightRed
	label := v.Archetype
	if player {
		nameColor = BrightCyan
		label = v.Class.String()
	}
	b.WriteString(Colorf(nameColor, "%s (%s)", v.Name, label))
	if v.Defending {
		b.WriteString(Colorize(Blue, " [defending]"))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  HP   %s%s%s %d/%d\n", Green, Bar(v.HP, v.MaxHP), Reset, v.HP, v.MaxHP))
	b.WriteString(fmt.Sprintf("  MP   %s%s%s %d/%d\n", Blue, Bar(v.MP, v.MaxMP), Reset, v.MP, v.MaxMP))
	if v.MaxRage > 0 {
		b.WriteString(fmt.Sprintf("  RAGE %s%s%s %d/%d\n", Red, Bar(v.Rage, v.MaxRage), Reset, v.Rage, v.MaxRage))
	}
	if len(v.Statuses) > 0 {
		parts := make([]string, 0, len(v.Statuses))
		for _, s := range v.Statuses {
			color := Green
			if s.Harmful {
				color = Magenta
			}
			parts = append(parts, Colorf(color, "%s(%d)", s.Name, s.Turns))
		}
		b.WriteString("  " + strings.Join(parts, " ") + "\n")
	}
	return b.String()
}

// RenderEvent formats one battle event, or "" for events that only pace the battle.
func RenderEvent(ev combat.Event) string {
	switch ev.Kind {
	case combat.EventTurnEnded:
		return ""
	case combat.EventRage:
		return Colorf(Red, "%s gains %d rage", ev.Target, ev.Amount)
	case combat.EventMana:
		return Colorf(Blue, "%s recovers %d MP", ev.Target, ev.Amount)
	case combat.EventCrit:
		return Colorize(BrightYellow, ev.Text)
	case combat.EventDodge, combat.EventBlocked:
		return Colorize(Cyan, ev.Text)
	case combat.EventHeal:
		return Colorize(BrightGreen, ev.Text)
	case combat.EventBattleEnded:
		return Colorf(Bold, "*** %s ***", strings.ToUpper(strings.ReplaceAll(ev.Text, "_", " ")))
	}
	if ev.Text == "" {
		return fmt.Sprintf("%s: %s %d", ev.Kind, ev.Target, ev.Amount)
	}
	return ev.Text
}

// RenderActions formats the action bar with the key that presses each button.
func RenderActions(slots []ruleset.Slot, reg *command.Registry) string {
	var b strings.Builder
	for i, s := range slots {
		name := s.Action.String()
		if cmd, ok := reg.ForAction(s.Action); ok {
			name = cmd.Name
		}
		cost := s.Cost
		if cost == "" {
			cost = "free"
		}
		b.WriteString(fmt.Sprintf("  %s%d%s %-16s %-10s %s(%s)%s\n",
			BrightYellow, i+1, Reset, s.Label, name, Dim, cost, Reset))
	}
	return b.String()
}

// RenderRewards formats the reward menu.
func RenderRewards() string {
	var b strings.Builder
	b.WriteString(Colorize(BrightYellow, "Choose a reward:"))
	b.WriteString("\n")
	for i, rw := range tower.Rewards() {
		b.WriteString(fmt.Sprintf("  %s%d%s %s\n", BrightYellow, i+1, Reset, rw))
	}
	return b.String()
}

// RenderHelp lists every command by category.
func RenderHelp(reg *command.Registry) string {
	var b strings.Builder
	cats := reg.CommandsByCategory()
	for _, cat := range []string{command.CategoryCombat, command.CategoryProgress, command.CategorySystem} {
		b.WriteString(Colorize(Cyan, strings.ToUpper(cat[:1])+cat[1:]+":"))
		b.WriteString("\n")
		for _, cmd := range cats[cat] {
			names := cmd.Name
			if len(cmd.Aliases) > 0 {
				names += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			b.WriteString(fmt.Sprintf("  %-28s %s\n", names, cmd.Help))
		}
	}
	return b.String()
}

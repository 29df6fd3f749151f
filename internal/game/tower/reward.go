package tower

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/tower/internal/game/character"
)

// Reward is a stat boost chosen after clearing a floor.
type Reward int

const (
	RewardMaxHP Reward = iota + 1
	RewardMaxMP
	RewardCrit
)

// Reward magnitudes.
const (
	MaxHPBonus = 15
	MaxMPBonus = 10
	CritBonus  = 0.05
	CritCap    = 0.5
)

var rewardLabels = map[Reward]string{
	RewardMaxHP: "Max HP +15",
	RewardMaxMP: "Max MP +10",
	RewardCrit:  "+5% Crit Chance",
}

var rewardIDs = map[string]Reward{
	"max_hp": RewardMaxHP,
	"max_mp": RewardMaxMP,
	"crit":   RewardCrit,
}

// Rewards returns every reward in menu order.
func Rewards() []Reward { return []Reward{RewardMaxHP, RewardMaxMP, RewardCrit} }

// String returns the menu label.
func (r Reward) String() string {
	if l, ok := rewardLabels[r]; ok {
		return l
	}
	return fmt.Sprintf("Reward(%d)", int(r))
}

// Valid reports whether r is a known reward.
func (r Reward) Valid() bool {
	_, ok := rewardLabels[r]
	return ok
}

// ParseReward maps "max_hp", "max_mp" or "crit" to a Reward.
func ParseReward(s string) (Reward, error) {
	if r, ok := rewardIDs[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownReward, s)
}

// Apply grants r to c. Max HP and MP grow together with the current value.
func (r Reward) Apply(c *character.Character) error {
	switch r {
	case RewardMaxHP:
		c.MaxHP += MaxHPBonus
		c.HP += MaxHPBonus
	case RewardMaxMP:
		c.MaxMP += MaxMPBonus
		c.MP += MaxMPBonus
	case RewardCrit:
		c.CritChance = min(CritCap, c.CritChance+CritBonus)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownReward, int(r))
	}
	return nil
}

// Package catalog holds the static upgrade table and the level table.
// Everything here is a pure function of its inputs; no state.
package catalog

import (
	"math"

	"cointap/internal/domain"
)

// Upgrade ids referenced by the engine.
const (
	UpgradeTapPower       = "tap-power"
	UpgradeEnergyCapacity = "energy-capacity"
	UpgradeEnergyRegen    = "energy-regen"
	UpgradeAutoTap        = "auto-tap"
	UpgradeLuckyTap       = "lucky-tap"
	UpgradeCoinMagnet     = "coin-magnet"
)

// Upgrade is one catalog entry. Effect maps an owned level (1-based) to the
// absolute stat value it grants; effects override, they do not stack.
type Upgrade struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description"`
	Icon           string                  `json:"icon"`
	BaseCost       int64                   `json:"base_cost"`
	CostMultiplier float64                 `json:"cost_multiplier"`
	MaxLevel       int                     `json:"max_level"`
	Effect         func(level int) float64 `json:"-"`
}

// Upgrades is the full catalog, in display order.
var Upgrades = []Upgrade{
	{
		ID:             UpgradeTapPower,
		Name:           "Tap Power",
		Description:    "Increase coins per tap",
		Icon:           "👆",
		BaseCost:       100,
		CostMultiplier: 1.8,
		MaxLevel:       50,
		Effect:         func(level int) float64 { return float64(level + 1) },
	},
	{
		ID:             UpgradeEnergyCapacity,
		Name:           "Energy Tank",
		Description:    "Increase max energy",
		Icon:           "🔋",
		BaseCost:       200,
		CostMultiplier: 1.6,
		MaxLevel:       30,
		Effect:         func(level int) float64 { return float64(1000 + level*500) },
	},
	{
		ID:             UpgradeEnergyRegen,
		Name:           "Energy Regen",
		Description:    "Faster energy recovery",
		Icon:           "⚡",
		BaseCost:       500,
		CostMultiplier: 2.0,
		MaxLevel:       20,
		Effect:         func(level int) float64 { return 1 + float64(level)*0.5 },
	},
	{
		ID:             UpgradeAutoTap,
		Name:           "Auto Miner",
		Description:    "Earn coins automatically",
		Icon:           "🤖",
		BaseCost:       2000,
		CostMultiplier: 2.2,
		MaxLevel:       25,
		Effect:         func(level int) float64 { return float64(level * 2) },
	},
	{
		ID:             UpgradeLuckyTap,
		Name:           "Lucky Tap",
		Description:    "Chance of 5x coins per tap",
		Icon:           "🍀",
		BaseCost:       5000,
		CostMultiplier: 2.5,
		MaxLevel:       10,
		Effect:         func(level int) float64 { return float64(level * 5) },
	},
	{
		ID:             UpgradeCoinMagnet,
		Name:           "Coin Magnet",
		Description:    "Bonus coins every minute",
		Icon:           "🧲",
		BaseCost:       10000,
		CostMultiplier: 2.0,
		MaxLevel:       15,
		Effect:         func(level int) float64 { return float64(level * 10) },
	},
}

// Find returns the catalog entry for an id, nil if unknown.
func Find(id string) *Upgrade {
	for i := range Upgrades {
		if Upgrades[i].ID == id {
			return &Upgrades[i]
		}
	}
	return nil
}

// Cost is the price of the next level given the currently owned level.
// Only meaningful for currentLevel < MaxLevel; the caller checks max first.
func Cost(u *Upgrade, currentLevel int) int64 {
	return int64(math.Floor(float64(u.BaseCost) * math.Pow(u.CostMultiplier, float64(currentLevel))))
}

// Stats are the four upgrade-dependent player stats.
type Stats struct {
	TapPower        int64
	MaxEnergy       int64
	EnergyRegenRate float64
	AutoTapRate     int64
}

// RecomputeStats folds the effect of every owned upgrade over the initial
// defaults. Stats whose upgrade is unowned keep their defaults; owned ones
// are absolute overrides, so the fold is safe to run after any level change.
func RecomputeStats(owned []domain.OwnedUpgrade) Stats {
	stats := Stats{
		TapPower:        domain.InitialTapPower,
		MaxEnergy:       domain.InitialEnergy,
		EnergyRegenRate: domain.InitialRegenRate,
	}
	for _, o := range owned {
		def := Find(o.ID)
		if def == nil {
			continue
		}
		val := def.Effect(o.Level)
		switch def.ID {
		case UpgradeTapPower:
			stats.TapPower = int64(val)
		case UpgradeEnergyCapacity:
			stats.MaxEnergy = int64(val)
		case UpgradeEnergyRegen:
			stats.EnergyRegenRate = val
		case UpgradeAutoTap:
			stats.AutoTapRate = int64(val)
		}
	}
	return stats
}

// LuckyChance is the lucky-hit probability for an owned lucky-tap level:
// 5% per level, 0 if unowned.
func LuckyChance(luckyLevel int) float64 {
	return float64(luckyLevel) * 0.05
}

// CoinMagnetBonus is the per-minute bonus for an owned coin-magnet level.
func CoinMagnetBonus(magnetLevel int) int64 {
	return int64(magnetLevel) * 10
}

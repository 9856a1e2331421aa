package derive

import (
	"errors"
	"math"

	"github.com/emberfall/engine/internal/game/stat"
)

// ErrNoCalculator is returned when no formula is registered for a derived
// stat. Callers treat the stat's base value as 0; the error is informational,
// not fatal.
var ErrNoCalculator = errors.New("derive: no calculator registered for derived stat")

// Input carries everything a formula may read.
type Input struct {
	Primary map[stat.Primary]float64
	Level   int
	Config  Config
}

// Mod returns the ability modifier for primary p, treating a missing entry
// as the neutral score 10.
func (in Input) Mod(p stat.Primary) int {
	v, ok := in.Primary[p]
	if !ok {
		v = 10
	}
	return stat.AbilityModifier(v)
}

// Formula computes one derived stat's base value.
type Formula func(in Input) float64

// Calculator is the formula table keyed by derived stat. The four
// current-resource stats (HEALTH, MANA, STAMINA, RESOLVE) deliberately have
// no formula: they are stored values managed by the stats manager.
type Calculator struct {
	formulas map[stat.Derived]Formula
}

// NewCalculator returns a Calculator with the full standard formula table.
func NewCalculator() *Calculator {
	c := &Calculator{formulas: make(map[stat.Derived]Formula)}

	c.formulas[stat.MaxHealth] = resourceFormula(
		func(cfg Config) (float64, float64) { return cfg.BaseHP, cfg.HPPerLevel },
		stat.Constitution, stat.Constitution, 1,
	)
	c.formulas[stat.MaxMana] = resourceFormula(
		func(cfg Config) (float64, float64) { return cfg.BaseMana, cfg.ManaPerLevel },
		stat.Intelligence, stat.Wisdom, 0,
	)
	c.formulas[stat.MaxStamina] = resourceFormula(
		func(cfg Config) (float64, float64) { return cfg.BaseStamina, cfg.StaminaPerLevel },
		stat.Constitution, stat.Strength, 0,
	)
	c.formulas[stat.MaxResolve] = resourceFormula(
		func(cfg Config) (float64, float64) { return cfg.BaseResolve, cfg.ResolvePerLevel },
		stat.Will, stat.Insight, 0,
	)

	c.formulas[stat.MeleeAttack] = attackFormula(stat.Strength)
	c.formulas[stat.RangedAttack] = attackFormula(stat.Dexterity)
	c.formulas[stat.MagicAttack] = attackFormula(stat.Intelligence)

	c.formulas[stat.Defense] = func(in Input) float64 {
		dex := float64(in.Mod(stat.Dexterity))
		if dex > in.Config.MaxDexModDefense {
			dex = in.Config.MaxDexModDefense
		}
		return in.Config.BaseDefense + float64(in.Mod(stat.Constitution)) + dex
	}
	c.formulas[stat.MagicDefense] = func(in Input) float64 {
		ins := float64(in.Mod(stat.Insight))
		if ins > in.Config.MaxDexModDefense {
			ins = in.Config.MaxDexModDefense
		}
		return in.Config.BaseMagicDefense + float64(in.Mod(stat.Will)) + ins
	}

	c.formulas[stat.DamageReduction] = func(in Input) float64 {
		bonus := math.Floor(float64(in.Mod(stat.Constitution)) / 4)
		if bonus < 0 {
			bonus = 0
		}
		return in.Config.BaseDamageReduction + bonus
	}

	c.formulas[stat.Initiative] = func(in Input) float64 {
		return float64(in.Mod(stat.Dexterity))
	}

	c.formulas[stat.CarryCapacity] = func(in Input) float64 {
		str, ok := in.Primary[stat.Strength]
		if !ok {
			str = 10
		}
		return str * in.Config.CarryPerStrength
	}

	c.formulas[stat.Movement] = func(in Input) float64 {
		base := in.Config.BaseMovement
		dex := in.Mod(stat.Dexterity)
		if dex < 0 {
			// Negative agility slows directly, floored at the minimum speed.
			speed := base + float64(dex)
			if speed < in.Config.MinMovement {
				speed = in.Config.MinMovement
			}
			return speed
		}
		return base + math.Floor(math.Sqrt(float64(dex))*5)
	}

	return c
}

// resourceFormula builds a two-stat max-resource formula:
//
//	level 1:  base + primaryMod + secondaryMod
//	level n:  level 1 value + (perLevel + primaryMod) * (n-1)
//
// For MAX_HEALTH primary and secondary are both CON, so the level-1 value is
// base + CON_mod. The result is floored at floor.
func resourceFormula(constants func(Config) (base, perLevel float64), primary, secondary stat.Primary, floor float64) Formula {
	return func(in Input) float64 {
		base, perLevel := constants(in.Config)
		pMod := float64(in.Mod(primary))
		sMod := float64(in.Mod(secondary))

		v := base + pMod
		if primary != secondary {
			v += sMod
		}
		if in.Level > 1 {
			v += (perLevel + pMod) * float64(in.Level-1)
		}
		if v < floor {
			v = floor
		}
		return v
	}
}

// attackFormula builds an attack-bonus formula: stat_mod + ceil(level/4) + 1.
func attackFormula(p stat.Primary) Formula {
	return func(in Input) float64 {
		return float64(in.Mod(p)) + math.Ceil(float64(in.Level)/4) + 1
	}
}

// Calculate computes the base value for derived stat d.
//
// Postcondition: Returns (value, nil) when a formula exists, or
// (0, ErrNoCalculator) when none is registered, including for the four
// current-resource stats.
func (c *Calculator) Calculate(d stat.Derived, in Input) (float64, error) {
	f, ok := c.formulas[d]
	if !ok {
		return 0, ErrNoCalculator
	}
	return f(in), nil
}

// Has reports whether a formula is registered for d.
func (c *Calculator) Has(d stat.Derived) bool {
	_, ok := c.formulas[d]
	return ok
}

// Register installs or replaces the formula for d. Used by rules variants.
// Precondition: f must not be nil.
func (c *Calculator) Register(d stat.Derived, f Formula) {
	c.formulas[d] = f
}

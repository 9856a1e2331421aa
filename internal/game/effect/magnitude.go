// Package effect interprets data-driven effect atoms: small validated units
// of gameplay effect (damage, heal, buff, status, shield, ...) applied to
// resolved targets through their stats managers.
package effect

import (
	"errors"
	"fmt"

	"github.com/emberfall/engine/internal/game/dice"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/stats"
)

// ErrInvalidMagnitude flags a malformed magnitude spec. The owning atom is
// skipped; sibling atoms still apply.
var ErrInvalidMagnitude = errors.New("effect: invalid magnitude spec")

// Magnitude is a declarative amount: exactly one of Dice, Flat, or Stat
// must be set.
//
//	{dice: "2d6+1"}                      rolled per application
//	{flat: 4}                            constant
//	{stat: MELEE_ATTACK, coeff: 1.5,     caster-stat linear, clamped
//	 base: 2, min: 1, max: 12}
type Magnitude struct {
	Dice string   `yaml:"dice,omitempty"`
	Flat *float64 `yaml:"flat,omitempty"`

	Stat  *stat.ID `yaml:"stat,omitempty"`
	Coeff float64  `yaml:"coeff,omitempty"`
	Base  float64  `yaml:"base,omitempty"`
	Min   *float64 `yaml:"min,omitempty"`
	Max   *float64 `yaml:"max,omitempty"`
}

// Validate checks that exactly one magnitude form is selected and that the
// selected form is well formed.
func (m *Magnitude) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: missing", ErrInvalidMagnitude)
	}
	forms := 0
	if m.Dice != "" {
		forms++
		if _, err := dice.Parse(m.Dice); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMagnitude, err)
		}
	}
	if m.Flat != nil {
		forms++
	}
	if m.Stat != nil {
		forms++
		if m.Min != nil && m.Max != nil && *m.Min > *m.Max {
			return fmt.Errorf("%w: min %v > max %v", ErrInvalidMagnitude, *m.Min, *m.Max)
		}
	}
	if forms != 1 {
		return fmt.Errorf("%w: exactly one of dice, flat, stat required", ErrInvalidMagnitude)
	}
	return nil
}

// Resolve computes the magnitude's value. Dice magnitudes draw from roller;
// stat magnitudes read the caster's effective value.
//
// Precondition: caster is required for stat magnitudes, roller for dice.
func (m *Magnitude) Resolve(caster *stats.Manager, roller *dice.Roller) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	switch {
	case m.Dice != "":
		result, err := roller.RollExpr(m.Dice)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidMagnitude, err)
		}
		return float64(result.Total()), nil
	case m.Flat != nil:
		return *m.Flat, nil
	default:
		if caster == nil {
			return 0, fmt.Errorf("%w: stat magnitude without a caster", ErrInvalidMagnitude)
		}
		v, err := caster.EffectiveValue(*m.Stat)
		if err != nil {
			return 0, err
		}
		out := m.Base + m.Coeff*v
		if m.Min != nil && out < *m.Min {
			out = *m.Min
		}
		if m.Max != nil && out > *m.Max {
			out = *m.Max
		}
		return out, nil
	}
}

// Flat is a convenience constructor for constant magnitudes.
func Flat(v float64) *Magnitude { return &Magnitude{Flat: &v} }

// Package check resolves d20 skill checks: one stat value against a
// difficulty class, with advantage, disadvantage, and a situational bonus.
// Resolution is stateless; callers supply the stat value they care about.
package check

import (
	"github.com/emberfall/engine/internal/game/dice"
	"github.com/emberfall/engine/internal/game/stat"
)

// Result is the full audit trail of one resolved check.
type Result struct {
	// Roll is the d20 value that counted after advantage selection.
	Roll int
	// Rolls holds every raw die drawn, in order.
	Rolls []int
	// Modifier is the ability modifier derived from the checked stat.
	Modifier int
	// Situational is the caller-supplied circumstance bonus or penalty.
	Situational int
	// Total is Roll + Modifier + Situational.
	Total int
	DC    int
	// Success is true when the check passed. A natural 20 always passes
	// and a natural 1 always fails, regardless of Total and DC.
	Success  bool
	Critical bool
	Fumble   bool
}

// Resolve rolls one check of statValue against dc.
//
// The check uses the d20 ability-modifier convention floor((value-10)/2)
// for derived stats as well as primaries. Derived stats are not on the
// 3-18 ability scale, so a MELEE_ATTACK check gets a harsh modifier; that
// matches the established table behavior and GMs tune DCs accordingly.
//
// Precondition: src must be non-nil.
func Resolve(statValue float64, dc int, advantage, disadvantage bool, situational int, src dice.Source) Result {
	roll := dice.RollD20(src, advantage, disadvantage)
	mod := stat.AbilityModifier(statValue)

	r := Result{
		Roll:        roll.Used,
		Rolls:       roll.Rolls,
		Modifier:    mod,
		Situational: situational,
		Total:       roll.Used + mod + situational,
		DC:          dc,
		Critical:    roll.Used == 20,
		Fumble:      roll.Used == 1,
	}
	switch {
	case r.Critical:
		r.Success = true
	case r.Fumble:
		r.Success = false
	default:
		r.Success = r.Total >= dc
	}
	return r
}

// SuccessProbability returns the exact chance that Resolve succeeds for the
// given parameters, computed over the closed d20 outcome space rather than
// by sampling.
//
// Postcondition: The result is in [1/400, 399/400]: a natural 20 always
// wins and a natural 1 always loses, so no check is certain either way.
func SuccessProbability(statValue float64, dc int, advantage, disadvantage bool, situational int) float64 {
	mod := stat.AbilityModifier(statValue)
	p := 0.0
	for face := 1; face <= 20; face++ {
		if succeeds(face, mod, situational, dc) {
			p += faceProbability(face, advantage, disadvantage)
		}
	}
	return p
}

func succeeds(face, mod, situational, dc int) bool {
	switch face {
	case 20:
		return true
	case 1:
		return false
	}
	return face+mod+situational >= dc
}

// faceProbability is the chance that advantage selection lands on face.
// With two dice, P(max = f) = (2f-1)/400 and P(min = f) = (41-2f)/400.
func faceProbability(face int, advantage, disadvantage bool) float64 {
	switch {
	case advantage == disadvantage:
		return 1.0 / 20
	case advantage:
		return float64(2*face-1) / 400
	default:
		return float64(41-2*face) / 400
	}
}

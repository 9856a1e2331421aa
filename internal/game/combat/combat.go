// Package combat resolves attack and defend actions against characters'
// stats managers. The resolver owns no stat state: targets are transient
// handles passed in per action, and every mutation goes through the target's
// manager.
package combat

import (
	"errors"
	"fmt"

	"github.com/emberfall/engine/internal/game/dice"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/stats"
)

// ErrTargetNotFound is returned when an action names a target id the roster
// cannot resolve.
var ErrTargetNotFound = errors.New("combat: target not found")

// Target is a transient combat handle: an identity plus the stats manager
// owning the character's state.
type Target struct {
	ID    string
	Name  string
	Side  string
	Stats *stats.Manager
}

// Roster resolves target ids for one encounter, in join order.
type Roster []*Target

// Find resolves a target id.
// Postcondition: Returns ErrTargetNotFound when no target has the id.
func (r Roster) Find(id string) (*Target, error) {
	for _, t := range r {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, id)
}

// ActiveOnSide counts undefeated targets on a side. Encounter-level victory
// and defeat decisions belong to the caller; this is the count they need.
func (r Roster) ActiveOnSide(side string) int {
	n := 0
	for _, t := range r {
		if t.Side != side || t.Stats == nil {
			continue
		}
		if hp, err := t.Stats.CurrentResource(stat.Health); err == nil && hp > 0 {
			n++
		}
	}
	return n
}

// AttackAction describes one attack to resolve.
type AttackAction struct {
	Attacker *Target
	Defender *Target
	// AttackStat selects the attack bonus: MELEE_ATTACK, RANGED_ATTACK,
	// or MAGIC_ATTACK.
	AttackStat stat.Derived
	// DamageDice is a dice expression, e.g. "1d8".
	DamageDice string
	DamageType string

	Advantage    bool
	Disadvantage bool
}

// AttackResult is the stage-by-stage audit trail of one resolved attack.
// Narrative layers format it; nothing here is presentation text.
type AttackResult struct {
	Hit      bool
	Critical bool
	Fumble   bool

	Roll        dice.D20Roll
	AttackBonus float64
	AttackTotal float64
	Defense     float64

	// DamageRolls holds one entry per damage dice roll: one for a normal
	// hit, two for a critical.
	DamageRolls     []dice.RollResult
	RawDamage       float64
	AfterMitigation float64
	ResistPercent   float64
	FinalDamage     float64

	HealthRemaining float64
	Defeated        bool

	// RidersApplied names the on-hit statuses the damage type inflicted.
	RidersApplied []string
}

// DefendResult records one resolved defend action.
type DefendResult struct {
	// Bonus is the DEFENSE increase granted for the turn.
	Bonus    float64
	EffectID string
}

// IsPhysical reports whether a damage type is mitigated by flat damage
// reduction rather than magic defense.
func IsPhysical(damageType string) bool {
	switch damageType {
	case "physical", "slashing", "piercing", "bludgeoning":
		return true
	}
	return false
}

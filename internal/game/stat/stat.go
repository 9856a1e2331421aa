// Package stat defines the closed registry of character statistics for the
// Emberfall rules engine: the eight primary abilities, the derived stats
// computed from them, and the tagged identifier type used everywhere a stat
// is referenced.
package stat

import (
	"fmt"
	"math"
)

// Primary identifies one of the eight primary ability scores.
type Primary int

const (
	Strength Primary = iota
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma
	Will
	Insight
)

// Primaries lists every Primary in declaration order.
var Primaries = []Primary{
	Strength, Dexterity, Constitution, Intelligence,
	Wisdom, Charisma, Will, Insight,
}

// String returns the canonical serialized name for the ability.
// Postcondition: Returns one of STR, DEX, CON, INT, WIS, CHA, WIL, INS,
// or "UNKNOWN" for out-of-range values.
func (p Primary) String() string {
	switch p {
	case Strength:
		return "STR"
	case Dexterity:
		return "DEX"
	case Constitution:
		return "CON"
	case Intelligence:
		return "INT"
	case Wisdom:
		return "WIS"
	case Charisma:
		return "CHA"
	case Will:
		return "WIL"
	case Insight:
		return "INS"
	default:
		return "UNKNOWN"
	}
}

// ParsePrimary maps a canonical name (e.g. "STR") back to a Primary.
// Postcondition: Returns a valid Primary or a descriptive error.
func ParsePrimary(name string) (Primary, error) {
	for _, p := range Primaries {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("stat: unknown primary stat %q", name)
}

// Derived identifies a stat computed from primary stats, level, and config.
// The four current-resource kinds (Health, Mana, Stamina, Resolve) are stored
// values rather than computed ones; see the pairing table in pairs.go.
type Derived int

const (
	Health Derived = iota
	MaxHealth
	Mana
	MaxMana
	Stamina
	MaxStamina
	Resolve
	MaxResolve
	MeleeAttack
	RangedAttack
	MagicAttack
	Defense
	MagicDefense
	DamageReduction
	Initiative
	CarryCapacity
	Movement
)

// DerivedStats lists every Derived in declaration order.
var DerivedStats = []Derived{
	Health, MaxHealth, Mana, MaxMana, Stamina, MaxStamina,
	Resolve, MaxResolve, MeleeAttack, RangedAttack, MagicAttack,
	Defense, MagicDefense, DamageReduction, Initiative,
	CarryCapacity, Movement,
}

var derivedNames = map[Derived]string{
	Health:          "HEALTH",
	MaxHealth:       "MAX_HEALTH",
	Mana:            "MANA",
	MaxMana:         "MAX_MANA",
	Stamina:         "STAMINA",
	MaxStamina:      "MAX_STAMINA",
	Resolve:         "RESOLVE",
	MaxResolve:      "MAX_RESOLVE",
	MeleeAttack:     "MELEE_ATTACK",
	RangedAttack:    "RANGED_ATTACK",
	MagicAttack:     "MAGIC_ATTACK",
	Defense:         "DEFENSE",
	MagicDefense:    "MAGIC_DEFENSE",
	DamageReduction: "DAMAGE_REDUCTION",
	Initiative:      "INITIATIVE",
	CarryCapacity:   "CARRY_CAPACITY",
	Movement:        "MOVEMENT",
}

// String returns the canonical serialized name for the derived stat.
func (d Derived) String() string {
	if n, ok := derivedNames[d]; ok {
		return n
	}
	return "UNKNOWN"
}

// ParseDerived maps a canonical name (e.g. "MAX_HEALTH") back to a Derived.
// Postcondition: Returns a valid Derived or a descriptive error.
func ParseDerived(name string) (Derived, error) {
	for d, n := range derivedNames {
		if n == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("stat: unknown derived stat %q", name)
}

// Kind distinguishes primary-stat identifiers from derived-stat identifiers.
type Kind int

const (
	KindPrimary Kind = iota
	KindDerived
)

// ID is the tagged identifier for any stat. Exactly one of the payload
// fields is meaningful, selected by Kind. ID is comparable and is used as a
// map key throughout the engine.
type ID struct {
	Kind    Kind
	Primary Primary
	Derived Derived
}

// PrimaryID wraps a Primary as an ID.
func PrimaryID(p Primary) ID { return ID{Kind: KindPrimary, Primary: p} }

// DerivedID wraps a Derived as an ID.
func DerivedID(d Derived) ID { return ID{Kind: KindDerived, Derived: d} }

// IsPrimary reports whether the identifier names a primary ability.
func (id ID) IsPrimary() bool { return id.Kind == KindPrimary }

// String returns the canonical serialized name of the identified stat.
func (id ID) String() string {
	if id.Kind == KindPrimary {
		return id.Primary.String()
	}
	return id.Derived.String()
}

// ParseID maps a canonical name back to an ID, trying primary names first.
// Postcondition: Returns a valid ID or a descriptive error.
func ParseID(name string) (ID, error) {
	if p, err := ParsePrimary(name); err == nil {
		return PrimaryID(p), nil
	}
	if d, err := ParseDerived(name); err == nil {
		return DerivedID(d), nil
	}
	return ID{}, fmt.Errorf("stat: unknown stat %q", name)
}

// AbilityModifier returns the d20-style modifier for an ability score:
// floor((value - 10) / 2). Applies to primary scores on the 3-18 scale;
// callers that pass derived values get the same arithmetic (see the skill
// check resolver for why that is deliberate).
func AbilityModifier(value float64) int {
	return int(math.Floor((value - 10) / 2))
}

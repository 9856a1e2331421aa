package stat

import (
	"fmt"
	"strings"
)

// aliases maps normalized free-form stat names to canonical identifiers.
// Canonical names themselves resolve through ParseID before this table is
// consulted, so the table only carries the informal spellings.
var aliases = map[string]ID{
	"strength":     PrimaryID(Strength),
	"dexterity":    PrimaryID(Dexterity),
	"constitution": PrimaryID(Constitution),
	"intelligence": PrimaryID(Intelligence),
	"wisdom":       PrimaryID(Wisdom),
	"charisma":     PrimaryID(Charisma),
	"will":         PrimaryID(Will),
	"willpower":    PrimaryID(Will),
	"insight":      PrimaryID(Insight),

	"hp":          DerivedID(Health),
	"health":      DerivedID(Health),
	"max_hp":      DerivedID(MaxHealth),
	"max_health":  DerivedID(MaxHealth),
	"mp":          DerivedID(Mana),
	"mana":        DerivedID(Mana),
	"max_mp":      DerivedID(MaxMana),
	"max_mana":    DerivedID(MaxMana),
	"sp":          DerivedID(Stamina),
	"stamina":     DerivedID(Stamina),
	"max_stamina": DerivedID(MaxStamina),
	"resolve":     DerivedID(Resolve),
	"max_resolve": DerivedID(MaxResolve),

	"melee":            DerivedID(MeleeAttack),
	"melee_attack":     DerivedID(MeleeAttack),
	"ranged":           DerivedID(RangedAttack),
	"ranged_attack":    DerivedID(RangedAttack),
	"magic":            DerivedID(MagicAttack),
	"magic_attack":     DerivedID(MagicAttack),
	"spell_attack":     DerivedID(MagicAttack),
	"defense":          DerivedID(Defense),
	"defence":          DerivedID(Defense),
	"ac":               DerivedID(Defense),
	"armor":            DerivedID(Defense),
	"armor_class":      DerivedID(Defense),
	"magic_defense":    DerivedID(MagicDefense),
	"magic_defence":    DerivedID(MagicDefense),
	"spell_resistance": DerivedID(MagicDefense),
	"dr":               DerivedID(DamageReduction),
	"damage_reduction": DerivedID(DamageReduction),
	"initiative":       DerivedID(Initiative),
	"carry_capacity":   DerivedID(CarryCapacity),
	"carrying":         DerivedID(CarryCapacity),
	"movement":         DerivedID(Movement),
	"speed":            DerivedID(Movement),
}

// normalize lowercases s and collapses spaces and dashes to underscores so
// that "Max Health", "max-health", and "MAX_HEALTH" all match.
func normalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// ResolveName maps a free-form stat name to a canonical ID. Canonical names
// (case-insensitive) and the alias table are both accepted.
//
// Postcondition: Returns a valid ID or a descriptive error; never guesses.
func ResolveName(name string) (ID, error) {
	norm := normalize(name)
	if id, err := ParseID(strings.ToUpper(norm)); err == nil {
		return id, nil
	}
	if id, ok := aliases[norm]; ok {
		return id, nil
	}
	return ID{}, fmt.Errorf("stat: cannot resolve stat name %q", name)
}

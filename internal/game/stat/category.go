package stat

// Category groups stats for the character-sheet snapshot interface.
type Category int

const (
	CategoryPrimary Category = iota
	CategoryResources
	CategoryCombat
	CategoryUtility
)

// String returns the lower-case category label used in snapshots.
func (c Category) String() string {
	switch c {
	case CategoryPrimary:
		return "primary"
	case CategoryResources:
		return "resources"
	case CategoryCombat:
		return "combat"
	case CategoryUtility:
		return "utility"
	default:
		return "other"
	}
}

// CategoryOf classifies an identifier for snapshot grouping.
func CategoryOf(id ID) Category {
	if id.Kind == KindPrimary {
		return CategoryPrimary
	}
	switch id.Derived {
	case Health, MaxHealth, Mana, MaxMana, Stamina, MaxStamina, Resolve, MaxResolve:
		return CategoryResources
	case MeleeAttack, RangedAttack, MagicAttack, Defense, MagicDefense, DamageReduction, Initiative:
		return CategoryCombat
	default:
		return CategoryUtility
	}
}

var primaryDisplay = map[Primary]string{
	Strength:     "Strength",
	Dexterity:    "Dexterity",
	Constitution: "Constitution",
	Intelligence: "Intelligence",
	Wisdom:       "Wisdom",
	Charisma:     "Charisma",
	Will:         "Will",
	Insight:      "Insight",
}

var derivedDisplay = map[Derived]string{
	Health:          "Health",
	MaxHealth:       "Max Health",
	Mana:            "Mana",
	MaxMana:         "Max Mana",
	Stamina:         "Stamina",
	MaxStamina:      "Max Stamina",
	Resolve:         "Resolve",
	MaxResolve:      "Max Resolve",
	MeleeAttack:     "Melee Attack",
	RangedAttack:    "Ranged Attack",
	MagicAttack:     "Magic Attack",
	Defense:         "Defense",
	MagicDefense:    "Magic Defense",
	DamageReduction: "Damage Reduction",
	Initiative:      "Initiative",
	CarryCapacity:   "Carry Capacity",
	Movement:        "Movement",
}

var descriptions = map[ID]string{
	PrimaryID(Strength):     "Raw physical power; drives melee attacks and carrying capacity.",
	PrimaryID(Dexterity):    "Agility and reflexes; drives ranged attacks, defense, and movement.",
	PrimaryID(Constitution): "Endurance and toughness; drives health, stamina, and damage reduction.",
	PrimaryID(Intelligence): "Reasoning and memory; drives magic attacks and mana.",
	PrimaryID(Wisdom):       "Perception and judgement; contributes to mana.",
	PrimaryID(Charisma):     "Force of personality.",
	PrimaryID(Will):         "Mental fortitude; drives resolve.",
	PrimaryID(Insight):      "Intuition; contributes to resolve.",

	DerivedID(Health):          "Current hit points.",
	DerivedID(MaxHealth):       "Maximum hit points.",
	DerivedID(Mana):            "Current magical energy.",
	DerivedID(MaxMana):         "Maximum magical energy.",
	DerivedID(Stamina):         "Current physical exertion pool.",
	DerivedID(MaxStamina):      "Maximum physical exertion pool.",
	DerivedID(Resolve):         "Current mental composure.",
	DerivedID(MaxResolve):      "Maximum mental composure.",
	DerivedID(MeleeAttack):     "Bonus to melee attack rolls.",
	DerivedID(RangedAttack):    "Bonus to ranged attack rolls.",
	DerivedID(MagicAttack):     "Bonus to magic attack rolls.",
	DerivedID(Defense):         "Difficulty to land a physical hit.",
	DerivedID(MagicDefense):    "Flat reduction applied to magical damage.",
	DerivedID(DamageReduction): "Flat reduction applied to physical damage.",
	DerivedID(Initiative):      "Turn-order bonus.",
	DerivedID(CarryCapacity):   "Weight carried without penalty.",
	DerivedID(Movement):        "Distance moved per turn.",
}

// DisplayName returns the human-readable label for id.
func DisplayName(id ID) string {
	if id.Kind == KindPrimary {
		if n, ok := primaryDisplay[id.Primary]; ok {
			return n
		}
	} else if n, ok := derivedDisplay[id.Derived]; ok {
		return n
	}
	return id.String()
}

// Description returns the one-line description for id, or "" if none exists.
func Description(id ID) string {
	return descriptions[id]
}

// Package derive computes derived stat base values from primary stats,
// level, and tunable configuration. Formulas are pure functions; the package
// holds no character state.
package derive

// Config holds the tunable constants consumed by the formula table. Values
// come from the rules section of the application configuration; DefaultConfig
// mirrors the shipped defaults.
type Config struct {
	BaseHP     float64
	HPPerLevel float64

	BaseMana     float64
	ManaPerLevel float64

	BaseStamina     float64
	StaminaPerLevel float64

	BaseResolve     float64
	ResolvePerLevel float64

	BaseDefense      float64
	MaxDexModDefense float64
	BaseMagicDefense float64

	BaseDamageReduction float64

	BaseMovement float64
	MinMovement  float64

	CarryPerStrength float64
}

// DefaultConfig returns the shipped rules constants.
func DefaultConfig() Config {
	return Config{
		BaseHP:     10,
		HPPerLevel: 6,

		BaseMana:     10,
		ManaPerLevel: 4,

		BaseStamina:     10,
		StaminaPerLevel: 4,

		BaseResolve:     10,
		ResolvePerLevel: 4,

		BaseDefense:      10,
		MaxDexModDefense: 5,
		BaseMagicDefense: 10,

		BaseDamageReduction: 0,

		BaseMovement: 30,
		MinMovement:  15,

		CarryPerStrength: 15,
	}
}

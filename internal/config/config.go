// Package config provides Viper-based configuration loading for the engine.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/emberfall/engine/internal/game/combat"
	"github.com/emberfall/engine/internal/game/derive"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// RulesConfig holds the tunable constants behind derived stat formulas.
// Every field maps onto derive.Config.
type RulesConfig struct {
	BaseHealth     float64 `mapstructure:"base_health"`
	HealthPerLevel float64 `mapstructure:"health_per_level"`

	BaseMana     float64 `mapstructure:"base_mana"`
	ManaPerLevel float64 `mapstructure:"mana_per_level"`

	BaseStamina     float64 `mapstructure:"base_stamina"`
	StaminaPerLevel float64 `mapstructure:"stamina_per_level"`

	BaseResolve     float64 `mapstructure:"base_resolve"`
	ResolvePerLevel float64 `mapstructure:"resolve_per_level"`

	BaseDefense      float64 `mapstructure:"base_defense"`
	MaxDexModDefense float64 `mapstructure:"max_dex_mod_defense"`
	BaseMagicDefense float64 `mapstructure:"base_magic_defense"`

	BaseDamageReduction float64 `mapstructure:"base_damage_reduction"`

	BaseMovement float64 `mapstructure:"base_movement"`
	MinMovement  float64 `mapstructure:"min_movement"`

	CarryPerStrength float64 `mapstructure:"carry_per_strength"`
}

// DeriveConfig converts the rules section into the calculator's config.
func (r RulesConfig) DeriveConfig() derive.Config {
	return derive.Config{
		BaseHP:              r.BaseHealth,
		HPPerLevel:          r.HealthPerLevel,
		BaseMana:            r.BaseMana,
		ManaPerLevel:        r.ManaPerLevel,
		BaseStamina:         r.BaseStamina,
		StaminaPerLevel:     r.StaminaPerLevel,
		BaseResolve:         r.BaseResolve,
		ResolvePerLevel:     r.ResolvePerLevel,
		BaseDefense:         r.BaseDefense,
		MaxDexModDefense:    r.MaxDexModDefense,
		BaseMagicDefense:    r.BaseMagicDefense,
		BaseDamageReduction: r.BaseDamageReduction,
		BaseMovement:        r.BaseMovement,
		MinMovement:         r.MinMovement,
		CarryPerStrength:    r.CarryPerStrength,
	}
}

// CombatConfig holds combat resolution settings.
type CombatConfig struct {
	// DefendBaseBonus is the flat DEFENSE bonus granted by a defend action.
	DefendBaseBonus float64 `mapstructure:"defend_base_bonus"`
}

// ResolverConfig converts the combat section into the resolver's config.
func (c CombatConfig) ResolverConfig() combat.Config {
	return combat.Config{DefendBaseBonus: c.DefendBaseBonus}
}

// ScriptingConfig holds Lua hook VM settings.
type ScriptingConfig struct {
	// InstructionLimit is the maximum number of Lua opcodes one hook
	// execution may spend before being cut off.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// ContentConfig holds paths to data-driven game content.
type ContentConfig struct {
	// StatusDir is the directory of status effect definition YAML files.
	StatusDir string `mapstructure:"status_dir"`
	// RiderTable is the path to the weapon rider table YAML file.
	RiderTable string `mapstructure:"rider_table"`
	// ScriptsDir is the directory of Lua hook scripts.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Content   ContentConfig   `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Combat.DefendBaseBonus < 0 {
		errs = append(errs, fmt.Sprintf("combat.defend_base_bonus must be >= 0, got %g", c.Combat.DefendBaseBonus))
	}
	if c.Scripting.InstructionLimit < 1 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 1, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateRules(r RulesConfig) error {
	var errs []string
	if r.HealthPerLevel <= 0 {
		errs = append(errs, fmt.Sprintf("rules.health_per_level must be > 0, got %g", r.HealthPerLevel))
	}
	if r.MaxDexModDefense < 0 {
		errs = append(errs, fmt.Sprintf("rules.max_dex_mod_defense must be >= 0, got %g", r.MaxDexModDefense))
	}
	if r.MinMovement < 0 {
		errs = append(errs, fmt.Sprintf("rules.min_movement must be >= 0, got %g", r.MinMovement))
	}
	if r.MinMovement > r.BaseMovement {
		errs = append(errs, "rules.min_movement must not exceed rules.base_movement")
	}
	if r.CarryPerStrength <= 0 {
		errs = append(errs, fmt.Sprintf("rules.carry_per_strength must be > 0, got %g", r.CarryPerStrength))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with EMBERFALL_ prefix
	v.SetEnvPrefix("EMBERFALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied and no file read.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshal of defaults cannot fail; they are set from typed literals.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	rules := derive.DefaultConfig()
	v.SetDefault("rules.base_health", rules.BaseHP)
	v.SetDefault("rules.health_per_level", rules.HPPerLevel)
	v.SetDefault("rules.base_mana", rules.BaseMana)
	v.SetDefault("rules.mana_per_level", rules.ManaPerLevel)
	v.SetDefault("rules.base_stamina", rules.BaseStamina)
	v.SetDefault("rules.stamina_per_level", rules.StaminaPerLevel)
	v.SetDefault("rules.base_resolve", rules.BaseResolve)
	v.SetDefault("rules.resolve_per_level", rules.ResolvePerLevel)
	v.SetDefault("rules.base_defense", rules.BaseDefense)
	v.SetDefault("rules.max_dex_mod_defense", rules.MaxDexModDefense)
	v.SetDefault("rules.base_magic_defense", rules.BaseMagicDefense)
	v.SetDefault("rules.base_damage_reduction", rules.BaseDamageReduction)
	v.SetDefault("rules.base_movement", rules.BaseMovement)
	v.SetDefault("rules.min_movement", rules.MinMovement)
	v.SetDefault("rules.carry_per_strength", rules.CarryPerStrength)

	v.SetDefault("combat.defend_base_bonus", combat.DefaultConfig().DefendBaseBonus)

	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("content.status_dir", "content/status")
	v.SetDefault("content.rider_table", "content/riders.yaml")
	v.SetDefault("content.scripts_dir", "content/scripts")
}

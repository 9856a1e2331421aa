package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/emberfall/engine/internal/game/derive"
)

func validConfig() Config {
	return Default()
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultRulesMatchShippedConstants(t *testing.T) {
	cfg := Default()
	assert.Equal(t, derive.DefaultConfig(), cfg.Rules.DeriveConfig())
}

func TestDefaultCombatAndScripting(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2.0, cfg.Combat.ResolverConfig().DefendBaseBonus)
	assert.Equal(t, 100000, cfg.Scripting.InstructionLimit)
	assert.Equal(t, "content/status", cfg.Content.StatusDir)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
rules:
  base_health: 12
  health_per_level: 8
combat:
  defend_base_bonus: 3
content:
  status_dir: data/status
  scripts_dir: data/scripts
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 12.0, cfg.Rules.BaseHealth)
	assert.Equal(t, 8.0, cfg.Rules.HealthPerLevel)
	assert.Equal(t, 3.0, cfg.Combat.DefendBaseBonus)
	assert.Equal(t, "data/status", cfg.Content.StatusDir)
	// Untouched sections keep their defaults.
	assert.Equal(t, 30.0, cfg.Rules.BaseMovement)
	assert.Equal(t, "content/riders.yaml", cfg.Content.RiderTable)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
rules:
  health_per_level: 0
`), 0644)
	require.NoError(t, err)

	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateRulesHealthPerLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Rules.HealthPerLevel = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRulesMovementOrdering(t *testing.T) {
	cfg := validConfig()
	cfg.Rules.MinMovement = cfg.Rules.BaseMovement + 1
	assert.Error(t, cfg.Validate())
}

func TestValidateCombatDefendBonus(t *testing.T) {
	cfg := validConfig()
	cfg.Combat.DefendBaseBonus = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateScriptingInstructionLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Scripting.InstructionLimit = 0
	assert.Error(t, cfg.Validate())
}

// Property-based tests

func TestPropertyValidRulesAlwaysAccepted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Rules.HealthPerLevel = rapid.Float64Range(0.5, 50).Draw(t, "hp_per_level")
		cfg.Rules.BaseMovement = rapid.Float64Range(10, 120).Draw(t, "base_movement")
		cfg.Rules.MinMovement = rapid.Float64Range(0, cfg.Rules.BaseMovement).Draw(t, "min_movement")
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid rules rejected: %v", err)
		}
	})
}

func TestPropertyMinMovementNeverExceedsBase(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		cfg.Rules.BaseMovement = rapid.Float64Range(10, 120).Draw(t, "base_movement")
		cfg.Rules.MinMovement = cfg.Rules.BaseMovement + rapid.Float64Range(1, 100).Draw(t, "excess")
		if err := cfg.Validate(); err == nil {
			t.Fatalf("min_movement=%g > base_movement=%g accepted",
				cfg.Rules.MinMovement, cfg.Rules.BaseMovement)
		}
	})
}

func TestPropertyDeriveConfigRoundTripsEveryField(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := RulesConfig{
			BaseHealth:          rapid.Float64Range(1, 100).Draw(t, "base_health"),
			HealthPerLevel:      rapid.Float64Range(1, 20).Draw(t, "health_per_level"),
			BaseMana:            rapid.Float64Range(0, 100).Draw(t, "base_mana"),
			ManaPerLevel:        rapid.Float64Range(0, 20).Draw(t, "mana_per_level"),
			BaseStamina:         rapid.Float64Range(0, 100).Draw(t, "base_stamina"),
			StaminaPerLevel:     rapid.Float64Range(0, 20).Draw(t, "stamina_per_level"),
			BaseResolve:         rapid.Float64Range(0, 100).Draw(t, "base_resolve"),
			ResolvePerLevel:     rapid.Float64Range(0, 20).Draw(t, "resolve_per_level"),
			BaseDefense:         rapid.Float64Range(0, 30).Draw(t, "base_defense"),
			MaxDexModDefense:    rapid.Float64Range(0, 10).Draw(t, "max_dex_mod"),
			BaseMagicDefense:    rapid.Float64Range(0, 30).Draw(t, "base_magic_defense"),
			BaseDamageReduction: rapid.Float64Range(0, 10).Draw(t, "base_dr"),
			BaseMovement:        rapid.Float64Range(15, 120).Draw(t, "base_movement"),
			MinMovement:         rapid.Float64Range(0, 15).Draw(t, "min_movement"),
			CarryPerStrength:    rapid.Float64Range(1, 50).Draw(t, "carry_per_strength"),
		}
		d := r.DeriveConfig()
		assert.Equal(t, r.BaseHealth, d.BaseHP)
		assert.Equal(t, r.HealthPerLevel, d.HPPerLevel)
		assert.Equal(t, r.BaseDamageReduction, d.BaseDamageReduction)
		assert.Equal(t, r.CarryPerStrength, d.CarryPerStrength)
	})
}

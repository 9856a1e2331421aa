package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfall/engine/internal/game/combat"
	"github.com/emberfall/engine/internal/game/derive"
	"github.com/emberfall/engine/internal/game/dice"
	"github.com/emberfall/engine/internal/game/modifier"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/stats"
	"github.com/emberfall/engine/internal/game/status"
)

// script replays fixed die faces; the face is reduced into whatever range
// the roll asks for, so a scripted 15 yields 15 on a d20.
type script struct {
	faces []int
	i     int
}

func (s *script) Intn(n int) int {
	v := s.faces[s.i]
	s.i++
	return (v - 1) % n
}

func target(t *testing.T, id, side string) *combat.Target {
	t.Helper()
	return &combat.Target{
		ID:    id,
		Name:  id,
		Side:  side,
		Stats: stats.NewManager(derive.DefaultConfig(), nil),
	}
}

func resolver(faces ...int) *combat.Resolver {
	roller := dice.NewLoggedRoller(&script{faces: faces}, nil)
	return combat.NewResolver(roller, nil, nil, combat.DefaultConfig(), nil)
}

func addFlat(m *stats.Manager, d stat.Derived, v float64) {
	m.AddModifier(&modifier.Modifier{
		Stat: stat.DerivedID(d), Value: v,
		Source: modifier.SourceEquipment, SourceName: "test_gear",
		Kind: modifier.SemiPermanent, Stacks: true,
	})
}

func TestResolveAttackHit(t *testing.T) {
	attacker := target(t, "hero", "party")
	defender := target(t, "bandit", "foes")
	addFlat(defender.Stats, stat.Defense, 4)          // DEFENSE 14
	addFlat(defender.Stats, stat.DamageReduction, 2)  // DR 2

	// d20 = 15, then 1d8 = 5.
	res, err := resolver(15, 5).ResolveAttack(combat.AttackAction{
		Attacker:   attacker,
		Defender:   defender,
		AttackStat: stat.MeleeAttack, // +2 at STR 10, level 1
		DamageDice: "1d8",
		DamageType: "slashing",
	})
	require.NoError(t, err)

	assert.True(t, res.Hit)
	assert.False(t, res.Critical)
	assert.Equal(t, 15, res.Roll.Used)
	assert.Equal(t, 17.0, res.AttackTotal)
	assert.Equal(t, 14.0, res.Defense)
	assert.Equal(t, 7.0, res.RawDamage, "5 rolled + 2 attack bonus")
	assert.Equal(t, 5.0, res.AfterMitigation, "DR 2 comes off the top")
	assert.Equal(t, 5.0, res.FinalDamage)
	assert.Equal(t, 5.0, res.HealthRemaining)
	assert.False(t, res.Defeated)

	hp, err := defender.Stats.CurrentResource(stat.Health)
	require.NoError(t, err)
	assert.Equal(t, 5.0, hp)
}

func TestResolveAttackMiss(t *testing.T) {
	attacker := target(t, "hero", "party")
	defender := target(t, "bandit", "foes")
	addFlat(defender.Stats, stat.Defense, 4)

	res, err := resolver(9).ResolveAttack(combat.AttackAction{
		Attacker:   attacker,
		Defender:   defender,
		AttackStat: stat.MeleeAttack,
		DamageDice: "1d8",
		DamageType: "slashing",
	})
	require.NoError(t, err)

	assert.False(t, res.Hit)
	assert.Empty(t, res.DamageRolls)
	assert.Equal(t, 0.0, res.FinalDamage)

	hp, err := defender.Stats.CurrentResource(stat.Health)
	require.NoError(t, err)
	assert.Equal(t, 10.0, hp, "a miss must not touch the defender")
}

func TestNaturalTwentyCritRerollsDiceNotModifier(t *testing.T) {
	attacker := target(t, "hero", "party")
	defender := target(t, "bandit", "foes")

	// d20 = 20, then 1d6+2 rolls 4, crit reroll (no static +2) rolls 3.
	res, err := resolver(20, 4, 3).ResolveAttack(combat.AttackAction{
		Attacker:   attacker,
		Defender:   defender,
		AttackStat: stat.MeleeAttack,
		DamageDice: "1d6+2",
		DamageType: "slashing",
	})
	require.NoError(t, err)

	assert.True(t, res.Hit)
	assert.True(t, res.Critical)
	require.Len(t, res.DamageRolls, 2)
	// (4+2) + 3 + 2 attack bonus = 11.
	assert.Equal(t, 11.0, res.RawDamage)
	assert.Equal(t, 0.0, res.HealthRemaining)
	assert.True(t, res.Defeated)
}

func TestNaturalOneAlwaysMisses(t *testing.T) {
	attacker := target(t, "hero", "party")
	addFlat(attacker.Stats, stat.MeleeAttack, 20)
	defender := target(t, "bandit", "foes")

	res, err := resolver(1).ResolveAttack(combat.AttackAction{
		Attacker:   attacker,
		Defender:   defender,
		AttackStat: stat.MeleeAttack,
		DamageDice: "1d8",
		DamageType: "slashing",
	})
	require.NoError(t, err)

	assert.False(t, res.Hit)
	assert.True(t, res.Fumble)
	assert.Greater(t, res.AttackTotal, res.Defense, "total beats DEFENSE yet the fumble still misses")
}

func TestNonPhysicalDamageUsesMagicDefenseAndResistance(t *testing.T) {
	attacker := target(t, "mage", "party")
	defender := target(t, "bandit", "foes")
	addFlat(defender.Stats, stat.MagicDefense, -6) // MAGIC_DEFENSE 4
	defender.Stats.SetResistance("cloak", []status.ResistanceGrant{
		{DamageType: "fire", Percent: 50},
	})

	// d20 = 15 hits DEFENSE 10; 1d4+4 rolls 4.
	res, err := resolver(15, 4).ResolveAttack(combat.AttackAction{
		Attacker:   attacker,
		Defender:   defender,
		AttackStat: stat.MagicAttack,
		DamageDice: "1d4+4",
		DamageType: "fire",
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, res.RawDamage, "(4+4) + 2 attack bonus")
	assert.Equal(t, 6.0, res.AfterMitigation)
	assert.Equal(t, 50.0, res.ResistPercent)
	assert.Equal(t, 3.0, res.FinalDamage)
	assert.Equal(t, 7.0, res.HealthRemaining)
}

func TestDamageReductionMonotonicity(t *testing.T) {
	prev := -1.0
	for dr := 10; dr >= 0; dr-- {
		attacker := target(t, "hero", "party")
		defender := target(t, "bandit", "foes")
		if dr > 0 {
			addFlat(defender.Stats, stat.DamageReduction, float64(dr))
		}
		res, err := resolver(15, 6).ResolveAttack(combat.AttackAction{
			Attacker:   attacker,
			Defender:   defender,
			AttackStat: stat.MeleeAttack,
			DamageDice: "1d8",
			DamageType: "slashing",
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.FinalDamage, prev, "raising DR must never raise damage")
		prev = res.FinalDamage
	}
}

func TestRidersApplyOnHit(t *testing.T) {
	registry := status.NewRegistry()
	registry.Register(&status.Definition{
		Name:     "burning",
		Type:     status.DamageOverTime,
		Duration: 3,
		Periodic: &status.Periodic{Amount: 2, DamageType: "fire"},
	})
	riders := combat.NewRiderTable([]combat.Rider{
		{DamageType: "fire", Status: "burning", Chance: 60, Duration: 2},
	})

	attacker := target(t, "mage", "party")
	defender := target(t, "bandit", "foes")
	addFlat(defender.Stats, stat.MagicDefense, -6)

	// d20 = 15, 1d4 = 2, chance roll 37 <= 60 lands.
	roller := dice.NewLoggedRoller(&script{faces: []int{15, 2, 37}}, nil)
	r := combat.NewResolver(roller, riders, registry, combat.DefaultConfig(), nil)

	res, err := r.ResolveAttack(combat.AttackAction{
		Attacker:   attacker,
		Defender:   defender,
		AttackStat: stat.MagicAttack,
		DamageDice: "1d4",
		DamageType: "fire",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"burning"}, res.RidersApplied)
	require.True(t, defender.Stats.StatusEffects().Has("burning"))
	for _, eff := range defender.Stats.StatusEffects().Active() {
		if eff.Name == "burning" {
			assert.Equal(t, 2, eff.Duration, "rider duration overrides the definition")
		}
	}
}

func TestRiderChanceCanMiss(t *testing.T) {
	registry := status.NewRegistry()
	registry.Register(&status.Definition{
		Name:     "burning",
		Type:     status.DamageOverTime,
		Duration: 3,
		Periodic: &status.Periodic{Amount: 2, DamageType: "fire"},
	})
	riders := combat.NewRiderTable([]combat.Rider{
		{DamageType: "fire", Status: "burning", Chance: 10},
	})

	attacker := target(t, "mage", "party")
	defender := target(t, "bandit", "foes")
	addFlat(defender.Stats, stat.MagicDefense, -6)

	roller := dice.NewLoggedRoller(&script{faces: []int{15, 2, 55}}, nil)
	r := combat.NewResolver(roller, riders, registry, combat.DefaultConfig(), nil)

	res, err := r.ResolveAttack(combat.AttackAction{
		Attacker:   attacker,
		Defender:   defender,
		AttackStat: stat.MagicAttack,
		DamageDice: "1d4",
		DamageType: "fire",
	})
	require.NoError(t, err)

	assert.Empty(t, res.RidersApplied)
	assert.False(t, defender.Stats.StatusEffects().Has("burning"))
}

func TestResolveDefend(t *testing.T) {
	defender := target(t, "hero", "party")

	res, err := resolver().ResolveDefend(defender, 3.7)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Bonus, "base 2 + floor(3.7)")

	def, err := defender.Stats.EffectiveValue(stat.DerivedID(stat.Defense))
	require.NoError(t, err)
	assert.Equal(t, 15.0, def)

	expired := defender.Stats.TickDurations()
	assert.Contains(t, expired, res.EffectID)
	def, err = defender.Stats.EffectiveValue(stat.DerivedID(stat.Defense))
	require.NoError(t, err)
	assert.Equal(t, 10.0, def, "the stance lasts exactly one turn")
}

func TestResolveAttackValidation(t *testing.T) {
	attacker := target(t, "hero", "party")
	defender := target(t, "bandit", "foes")

	_, err := resolver(15).ResolveAttack(combat.AttackAction{
		Attacker: attacker, AttackStat: stat.MeleeAttack, DamageDice: "1d8",
	})
	assert.ErrorIs(t, err, combat.ErrTargetNotFound)

	_, err = resolver(15).ResolveAttack(combat.AttackAction{
		Attacker: attacker, Defender: &combat.Target{ID: "ghost"},
		AttackStat: stat.MeleeAttack, DamageDice: "1d8",
	})
	assert.ErrorIs(t, err, combat.ErrMissingStats)

	_, err = resolver(15).ResolveAttack(combat.AttackAction{
		Attacker: attacker, Defender: defender,
		AttackStat: stat.Defense, DamageDice: "1d8",
	})
	assert.Error(t, err)

	_, err = resolver(15).ResolveAttack(combat.AttackAction{
		Attacker: attacker, Defender: defender,
		AttackStat: stat.MeleeAttack, DamageDice: "d20d",
	})
	assert.Error(t, err)

	hp, err := defender.Stats.CurrentResource(stat.Health)
	require.NoError(t, err)
	assert.Equal(t, 10.0, hp, "failed validation must not mutate anyone")
}

func TestRoster(t *testing.T) {
	a := target(t, "hero", "party")
	b := target(t, "bandit", "foes")
	c := target(t, "brigand", "foes")
	roster := combat.Roster{a, b, c}

	found, err := roster.Find("bandit")
	require.NoError(t, err)
	assert.Same(t, b, found)

	_, err = roster.Find("nobody")
	assert.ErrorIs(t, err, combat.ErrTargetNotFound)

	assert.Equal(t, 2, roster.ActiveOnSide("foes"))
	_, err = c.Stats.SetCurrentResource(stat.Health, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, roster.ActiveOnSide("foes"))
}

package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfall/engine/internal/game/derive"
	"github.com/emberfall/engine/internal/game/modifier"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/stats"
	"github.com/emberfall/engine/internal/game/status"
)

func buildVeteran(t *testing.T) *stats.Manager {
	t.Helper()
	m := stats.NewManager(derive.DefaultConfig(), nil)
	m.SetBaseValue(stat.Strength, 16)
	m.SetBaseValue(stat.Constitution, 14)
	m.SetLevel(4)

	m.AddModifier(&modifier.Modifier{
		Stat: stat.PrimaryID(stat.Strength), Value: 2,
		Source: modifier.SourceRacial, SourceName: "orcish_blood",
		Kind: modifier.Permanent,
	})
	m.SyncEquipmentModifiers("chainmail", &modifier.Group{
		Kind: modifier.SemiPermanent,
		Members: []*modifier.Modifier{
			{Stat: stat.DerivedID(stat.Defense), Value: 4, Kind: modifier.SemiPermanent},
		},
	})
	require.True(t, m.AddStatusEffect(&status.Effect{
		Name:     "blessed",
		Type:     status.Buff,
		Duration: 5,
		Visible:  true,
		Group: &modifier.Group{
			Name:   "blessed",
			Source: modifier.SourceCondition,
			Kind:   modifier.Temporary,
			Members: []*modifier.Modifier{
				{Stat: stat.DerivedID(stat.MagicDefense), Value: 2, Kind: modifier.Temporary, Stacks: true},
			},
		},
		Resistances: []status.ResistanceGrant{{DamageType: "necrotic", Percent: 30}},
	}))
	m.SetResistance("salamander_cloak", []status.ResistanceGrant{{DamageType: "fire", Percent: 20}})
	m.AddShield(&stats.Shield{ID: "ward", Amount: 6}, status.Replace)

	// Carry some battle damage so currents differ from maxes.
	_, err := m.SetCurrentResource(stat.Health, 9)
	require.NoError(t, err)
	_, err = m.SetCurrentResource(stat.Stamina, 3)
	require.NoError(t, err)
	return m
}

func TestEncodeDecodeRestoresEveryEffectiveValue(t *testing.T) {
	m := buildVeteran(t)

	data, err := m.EncodeYAML()
	require.NoError(t, err)

	restored, err := stats.DecodeYAML(data, derive.DefaultConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, m.Level(), restored.Level())
	for _, p := range stat.Primaries {
		want, err := m.EffectiveValue(stat.PrimaryID(p))
		require.NoError(t, err)
		got, err := restored.EffectiveValue(stat.PrimaryID(p))
		require.NoError(t, err)
		assert.Equal(t, want, got, p.String())
	}
	for _, d := range stat.DerivedStats {
		want, err := m.EffectiveValue(stat.DerivedID(d))
		require.NoError(t, err)
		got, err := restored.EffectiveValue(stat.DerivedID(d))
		require.NoError(t, err)
		assert.Equal(t, want, got, d.String())
	}
	for _, cur := range stat.ResourcePairs() {
		want, err := m.CurrentResource(cur)
		require.NoError(t, err)
		got, err := restored.CurrentResource(cur)
		require.NoError(t, err)
		assert.Equal(t, want, got, cur.String())
	}

	assert.True(t, restored.StatusEffects().Has("blessed"))
	assert.Equal(t, m.StatusEffects().Len(), restored.StatusEffects().Len())
	assert.Equal(t, 30.0, restored.ResistancePercent("necrotic"))
	assert.Equal(t, 20.0, restored.ResistancePercent("fire"))
	assert.Equal(t, 6.0, restored.ShieldTotal("anything"))
}

func TestDecodeSurvivesStatusExpiryAfterRestore(t *testing.T) {
	m := buildVeteran(t)
	data, err := m.EncodeYAML()
	require.NoError(t, err)
	restored, err := stats.DecodeYAML(data, derive.DefaultConfig(), nil)
	require.NoError(t, err)

	base, err := restored.EffectiveValue(stat.DerivedID(stat.MagicDefense))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		restored.TickDurations()
	}
	after, err := restored.EffectiveValue(stat.DerivedID(stat.MagicDefense))
	require.NoError(t, err)

	assert.False(t, restored.StatusEffects().Has("blessed"))
	assert.Equal(t, base-2, after, "restored effects still tear down cleanly")
	assert.Equal(t, 0.0, restored.ResistancePercent("necrotic"))
}

func TestDecodeRejectsMalformedDocuments(t *testing.T) {
	_, err := stats.DecodeYAML([]byte(":\n ["), derive.DefaultConfig(), nil)
	assert.Error(t, err)

	bad := []byte("level: 1\nprimaries:\n  - stat: NOPE\n    value: 10\n")
	_, err = stats.DecodeYAML(bad, derive.DefaultConfig(), nil)
	assert.Error(t, err)
}

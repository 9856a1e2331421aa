package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfall/engine/internal/game/derive"
	"github.com/emberfall/engine/internal/game/dice"
	"github.com/emberfall/engine/internal/game/effect"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/stats"
)

// script replays fixed die faces.
type script struct {
	faces []int
	i     int
}

func (s *script) Intn(n int) int {
	v := s.faces[s.i]
	s.i++
	return (v - 1) % n
}

func roller(faces ...int) *dice.Roller {
	return dice.NewLoggedRoller(&script{faces: faces}, nil)
}

func statID(d stat.Derived) *stat.ID {
	id := stat.DerivedID(d)
	return &id
}

func f64(v float64) *float64 { return &v }

func TestMagnitudeFlat(t *testing.T) {
	got, err := effect.Flat(7).Resolve(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestMagnitudeDice(t *testing.T) {
	m := &effect.Magnitude{Dice: "2d6+1"}
	got, err := m.Resolve(nil, roller(4, 5))
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)
}

func TestMagnitudeStatLinearWithClamp(t *testing.T) {
	caster := stats.NewManager(derive.DefaultConfig(), nil)
	// MELEE_ATTACK is 2 at level 1 with neutral STR.

	m := &effect.Magnitude{Stat: statID(stat.MeleeAttack), Coeff: 2, Base: 1}
	got, err := m.Resolve(caster, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)

	m.Max = f64(4)
	got, err = m.Resolve(caster, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)

	m.Max = nil
	m.Min = f64(8)
	got, err = m.Resolve(caster, nil)
	require.NoError(t, err)
	assert.Equal(t, 8.0, got)
}

func TestMagnitudeValidation(t *testing.T) {
	cases := []struct {
		name string
		m    *effect.Magnitude
	}{
		{"empty", &effect.Magnitude{}},
		{"nil", nil},
		{"two forms", &effect.Magnitude{Dice: "1d4", Flat: f64(2)}},
		{"bad dice", &effect.Magnitude{Dice: "1dd4"}},
		{"min above max", &effect.Magnitude{
			Stat: statID(stat.MeleeAttack), Coeff: 1, Min: f64(5), Max: f64(2),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.m.Validate(), effect.ErrInvalidMagnitude)
		})
	}
}

func TestMagnitudeStatNeedsCaster(t *testing.T) {
	m := &effect.Magnitude{Stat: statID(stat.MeleeAttack), Coeff: 1}
	_, err := m.Resolve(nil, nil)
	assert.ErrorIs(t, err, effect.ErrInvalidMagnitude)
}

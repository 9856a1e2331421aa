package stats

import (
	"go.uber.org/zap"

	"github.com/emberfall/engine/internal/game/modifier"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/status"
)

// Manager implements status.Host so the status engine can drive modifier
// attachment, resistance registration, and periodic damage without touching
// stat storage directly.
var _ status.Host = (*Manager)(nil)

// AttachModifierGroup registers a status effect's owned modifier group.
func (m *Manager) AttachModifierGroup(g *modifier.Group) {
	m.applyModChange(func() {
		m.mods.AddGroup(g)
	})
}

// DetachModifierGroup removes a status effect's owned modifier group.
func (m *Manager) DetachModifierGroup(id string) {
	m.applyModChange(func() {
		m.mods.Remove(id)
	})
}

// SetResistance registers typed-resistance contributions under a contributor
// key, replacing any prior grants from the same key. Contributions across
// keys are additive.
func (m *Manager) SetResistance(key string, grants []status.ResistanceGrant) {
	if _, exists := m.resistances[key]; !exists {
		m.resistOrder = append(m.resistOrder, key)
	}
	m.resistances[key] = grants
}

// ClearResistance removes every contribution registered under key.
func (m *Manager) ClearResistance(key string) {
	if _, exists := m.resistances[key]; !exists {
		return
	}
	delete(m.resistances, key)
	for i, k := range m.resistOrder {
		if k == key {
			m.resistOrder = append(m.resistOrder[:i], m.resistOrder[i+1:]...)
			break
		}
	}
}

// ResistancePercent returns the summed percentage resistance against the
// given damage type, capped at 100.
func (m *Manager) ResistancePercent(damageType string) float64 {
	total := 0.0
	for _, grants := range m.resistances {
		for _, g := range grants {
			if g.DamageType == damageType {
				total += g.Percent
			}
		}
	}
	if total > 100 {
		total = 100
	}
	return total
}

// ResistanceDice returns every dice-pool expression contributing against the
// given damage type, in registration order.
func (m *Manager) ResistanceDice(damageType string) []string {
	var out []string
	for _, key := range m.resistOrder {
		for _, g := range m.resistances[key] {
			if g.DamageType == damageType && g.DicePool != "" {
				out = append(out, g.DicePool)
			}
		}
	}
	return out
}

// ApplyPeriodicDamage deals per-tick status effect damage. Periodic damage
// respects percentage resistance for its damage type but bypasses flat
// damage reduction (it is not a blocked hit).
func (m *Manager) ApplyPeriodicDamage(amount float64, damageType string) {
	if amount <= 0 {
		return
	}
	reduced := amount * (1 - m.ResistancePercent(damageType)/100)
	m.mutate(func() {
		cur := m.derivedBase[stat.Health]
		max := m.effectiveDerived(stat.MaxHealth)
		m.derivedBase[stat.Health] = clamp(cur-reduced, 0, max)
	})
	m.logger.Debug("periodic damage",
		zap.Float64("amount", amount),
		zap.Float64("after_resistance", reduced),
		zap.String("damage_type", damageType),
	)
}

// ApplyPeriodicHeal restores health from a per-tick healing effect.
func (m *Manager) ApplyPeriodicHeal(amount float64) {
	if amount <= 0 {
		return
	}
	m.mutate(func() {
		cur := m.derivedBase[stat.Health]
		max := m.effectiveDerived(stat.MaxHealth)
		m.derivedBase[stat.Health] = clamp(cur+amount, 0, max)
	})
}

package stats

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberfall/engine/internal/game/status"
)

// Shield is one damage-absorbing pool. A shield scoped to a damage type only
// absorbs damage of that type; an unscoped shield ("") absorbs anything.
// Duration nil means the shield lasts until consumed.
type Shield struct {
	ID         string
	Amount     float64
	DamageType string
	Duration   *int
}

// AddShield creates or updates the absorb pool keyed by s.ID according to
// the stacking rule: Stack adds the amounts, Refresh keeps the larger amount
// and duration, Replace overwrites. A shield with an empty id gets a fresh
// uuid (and always creates a new pool).
//
// Precondition: s must not be nil; s.Amount must be > 0.
func (m *Manager) AddShield(s *Shield, stacking status.Stacking) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	for _, existing := range m.shields {
		if existing.ID != s.ID {
			continue
		}
		switch stacking {
		case status.Stack:
			existing.Amount += s.Amount
			existing.Duration = longerDuration(existing.Duration, s.Duration)
		case status.Refresh:
			if s.Amount > existing.Amount {
				existing.Amount = s.Amount
			}
			existing.Duration = longerDuration(existing.Duration, s.Duration)
		case status.Replace:
			*existing = *s
		}
		return
	}
	m.shields = append(m.shields, s)
	m.logger.Debug("shield added",
		zap.String("id", s.ID),
		zap.Float64("amount", s.Amount),
		zap.String("damage_type", s.DamageType),
	)
}

// longerDuration keeps the more generous of two optional durations, where
// nil (until consumed) beats any finite value.
func longerDuration(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	if *b > *a {
		return b
	}
	return a
}

// AbsorbDamage consumes shield pools matching the damage type, in insertion
// order, and returns how much was absorbed and how much damage remains.
// Exhausted pools are removed.
//
// Postcondition: absorbed + remaining == amount; remaining >= 0.
func (m *Manager) AbsorbDamage(damageType string, amount float64) (absorbed, remaining float64) {
	remaining = amount
	kept := m.shields[:0]
	for _, s := range m.shields {
		if remaining <= 0 || (s.DamageType != "" && s.DamageType != damageType) {
			kept = append(kept, s)
			continue
		}
		take := s.Amount
		if take > remaining {
			take = remaining
		}
		s.Amount -= take
		absorbed += take
		remaining -= take
		if s.Amount > 0 {
			kept = append(kept, s)
		}
	}
	m.shields = kept
	return absorbed, remaining
}

// ShieldTotal returns the total absorb capacity applicable to damageType.
func (m *Manager) ShieldTotal(damageType string) float64 {
	total := 0.0
	for _, s := range m.shields {
		if s.DamageType == "" || s.DamageType == damageType {
			total += s.Amount
		}
	}
	return total
}

// Shields returns the active pools in insertion order.
// The slice is shared; callers must not mutate it.
func (m *Manager) Shields() []*Shield { return m.shields }

// tickShields decrements shield durations, removing expired pools.
func (m *Manager) tickShields() []string {
	var expired []string
	kept := m.shields[:0]
	for _, s := range m.shields {
		if s.Duration == nil {
			kept = append(kept, s)
			continue
		}
		*s.Duration--
		if *s.Duration <= 0 {
			expired = append(expired, s.ID)
			continue
		}
		kept = append(kept, s)
	}
	m.shields = kept
	return expired
}

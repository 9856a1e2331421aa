package stats

import (
	"fmt"
	"math"

	"github.com/emberfall/engine/internal/game/derive"
	"github.com/emberfall/engine/internal/game/stat"
)

// CurrentResource returns the stored current value for one of HEALTH, MANA,
// STAMINA, RESOLVE.
//
// Postcondition: Returns ErrNotAResource for any other identifier.
func (m *Manager) CurrentResource(d stat.Derived) (float64, error) {
	if !stat.IsCurrentResource(d) {
		return 0, fmt.Errorf("%w: %s", ErrNotAResource, d)
	}
	return m.derivedBase[d], nil
}

// SetCurrentResource sets a current resource value, clamped to
// [0, effective max]. Setting the already-stored value is a no-op so
// redundant change notifications never fire.
//
// Postcondition: Returns (true, nil) iff the stored value changed.
func (m *Manager) SetCurrentResource(d stat.Derived, value float64) (bool, error) {
	max, ok := stat.MaxOf(d)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotAResource, d)
	}
	clamped := clamp(value, 0, m.effectiveMax(max))
	if clamped == m.derivedBase[d] {
		return false, nil
	}
	m.mutate(func() {
		m.derivedBase[d] = clamped
	})
	return true, nil
}

// AdjustResource applies a signed delta to a current resource through
// SetCurrentResource's clamping.
//
// Postcondition: Returns the resulting stored value.
func (m *Manager) AdjustResource(d stat.Derived, delta float64) (float64, error) {
	cur, err := m.CurrentResource(d)
	if err != nil {
		return 0, err
	}
	if _, err := m.SetCurrentResource(d, cur+delta); err != nil {
		return 0, err
	}
	return m.derivedBase[d], nil
}

// recalculate recomputes every derived stat's base value while preserving
// each resource pair's current/max percentage:
//
//  1. Capture current/max ratios (ratio 1.0 when the max is 0 or missing).
//  2. Recompute all derived bases via the calculator; a missing formula
//     contributes 0 and is not fatal. The four current-resource stats are
//     skipped; only their MAX counterparts are recomputed.
//  3. Set each current to round(new effective max x captured ratio),
//     clamped into [0, new effective max].
//
// Raising CON therefore raises current HEALTH proportionally instead of
// leaving it behind or snapping it to full.
func (m *Manager) recalculate() {
	ratios := make(map[stat.Derived]float64, 4)
	for _, cur := range stat.ResourcePairs() {
		max, _ := stat.MaxOf(cur)
		effMax := m.effectiveMax(max)
		if effMax <= 0 {
			ratios[cur] = 1.0
			continue
		}
		ratios[cur] = m.derivedBase[cur] / effMax
	}

	// Formulas read effective primary values, so a +CON modifier raises
	// MAX_HEALTH exactly like a base CON increase would.
	prim := make(map[stat.Primary]float64, len(m.primaries))
	for p, v := range m.primaries {
		prim[p] = m.applyModifiers(stat.PrimaryID(p), v)
	}
	in := derive.Input{Primary: prim, Level: m.level, Config: m.cfg}
	for _, d := range stat.DerivedStats {
		if stat.IsCurrentResource(d) {
			continue
		}
		v, err := m.calc.Calculate(d, in)
		if err != nil {
			// No formula registered: default the base to 0.
			v = 0
		}
		m.derivedBase[d] = v
	}

	for _, cur := range stat.ResourcePairs() {
		max, _ := stat.MaxOf(cur)
		newMax := m.effectiveMax(max)
		m.derivedBase[cur] = clamp(math.Round(newMax*ratios[cur]), 0, newMax)
	}

	m.checkInvariants()
}

// effectiveMax returns the effective value of a max-resource stat, floored
// at 0. Debuffs can push the raw effective value negative; resource pools
// treat that as an empty pool, never a negative capacity.
func (m *Manager) effectiveMax(max stat.Derived) float64 {
	if v := m.effectiveDerived(max); v > 0 {
		return v
	}
	return 0
}

// clampResources re-clamps every current resource into [0, effective max]
// without rescaling. Used after modifier changes that leave primary stats
// untouched: a shrunken max pulls the current down, a grown max leaves the
// current where it was.
func (m *Manager) clampResources() {
	for _, cur := range stat.ResourcePairs() {
		max, _ := stat.MaxOf(cur)
		m.derivedBase[cur] = clamp(m.derivedBase[cur], 0, m.effectiveMax(max))
	}
	m.checkInvariants()
}

// checkInvariants panics when a resource exceeds its effective max. That
// state is unreachable through the public API; hitting it means a
// programming error inside the engine.
func (m *Manager) checkInvariants() {
	for _, cur := range stat.ResourcePairs() {
		max, _ := stat.MaxOf(cur)
		if m.derivedBase[cur] < 0 || m.derivedBase[cur] > m.effectiveMax(max) {
			panic(fmt.Sprintf(
				"stats: invariant violated: %s=%v outside [0, %s=%v]",
				cur, m.derivedBase[cur], max, m.effectiveMax(max),
			))
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

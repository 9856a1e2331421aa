// Package stats implements the per-character stats manager: the sole owner
// of primary stat values, derived stat values, the modifier engine, and the
// status effect engine. Every read goes through effective-value computation
// and every mutation triggers eager, atomic recalculation, so callers never
// observe a stale derived value.
package stats

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emberfall/engine/internal/game/derive"
	"github.com/emberfall/engine/internal/game/modifier"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/status"
)

var (
	// ErrUnknownStat is returned when an identifier is not registered or
	// not applicable to the requested operation.
	ErrUnknownStat = errors.New("stats: unknown stat")
	// ErrNotAResource is returned for current-value operations on a stat
	// that is not one of HEALTH, MANA, STAMINA, RESOLVE.
	ErrNotAResource = errors.New("stats: not a resource stat")
)

// ChangeListener observes effective-value changes. It is invoked once per
// mutating operation with the set of stats whose effective value changed;
// it is never invoked for no-op mutations.
type ChangeListener func(changed []stat.ID)

// Manager owns all stat state for one character. It is not safe for
// concurrent use: every operation runs to completion before returning and
// the caller serialises access.
type Manager struct {
	level       int
	primaries   map[stat.Primary]float64
	derivedBase map[stat.Derived]float64

	mods    *modifier.Engine
	effects *status.Engine

	resistances map[string][]status.ResistanceGrant
	resistOrder []string
	shields     []*Shield

	calc   *derive.Calculator
	cfg    derive.Config
	logger *zap.Logger

	onChange ChangeListener
	inMutate bool
}

// NewManager creates a Manager with every primary at the neutral score 10,
// level 1, all derived stats computed, and every resource at full.
//
// Precondition: logger may be nil (a no-op logger is substituted).
func NewManager(cfg derive.Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		level:       1,
		primaries:   make(map[stat.Primary]float64, len(stat.Primaries)),
		derivedBase: make(map[stat.Derived]float64, len(stat.DerivedStats)),
		mods:        modifier.NewEngine(),
		resistances: make(map[string][]status.ResistanceGrant),
		calc:        derive.NewCalculator(),
		cfg:         cfg,
		logger:      logger,
	}
	m.effects = status.NewEngine(m, logger)
	for _, p := range stat.Primaries {
		m.primaries[p] = 10
	}
	m.recalculate()
	// Fresh characters start at full resources.
	for _, cur := range stat.ResourcePairs() {
		max, _ := stat.MaxOf(cur)
		m.derivedBase[cur] = m.effectiveDerived(max)
	}
	return m
}

// SetOnChange installs the change listener. nil disables notifications.
func (m *Manager) SetOnChange(fn ChangeListener) { m.onChange = fn }

// SetHookRunner forwards the script hook dispatcher to the status engine.
func (m *Manager) SetHookRunner(r status.HookRunner) { m.effects.SetHookRunner(r) }

// Level returns the character level.
func (m *Manager) Level() int { return m.level }

// Config returns the rules configuration the manager was built with.
func (m *Manager) Config() derive.Config { return m.cfg }

// StatusEffects returns the status effect engine for read access.
func (m *Manager) StatusEffects() *status.Engine { return m.effects }

// Modifiers returns the modifier engine for read access.
func (m *Manager) Modifiers() *modifier.Engine { return m.mods }

// EffectiveValue returns a stat's effective value: base plus the sum of flat
// modifiers, then scaled by the summed percentage modifiers.
//
// Postcondition: Returns ErrUnknownStat for identifiers outside the closed
// enums; never returns a stale value after a mutation has returned.
func (m *Manager) EffectiveValue(id stat.ID) (float64, error) {
	var base float64
	if id.Kind == stat.KindPrimary {
		v, ok := m.primaries[id.Primary]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownStat, id)
		}
		base = v
	} else {
		v, ok := m.derivedBase[id.Derived]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownStat, id)
		}
		base = v
	}
	return m.applyModifiers(id, base), nil
}

func (m *Manager) applyModifiers(id stat.ID, base float64) float64 {
	v := m.mods.ValueFor(id)
	return (base + v.Flat) * (1 + v.Percent/100)
}

// effectiveDerived is EffectiveValue for a known-good derived stat.
func (m *Manager) effectiveDerived(d stat.Derived) float64 {
	return m.applyModifiers(stat.DerivedID(d), m.derivedBase[d])
}

// SetBaseValue sets a primary stat's base value and recalculates every
// derived stat, preserving each resource pair's current/max ratio.
//
// Postcondition: Derived stats are consistent with the new primary value
// before SetBaseValue returns; the change listener fires once.
func (m *Manager) SetBaseValue(p stat.Primary, value float64) {
	m.mutate(func() {
		m.primaries[p] = value
		m.recalculate()
	})
}

// SetLevel sets the character level and recalculates derived stats.
// Precondition: level >= 1.
func (m *Manager) SetLevel(level int) {
	if level < 1 {
		panic("stats: SetLevel precondition violated: level must be >= 1")
	}
	m.mutate(func() {
		m.level = level
		m.recalculate()
	})
}

// BaseValue returns the stored base value for id, before modifiers.
func (m *Manager) BaseValue(id stat.ID) (float64, error) {
	if id.Kind == stat.KindPrimary {
		v, ok := m.primaries[id.Primary]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownStat, id)
		}
		return v, nil
	}
	v, ok := m.derivedBase[id.Derived]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownStat, id)
	}
	return v, nil
}

// AddModifier inserts a standalone modifier. A modifier touching a primary
// stat triggers full recalculation; otherwise resources are re-clamped
// against their possibly-changed effective maxes.
func (m *Manager) AddModifier(mod *modifier.Modifier) {
	m.applyModChange(func() {
		m.mods.Add(mod)
	})
}

// AddModifierGroup inserts a modifier group, with the same recalculation
// rule as AddModifier.
func (m *Manager) AddModifierGroup(g *modifier.Group) {
	m.applyModChange(func() {
		m.mods.AddGroup(g)
	})
}

// RemoveModifier removes the modifier or group with the given id.
// Postcondition: Returns true iff something was removed.
func (m *Manager) RemoveModifier(id string) bool {
	removed := false
	m.applyModChange(func() {
		removed = m.mods.Remove(id)
	})
	return removed
}

// RemoveModifiersBySource removes all modifiers and groups matching the
// source type and, when name is non-empty, the source name.
// Postcondition: Returns the number of entries removed.
func (m *Manager) RemoveModifiersBySource(src modifier.Source, name string) int {
	removed := 0
	m.applyModChange(func() {
		removed = m.mods.RemoveBySource(src, name)
	})
	return removed
}

// SyncEquipmentModifiers atomically replaces every EQUIPMENT modifier from
// the named item with the given group. A nil group just unequips. External
// owners (the inventory layer) call this explicitly; the manager holds no
// back-reference to them.
func (m *Manager) SyncEquipmentModifiers(name string, g *modifier.Group) {
	m.applyModChange(func() {
		m.mods.RemoveBySource(modifier.SourceEquipment, name)
		if g != nil {
			g.Source = modifier.SourceEquipment
			g.Name = name
			m.mods.AddGroup(g)
		}
	})
}

// applyModChange runs a modifier engine mutation, then recalculates derived
// stats when the mutation changed any primary stat's net modifier value, or
// just re-clamps resources when it did not.
func (m *Manager) applyModChange(fn func()) {
	m.mutate(func() {
		before := m.primaryModValues()
		fn()
		if m.primaryModValues() != before {
			m.recalculate()
		} else {
			m.clampResources()
		}
	})
}

// primaryModValues captures the net modifier value per primary stat, in
// declaration order. The array is comparable, enabling cheap change checks.
func (m *Manager) primaryModValues() [8]modifier.Value {
	var out [8]modifier.Value
	for i, p := range stat.Primaries {
		out[i] = m.mods.ValueFor(stat.PrimaryID(p))
	}
	return out
}

// AddStatusEffect applies a status effect through the status engine.
// Postcondition: Returns true iff the engine state changed.
func (m *Manager) AddStatusEffect(eff *status.Effect) bool {
	applied := false
	m.mutate(func() {
		applied = m.effects.Add(eff)
	})
	return applied
}

// RemoveStatusEffect ends the status effect with the given id.
func (m *Manager) RemoveStatusEffect(id string) bool {
	removed := false
	m.mutate(func() {
		removed = m.effects.Remove(id)
	})
	return removed
}

// RemoveStatusEffectsByName ends every status effect with the given name.
// Postcondition: Returns the number of effects removed.
func (m *Manager) RemoveStatusEffectsByName(name string) int {
	removed := 0
	m.mutate(func() {
		removed = m.effects.RemoveByName(name)
	})
	return removed
}

// RemoveStatusEffectsByType ends every status effect of the given type.
// Postcondition: Returns the number of effects removed.
func (m *Manager) RemoveStatusEffectsByType(t status.Type) int {
	removed := 0
	m.mutate(func() {
		removed = m.effects.RemoveByType(t)
	})
	return removed
}

// TickDurations advances the modifier engine, the status effect engine, and
// the shield pools by one tick. The caller decides cadence (combat turn or
// narrative time unit).
//
// Postcondition: Returns the ids of everything that expired this tick;
// derived stats are recalculated.
func (m *Manager) TickDurations() []string {
	var expired []string
	m.applyModChange(func() {
		expired = append(expired, m.mods.Tick()...)
		expired = append(expired, m.effects.Tick()...)
		expired = append(expired, m.tickShields()...)
	})
	if len(expired) > 0 {
		m.logger.Debug("durations ticked", zap.Strings("expired", expired))
	}
	return expired
}

// mutate runs fn and fires the change listener with every stat whose
// effective value differs afterwards. Mutations that change nothing fire no
// notification. Nested calls (an engine callback mutating through the
// manager mid-operation) fold into the outermost notification.
func (m *Manager) mutate(fn func()) {
	if m.inMutate {
		fn()
		return
	}
	m.inMutate = true
	defer func() { m.inMutate = false }()

	before := m.captureEffectives()
	fn()
	if m.onChange == nil {
		return
	}
	after := m.captureEffectives()
	var changed []stat.ID
	for _, id := range allIDs() {
		if before[id] != after[id] {
			changed = append(changed, id)
		}
	}
	if len(changed) > 0 {
		m.onChange(changed)
	}
}

func (m *Manager) captureEffectives() map[stat.ID]float64 {
	out := make(map[stat.ID]float64, len(stat.Primaries)+len(stat.DerivedStats))
	for _, id := range allIDs() {
		v, err := m.EffectiveValue(id)
		if err == nil {
			out[id] = v
		}
	}
	return out
}

// allIDs returns every stat identifier in declaration order.
func allIDs() []stat.ID {
	out := make([]stat.ID, 0, len(stat.Primaries)+len(stat.DerivedStats))
	for _, p := range stat.Primaries {
		out = append(out, stat.PrimaryID(p))
	}
	for _, d := range stat.DerivedStats {
		out = append(out, stat.DerivedID(d))
	}
	return out
}

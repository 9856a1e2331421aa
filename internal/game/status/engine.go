package status

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberfall/engine/internal/game/modifier"
)

// Host is the narrow interface a status engine drives. The owning stats
// manager implements it; the engine never touches stat storage directly.
type Host interface {
	// AttachModifierGroup registers an effect's owned group with the
	// modifier engine.
	AttachModifierGroup(g *modifier.Group)
	// DetachModifierGroup removes a previously attached group by id.
	DetachModifierGroup(id string)
	// SetResistance registers typed-resistance contributions under a
	// contributor key, replacing any prior grants for that key.
	SetResistance(key string, grants []ResistanceGrant)
	// ClearResistance removes all contributions registered under key.
	ClearResistance(key string)
	// ApplyPeriodicDamage deals periodic effect damage of the given type.
	ApplyPeriodicDamage(amount float64, damageType string)
	// ApplyPeriodicHeal restores health.
	ApplyPeriodicHeal(amount float64)
}

// HookRunner dispatches named script hooks for effects. Implementations must
// never propagate script failures; the engine treats hooks as fire-and-forget.
type HookRunner interface {
	RunHook(hook string, e *Effect)
}

// Engine tracks the active status effects for one character. It is not safe
// for concurrent use; the owning stats manager serialises access. Insertion
// order is preserved for stable serialization.
type Engine struct {
	host    Host
	effects []*Effect
	hooks   HookRunner
	logger  *zap.Logger
}

// NewEngine creates an Engine bound to host.
//
// Precondition: host must not be nil; logger may be zap.NewNop().
func NewEngine(host Host, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{host: host, logger: logger}
}

// SetHookRunner installs the script hook dispatcher. nil disables hooks.
func (e *Engine) SetHookRunner(r HookRunner) { e.hooks = r }

// resistanceKey is the contributor key an effect's resistance grants are
// registered under.
func resistanceKey(effectID string) string {
	return fmt.Sprintf("status_%s", effectID)
}

// Add applies eff according to its stacking rule.
//
// A zero-duration effect is rejected silently (it would expire before ever
// mattering). Rules: Stack keeps existing same-name instances and adds the
// new one; Refresh extends every existing same-name instance's duration to
// max(existing, new) and discards the new instance; Replace removes all
// same-name instances through the normal removal path, then adds.
//
// Postcondition: Returns true iff the engine state changed.
func (e *Engine) Add(eff *Effect) bool {
	if eff.Duration <= 0 {
		e.logger.Debug("status effect rejected: zero duration",
			zap.String("name", eff.Name),
		)
		return false
	}
	if eff.ID == "" {
		eff.ID = uuid.NewString()
	}

	switch eff.Stacking {
	case Refresh:
		refreshed := false
		for _, existing := range e.effects {
			if existing.Name == eff.Name {
				if eff.Duration > existing.Duration {
					existing.Duration = eff.Duration
				}
				// The owned group expires with the effect, so its
				// clock resets alongside.
				if existing.Group != nil {
					existing.Group.Duration = modifier.DurationTicks(existing.Duration)
				}
				refreshed = true
			}
		}
		if refreshed {
			e.logger.Debug("status effect refreshed", zap.String("name", eff.Name))
			return true
		}
	case Replace:
		e.RemoveByName(eff.Name)
	case Stack:
		// Coexisting instances are the point.
	}

	e.effects = append(e.effects, eff)
	if eff.Group != nil {
		e.host.AttachModifierGroup(eff.Group)
	}
	if len(eff.Resistances) > 0 {
		e.host.SetResistance(resistanceKey(eff.ID), eff.Resistances)
	}
	e.runHook(eff.Hooks.OnApply, eff)
	e.logger.Debug("status effect applied",
		zap.String("id", eff.ID),
		zap.String("name", eff.Name),
		zap.Stringer("type", eff.Type),
		zap.Int("duration", eff.Duration),
	)
	return true
}

// Remove ends the effect with the given id: its owned modifier group and
// resistance contributions are unregistered, its removal hook runs, and the
// effect is deleted.
//
// Postcondition: Returns true iff the effect existed.
func (e *Engine) Remove(id string) bool {
	for i, eff := range e.effects {
		if eff.ID != id {
			continue
		}
		e.effects = append(e.effects[:i], e.effects[i+1:]...)
		e.teardown(eff)
		return true
	}
	return false
}

// teardown releases everything an applied effect registered.
func (e *Engine) teardown(eff *Effect) {
	if eff.Group != nil {
		e.host.DetachModifierGroup(eff.Group.ID)
	}
	if len(eff.Resistances) > 0 {
		e.host.ClearResistance(resistanceKey(eff.ID))
	}
	e.runHook(eff.Hooks.OnRemove, eff)
	e.logger.Debug("status effect removed",
		zap.String("id", eff.ID),
		zap.String("name", eff.Name),
	)
}

// RemoveByName removes every instance with the given name.
// Postcondition: Returns the number of instances removed.
func (e *Engine) RemoveByName(name string) int {
	return e.removeWhere(func(eff *Effect) bool { return eff.Name == name })
}

// RemoveByType removes every instance of the given type.
// Postcondition: Returns the number of instances removed.
func (e *Engine) RemoveByType(t Type) int {
	return e.removeWhere(func(eff *Effect) bool { return eff.Type == t })
}

func (e *Engine) removeWhere(match func(*Effect) bool) int {
	// Walk a snapshot: removal hooks may re-enter the engine, adding or
	// removing effects, and those mutations must land on the live list.
	snapshot := make([]*Effect, len(e.effects))
	copy(snapshot, e.effects)

	removed := 0
	for _, eff := range snapshot {
		if !match(eff) {
			continue
		}
		if !e.detach(eff.ID) {
			// An earlier hook in this walk already removed it.
			continue
		}
		e.teardown(eff)
		removed++
	}
	return removed
}

// detach splices the effect with the given id out of the active list without
// running teardown.
//
// Postcondition: Returns false when the id is not active, which happens when
// a hook earlier in the same walk removed it.
func (e *Engine) detach(id string) bool {
	for i, eff := range e.effects {
		if eff.ID == id {
			e.effects = append(e.effects[:i], e.effects[i+1:]...)
			return true
		}
	}
	return false
}

// contains reports whether an effect with the given id is active.
func (e *Engine) contains(id string) bool {
	for _, eff := range e.effects {
		if eff.ID == id {
			return true
		}
	}
	return false
}

// Tick advances every active effect by one turn: periodic damage or healing
// is applied, the tick hook runs, and the duration is decremented. Effects
// reaching 0 are removed through the same path as explicit removal.
//
// Postcondition: Returns the ids of every effect that expired this tick.
func (e *Engine) Tick() []string {
	// Walk a snapshot: tick and removal hooks may re-enter the engine, and
	// an effect added mid-tick must survive the walk. Effects a hook
	// applies during this tick do not themselves tick until the next turn.
	snapshot := make([]*Effect, len(e.effects))
	copy(snapshot, e.effects)

	var expired []string
	for _, eff := range snapshot {
		if !e.contains(eff.ID) {
			// Removed by an earlier hook this tick.
			continue
		}
		if eff.Periodic != nil {
			if eff.Periodic.Heal {
				e.host.ApplyPeriodicHeal(eff.Periodic.Amount)
			} else {
				e.host.ApplyPeriodicDamage(eff.Periodic.Amount, eff.Periodic.DamageType)
			}
		}
		e.runHook(eff.Hooks.OnTick, eff)

		eff.Duration--
		if eff.Duration <= 0 && e.detach(eff.ID) {
			expired = append(expired, eff.ID)
			e.teardown(eff)
		}
	}
	return expired
}

func (e *Engine) runHook(hook string, eff *Effect) {
	if hook == "" || e.hooks == nil {
		return
	}
	e.hooks.RunHook(hook, eff)
}

// Active returns a snapshot slice of all active effects in insertion order.
// The pointed-to effects are shared; callers must not modify them.
func (e *Engine) Active() []*Effect {
	out := make([]*Effect, len(e.effects))
	copy(out, e.effects)
	return out
}

// Visible returns the active effects flagged visible, for sheet display.
func (e *Engine) Visible() []*Effect {
	var out []*Effect
	for _, eff := range e.effects {
		if eff.Visible {
			out = append(out, eff)
		}
	}
	return out
}

// Has reports whether any active effect carries the given name.
func (e *Engine) Has(name string) bool {
	for _, eff := range e.effects {
		if eff.Name == name {
			return true
		}
	}
	return false
}

// Len returns the number of active effect instances.
func (e *Engine) Len() int { return len(e.effects) }

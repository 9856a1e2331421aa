package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/emberfall/engine/internal/game/modifier"
	"github.com/emberfall/engine/internal/game/stat"
)

// registerModules defines the engine.* table. Every function operates on
// the character the running hook is bound to; outside a hook call (script
// load time) they are no-ops returning nil.
func (m *Manager) registerModules(L *lua.LState) {
	engine := L.NewTable()

	L.SetField(engine, "get_stat", L.NewFunction(m.luaGetStat))
	L.SetField(engine, "get_resource", L.NewFunction(m.luaGetResource))
	L.SetField(engine, "damage", L.NewFunction(m.luaDamage))
	L.SetField(engine, "heal", L.NewFunction(m.luaHeal))
	L.SetField(engine, "adjust_resource", L.NewFunction(m.luaAdjustResource))
	L.SetField(engine, "apply_status", L.NewFunction(m.luaApplyStatus))
	L.SetField(engine, "remove_status", L.NewFunction(m.luaRemoveStatus))
	L.SetField(engine, "roll", L.NewFunction(m.luaRoll))
	L.SetField(engine, "log", L.NewFunction(m.luaLog))

	L.SetGlobal("engine", engine)
}

// luaGetStat returns the bound character's effective stat value, resolving
// free-form names through the alias table. engine.get_stat("strength").
func (m *Manager) luaGetStat(L *lua.LState) int {
	if m.current == nil {
		L.Push(lua.LNil)
		return 1
	}
	id, err := stat.ResolveName(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	v, err := m.current.EffectiveValue(id)
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(v))
	return 1
}

// luaGetResource returns a current resource value. engine.get_resource("hp").
func (m *Manager) luaGetResource(L *lua.LState) int {
	if m.current == nil {
		L.Push(lua.LNil)
		return 1
	}
	id, err := stat.ResolveName(L.CheckString(1))
	if err != nil || id.Kind != stat.KindDerived {
		L.Push(lua.LNil)
		return 1
	}
	v, err := m.current.CurrentResource(id.Derived)
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(v))
	return 1
}

// luaDamage deals typed damage to the bound character, respecting its
// percentage resistances. engine.damage(4, "fire").
func (m *Manager) luaDamage(L *lua.LState) int {
	if m.current == nil {
		return 0
	}
	amount := float64(L.CheckNumber(1))
	damageType := L.OptString(2, "")
	m.current.ApplyPeriodicDamage(amount, damageType)
	return 0
}

// luaHeal restores health. engine.heal(3).
func (m *Manager) luaHeal(L *lua.LState) int {
	if m.current == nil {
		return 0
	}
	m.current.ApplyPeriodicHeal(float64(L.CheckNumber(1)))
	return 0
}

// luaAdjustResource applies a signed delta to a named resource and returns
// the resulting value. engine.adjust_resource("stamina", -2).
func (m *Manager) luaAdjustResource(L *lua.LState) int {
	if m.current == nil {
		L.Push(lua.LNil)
		return 1
	}
	id, err := stat.ResolveName(L.CheckString(1))
	if err != nil || id.Kind != stat.KindDerived {
		L.Push(lua.LNil)
		return 1
	}
	v, err := m.current.AdjustResource(id.Derived, float64(L.CheckNumber(2)))
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(v))
	return 1
}

// luaApplyStatus instantiates a registered status effect definition on the
// bound character, with an optional duration override.
// engine.apply_status("burning", 2).
func (m *Manager) luaApplyStatus(L *lua.LState) int {
	if m.current == nil || m.registry == nil {
		L.Push(lua.LFalse)
		return 1
	}
	def, ok := m.registry.Get(L.CheckString(1))
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	eff := def.Instantiate()
	if dur := L.OptInt(2, 0); dur > 0 {
		eff.Duration = dur
		if eff.Group != nil {
			eff.Group.Duration = modifier.DurationTicks(dur)
		}
	}
	L.Push(lua.LBool(m.current.AddStatusEffect(eff)))
	return 1
}

// luaRemoveStatus removes every same-named status effect and returns the
// removed count. engine.remove_status("burning").
func (m *Manager) luaRemoveStatus(L *lua.LState) int {
	if m.current == nil {
		L.Push(lua.LNumber(0))
		return 1
	}
	n := m.current.RemoveStatusEffectsByName(L.CheckString(1))
	L.Push(lua.LNumber(n))
	return 1
}

// luaRoll evaluates a dice expression. engine.roll("2d6+1").
func (m *Manager) luaRoll(L *lua.LState) int {
	result, err := m.roller.RollExpr(L.CheckString(1))
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(result.Total()))
	return 1
}

// luaLog writes a script-authored line to the engine log.
func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Info("script", zap.String("message", L.CheckString(1)))
	return 0
}

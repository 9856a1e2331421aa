package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfall/engine/internal/game/derive"
	"github.com/emberfall/engine/internal/game/dice"
	"github.com/emberfall/engine/internal/game/stat"
	"github.com/emberfall/engine/internal/game/stats"
	"github.com/emberfall/engine/internal/game/status"
	"github.com/emberfall/engine/internal/scripting"
)

// seq deals preset rolls so scripted dice are deterministic.
type seq struct {
	vals []int
	i    int
}

func (s *seq) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

func newScriptManager(t *testing.T, registry *status.Registry, rolls ...int) *scripting.Manager {
	t.Helper()
	if len(rolls) == 0 {
		rolls = []int{0}
	}
	roller := dice.NewLoggedRoller(&seq{vals: rolls}, nil)
	m := scripting.NewManager(roller, registry, nil)
	t.Cleanup(m.Close)
	return m
}

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func loadScript(t *testing.T, m *scripting.Manager, body string) {
	t.Helper()
	dir := t.TempDir()
	writeScript(t, dir, "hooks.lua", body)
	require.NoError(t, m.LoadDirectory(dir))
}

func TestHooksFireAcrossEffectLifecycle(t *testing.T) {
	scr := newScriptManager(t, nil)
	loadScript(t, scr, `
		function on_curse_apply(eff)
			engine.damage(4, "necrotic")
		end
		function on_curse_tick(eff)
			engine.adjust_resource("stamina", -2)
		end
		function on_curse_remove(eff)
			engine.heal(3)
		end
	`)

	sm := stats.NewManager(derive.DefaultConfig(), nil)
	sm.SetHookRunner(scr.RunnerFor(sm))

	require.True(t, sm.AddStatusEffect(&status.Effect{
		Name:     "curse",
		Type:     status.Debuff,
		Duration: 1,
		Hooks: status.Hooks{
			OnApply:  "on_curse_apply",
			OnTick:   "on_curse_tick",
			OnRemove: "on_curse_remove",
		},
	}))

	hp, err := sm.CurrentResource(stat.Health)
	require.NoError(t, err)
	assert.Equal(t, 6.0, hp, "apply hook burns 4 health")

	expired := sm.TickDurations()
	require.Len(t, expired, 1)

	stamina, err := sm.CurrentResource(stat.Stamina)
	require.NoError(t, err)
	assert.Equal(t, 8.0, stamina, "tick hook drains 2 stamina")

	hp, err = sm.CurrentResource(stat.Health)
	require.NoError(t, err)
	assert.Equal(t, 9.0, hp, "remove hook heals 3 of the applied damage")
}

func TestHookReadsStatsAndRollsDice(t *testing.T) {
	// 1d6 rolling a 4: Intn(6) returns 3.
	scr := newScriptManager(t, nil, 3)
	loadScript(t, scr, `
		function on_drain_apply(eff)
			local str = engine.get_stat("strength")
			if str >= 10 then
				engine.damage(engine.roll("1d6"), "fire")
			end
		end
	`)

	sm := stats.NewManager(derive.DefaultConfig(), nil)
	sm.SetHookRunner(scr.RunnerFor(sm))

	require.True(t, sm.AddStatusEffect(&status.Effect{
		Name:     "drain",
		Type:     status.Debuff,
		Duration: 2,
		Hooks:    status.Hooks{OnApply: "on_drain_apply"},
	}))

	hp, err := sm.CurrentResource(stat.Health)
	require.NoError(t, err)
	assert.Equal(t, 6.0, hp)
}

func TestMissingHookIsANoOp(t *testing.T) {
	scr := newScriptManager(t, nil)
	loadScript(t, scr, `function unrelated() end`)

	sm := stats.NewManager(derive.DefaultConfig(), nil)
	sm.SetHookRunner(scr.RunnerFor(sm))

	require.True(t, sm.AddStatusEffect(&status.Effect{
		Name:     "silent",
		Type:     status.Buff,
		Duration: 1,
		Hooks:    status.Hooks{OnApply: "never_defined"},
	}))

	hp, err := sm.CurrentResource(stat.Health)
	require.NoError(t, err)
	assert.Equal(t, 10.0, hp)
}

func TestLuaErrorsAreSwallowed(t *testing.T) {
	scr := newScriptManager(t, nil)
	loadScript(t, scr, `
		function on_broken_apply(eff)
			error("boom")
		end
		function on_fine_apply(eff)
			engine.heal(0)
		end
	`)

	sm := stats.NewManager(derive.DefaultConfig(), nil)
	sm.SetHookRunner(scr.RunnerFor(sm))

	require.True(t, sm.AddStatusEffect(&status.Effect{
		Name:     "broken",
		Type:     status.Debuff,
		Duration: 1,
		Hooks:    status.Hooks{OnApply: "on_broken_apply"},
	}), "a failing hook never vetoes the effect")

	// The VM stays usable for later hooks.
	require.True(t, sm.AddStatusEffect(&status.Effect{
		Name:     "fine",
		Type:     status.Buff,
		Duration: 1,
		Hooks:    status.Hooks{OnApply: "on_fine_apply"},
	}))
}

func TestHookAppliesRegisteredStatusWithNestedHooks(t *testing.T) {
	registry := status.NewRegistry()
	registry.Register(&status.Definition{
		Name:     "burning",
		Type:     status.DamageOverTime,
		Duration: 5,
		Periodic: &status.Periodic{Amount: 2, DamageType: "fire"},
		Hooks:    status.Hooks{OnApply: "on_burning_apply"},
	})

	scr := newScriptManager(t, registry)
	loadScript(t, scr, `
		function on_ignite_apply(eff)
			engine.apply_status("burning", 3)
		end
		function on_burning_apply(eff)
			engine.adjust_resource("mana", -eff.duration)
		end
	`)

	sm := stats.NewManager(derive.DefaultConfig(), nil)
	sm.SetHookRunner(scr.RunnerFor(sm))

	require.True(t, sm.AddStatusEffect(&status.Effect{
		Name:     "ignite",
		Type:     status.Debuff,
		Duration: 1,
		Hooks:    status.Hooks{OnApply: "on_ignite_apply"},
	}))

	assert.True(t, sm.StatusEffects().Has("burning"))

	mana, err := sm.CurrentResource(stat.Mana)
	require.NoError(t, err)
	assert.Equal(t, 7.0, mana, "nested burning hook sees the overridden duration")
}

func TestHookRemovesStatusByName(t *testing.T) {
	scr := newScriptManager(t, nil)
	loadScript(t, scr, `
		function on_cleanse_apply(eff)
			removed = engine.remove_status("poisoned")
		end
	`)

	sm := stats.NewManager(derive.DefaultConfig(), nil)
	sm.SetHookRunner(scr.RunnerFor(sm))

	require.True(t, sm.AddStatusEffect(&status.Effect{
		Name:     "poisoned",
		Type:     status.DamageOverTime,
		Duration: 10,
		Periodic: &status.Periodic{Amount: 1, DamageType: "poison"},
	}))
	require.True(t, sm.AddStatusEffect(&status.Effect{
		Name:     "cleanse",
		Type:     status.Buff,
		Duration: 1,
		Hooks:    status.Hooks{OnApply: "on_cleanse_apply"},
	}))

	assert.False(t, sm.StatusEffects().Has("poisoned"))
}

func TestRunawayHookIsCutOffAndVMRecovers(t *testing.T) {
	scr := newScriptManager(t, nil)
	scr.SetInstructionLimit(10_000)
	loadScript(t, scr, `
		function runaway(eff)
			while true do end
		end
		function gentle(eff)
			engine.heal(1)
		end
	`)

	sm := stats.NewManager(derive.DefaultConfig(), nil)
	runner := scr.RunnerFor(sm)

	runner.RunHook("runaway", &status.Effect{Name: "loop"})

	_, err := sm.AdjustResource(stat.Health, -5)
	require.NoError(t, err)
	runner.RunHook("gentle", &status.Effect{Name: "mend"})

	hp, err := sm.CurrentResource(stat.Health)
	require.NoError(t, err)
	assert.Equal(t, 6.0, hp, "a fresh budget lets later hooks run")
}

func TestLoadDirectorySortsAndReportsBrokenScripts(t *testing.T) {
	scr := newScriptManager(t, nil)
	dir := t.TempDir()
	writeScript(t, dir, "20_second.lua", `order = order .. "b"`)
	writeScript(t, dir, "10_first.lua", `order = "a"`)
	writeScript(t, dir, "notes.txt", `not lua at all (`)
	require.NoError(t, scr.LoadDirectory(dir))

	bad := t.TempDir()
	writeScript(t, bad, "broken.lua", `function (`)
	err := scr.LoadDirectory(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.lua")
}

func TestLoadDirectoryMissingDir(t *testing.T) {
	scr := newScriptManager(t, nil)
	require.Error(t, scr.LoadDirectory(filepath.Join(t.TempDir(), "nope")))
}

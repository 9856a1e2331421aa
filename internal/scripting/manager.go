package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/emberfall/engine/internal/game/dice"
	"github.com/emberfall/engine/internal/game/stats"
	"github.com/emberfall/engine/internal/game/status"
)

// Manager owns one sandboxed LState holding every loaded hook script, plus
// the collaborators the engine.* module exposes to Lua. Hooks always run
// bound to one character's stats manager; RunnerFor produces the per-character
// binding the status engine consumes.
//
// The mutex serializes hook execution: the single LState is not reentrant.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int

	roller   *dice.Roller
	registry *status.Registry
	logger   *zap.Logger

	// current is the character the running hook is bound to, and inCall
	// marks an in-flight hook so nested dispatches skip re-locking. Both
	// are only touched while mu is held or from the goroutine holding it;
	// hook dispatch is single-goroutine by the engine's concurrency model.
	current *stats.Manager
	inCall  bool
}

// NewManager creates a Manager with an empty script environment.
//
// Precondition: roller must be non-nil. registry may be nil, disabling
// engine.apply_status; logger may be nil.
func NewManager(roller *dice.Roller, registry *status.Registry, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		state:     NewSandboxedState(),
		instLimit: DefaultInstructionLimit,
		roller:    roller,
		registry:  registry,
		logger:    logger,
	}
	m.registerModules(m.state)
	return m
}

// SetInstructionLimit overrides the per-execution Lua opcode budget.
// Precondition: limit > 0.
func (m *Manager) SetInstructionLimit(limit int) {
	if limit <= 0 {
		panic("scripting: SetInstructionLimit precondition violated: limit must be > 0")
	}
	m.mu.Lock()
	m.instLimit = limit
	m.mu.Unlock()
}

// Close releases the Lua VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}

// LoadDirectory executes every *.lua file in dir in lexicographic order,
// defining their global functions as callable hooks.
//
// Postcondition: Returns an error on the first script that fails to load;
// scripts loaded before the failure stay defined.
func (m *Manager) LoadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range files {
		cancel := resetLimit(m.state, m.instLimit)
		err := m.state.DoFile(path)
		cancel()
		if err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	m.logger.Info("hook scripts loaded",
		zap.String("dir", dir),
		zap.Int("files", len(files)),
	)
	return nil
}

// RunnerFor returns a status.HookRunner dispatching into this Manager with
// every hook bound to target.
func (m *Manager) RunnerFor(target *stats.Manager) status.HookRunner {
	return &boundRunner{mgr: m, target: target}
}

type boundRunner struct {
	mgr    *Manager
	target *stats.Manager
}

// RunHook dispatches one named hook for an effect. Missing hooks are a
// no-op; Lua runtime errors are logged at Warn and never propagated.
func (b *boundRunner) RunHook(hook string, eff *status.Effect) {
	b.mgr.call(b.target, hook, eff)
}

func (m *Manager) call(target *stats.Manager, hook string, eff *status.Effect) {
	// A hook may apply or remove a status whose own hooks fire before the
	// outer hook returns. Those nested dispatches arrive on the same
	// goroutine with mu already held, so they must not re-lock, and they
	// inherit the outer call's instruction budget.
	nested := m.inCall
	if !nested {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	if m.state == nil {
		return
	}

	fn := m.state.GetGlobal(hook)
	if fn == lua.LNil {
		return
	}

	prev := m.current
	m.current = target
	m.inCall = true
	defer func() {
		m.current = prev
		m.inCall = nested
	}()

	if !nested {
		cancel := resetLimit(m.state, m.instLimit)
		defer cancel()
	}

	if err := m.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, m.effectTable(eff)); err != nil {
		m.logger.Warn("hook script failed",
			zap.String("hook", hook),
			zap.String("effect", eff.Name),
			zap.Error(err),
		)
	}
}

// effectTable builds the Lua view of an effect passed to every hook.
func (m *Manager) effectTable(eff *status.Effect) *lua.LTable {
	t := m.state.NewTable()
	t.RawSetString("id", lua.LString(eff.ID))
	t.RawSetString("name", lua.LString(eff.Name))
	t.RawSetString("type", lua.LString(eff.Type.String()))
	t.RawSetString("duration", lua.LNumber(eff.Duration))
	return t
}

package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/dice"
)

// CombatantInfo is a snapshot of a combatant's state passed to Lua hooks.
type CombatantInfo struct {
	ID         string
	Name       string
	HP         int
	MaxHP      int
	AC         int
	Conditions []string
}

// Manager owns one sandboxed LState holding every loaded condition script
// and exposes hook dispatch. It implements the effect executor's HookRunner.
//
// Manager is safe for concurrent CallHook after LoadDirectory completes; the
// LState itself is single-threaded, so the mutex serializes hook execution.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel func()
	roller *dice.Roller
	logger *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetCombatant   func(id string) *CombatantInfo
	ApplyDamage    func(id string, amount int, damageType string) error
	ApplyCondition func(id, conditionID string) error
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: roller must be non-nil; a nil logger is replaced by a no-op.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{roller: roller, logger: logger}
}

// LoadDirectory creates a sandboxed VM, registers all engine.* modules, then
// executes every *.lua file in scriptDir in lexicographic order. Calling it
// again replaces the previous VM.
//
// Precondition: scriptDir must be a readable directory.
func (m *Manager) LoadDirectory(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		if m.cancel != nil {
			m.cancel()
		}
		m.state.Close()
	}
	m.state = L
	m.cancel = cancel
	m.mu.Unlock()

	m.logger.Info("condition scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Close releases the VM. Safe to call with no scripts loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		if m.cancel != nil {
			m.cancel()
		}
		m.state.Close()
		m.state = nil
		m.cancel = nil
	}
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined or no VM is loaded. Lua runtime errors are logged at
// Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callHookLocked(hook, args...)
}

func (m *Manager) callHookLocked(hook string, args ...lua.LValue) (lua.LValue, error) {
	if m.state == nil {
		m.logger.Debug("no script VM loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}
	L := m.state

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// RunConditionHook invokes a condition lifecycle hook with the condition ID
// and a snapshot table of the affected combatant. Script failures never
// interrupt the turn sequence.
func (m *Manager) RunConditionHook(hookName, conditionID string, target *creature.State) {
	if hookName == "" || target == nil {
		return
	}
	snapshot := CombatantInfo{
		ID:    target.ID,
		Name:  target.Name,
		HP:    target.CurrentHP,
		MaxHP: target.MaxHPCalculated,
		AC:    target.ArmorClass,
	}
	for i := range target.ActiveConditions {
		if d := target.ActiveConditions[i].Definition; d != nil {
			snapshot.Conditions = append(snapshot.Conditions, d.ID)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var tbl lua.LValue = lua.LNil
	if m.state != nil {
		tbl = combatantTable(m.state, &snapshot)
	}

	if _, err := m.callHookLocked(hookName, lua.LString(conditionID), tbl); err != nil {
		m.logger.Warn("condition hook failed",
			zap.String("hook", hookName),
			zap.String("condition", conditionID),
			zap.Error(err),
		)
	}
}

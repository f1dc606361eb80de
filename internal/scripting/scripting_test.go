package scripting_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arbiterhq/arbiter/internal/game/creature"
	"github.com/arbiterhq/arbiter/internal/game/dice"
	"github.com/arbiterhq/arbiter/internal/scripting"
)

func writeTempLua(t *testing.T, name, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	return dir
}

func newTestManager(t *testing.T) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	roller := dice.NewRoller(dice.NewCryptoSource(), nil)
	mgr := scripting.NewManager(roller, zap.New(core))
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func runScript(t *testing.T, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	require.NoError(t, mgr.LoadDirectory(dir, 0))
	ret, err := mgr.CallHook(hook, args...)
	require.NoError(t, err)
	return ret
}

func TestSandboxStripsDangerousGlobals(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function check_sandbox()
			return dofile == nil and loadfile == nil and load == nil
				and collectgarbage == nil and require == nil
		end
	`, "check_sandbox")
	assert.Equal(t, lua.LTrue, ret)
}

func TestSandboxInstructionLimitHaltsRunawayScript(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `
		function spin()
			while true do end
		end
	`)
	require.NoError(t, mgr.LoadDirectory(dir, 1000))

	ret, err := mgr.CallHook("spin")
	require.NoError(t, err, "runtime errors are swallowed")
	assert.Equal(t, lua.LNil, ret)
	assert.NotZero(t, logs.FilterLevelExact(zap.WarnLevel).Len(), "halt is logged at warn")
}

func TestCallHookUndefinedIsNoop(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `function defined() return 1 end`, "not_defined")
	assert.Equal(t, lua.LNil, ret)
}

func TestCallHookWithoutVMIsNoop(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret, err := mgr.CallHook("anything")
	require.NoError(t, err)
	assert.Equal(t, lua.LNil, ret)
}

func TestEngineLogAllLevels(t *testing.T) {
	mgr, logs := newTestManager(t)
	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	levels := map[string]bool{}
	for _, e := range logs.All() {
		levels[e.Level.String()] = true
	}
	assert.True(t, levels["debug"], "expected debug log")
	assert.True(t, levels["info"], "expected info log")
	assert.True(t, levels["warn"], "expected warn log")
	assert.True(t, levels["error"], "expected error log")
}

func TestEngineDiceRollReturnsTable(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	// Faces 3 and 4 on 2d6, +2.
	roller := dice.NewRoller(dice.NewSequenceSource(2, 3), nil)
	mgr := scripting.NewManager(roller, zap.New(core))
	t.Cleanup(mgr.Close)

	ret := runScript(t, mgr, `
		function do_roll()
			local r = engine.dice.roll("2d6+2")
			if r.total ~= r.dice + r.modifier then error("total mismatch") end
			return r.total
		end
	`, "do_roll")
	n, ok := ret.(lua.LNumber)
	require.True(t, ok, "expected LNumber, got %T", ret)
	assert.Equal(t, 9, int(n))
}

func TestEngineDiceRollBadExpressionRaises(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret := runScript(t, mgr, `
		function bad_roll() return engine.dice.roll("banana") end
	`, "bad_roll")
	assert.Equal(t, lua.LNil, ret)
	assert.NotZero(t, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestCombatantGetNilCallbackReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function get_it() return engine.combatant.get("c1") end
	`, "get_it")
	assert.Equal(t, lua.LNil, ret)
}

func TestCombatantGetWithCallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.GetCombatant = func(id string) *scripting.CombatantInfo {
		return &scripting.CombatantInfo{ID: id, Name: "Grell", HP: 12, MaxHP: 30, AC: 14, Conditions: []string{"POISONED"}}
	}
	ret := runScript(t, mgr, `
		function get_hp()
			local c = engine.combatant.get("c1")
			if c.conditions[1] ~= "POISONED" then error("missing condition") end
			return c.hp
		end
	`, "get_hp")
	assert.Equal(t, lua.LNumber(12), ret)
}

func TestCombatApplyDamageCallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	var gotID, gotType string
	var gotAmount int
	mgr.ApplyDamage = func(id string, amount int, damageType string) error {
		gotID, gotAmount, gotType = id, amount, damageType
		return nil
	}
	runScript(t, mgr, `
		function burn() engine.combat.apply_damage("c1", 4, "FIRE") end
	`, "burn")
	assert.Equal(t, "c1", gotID)
	assert.Equal(t, 4, gotAmount)
	assert.Equal(t, "FIRE", gotType)
}

func TestRunConditionHookPassesSnapshot(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		seen_condition = nil
		seen_hp = nil
		function on_poison_tick(condition_id, target)
			seen_condition = condition_id
			seen_hp = target.hp
		end
		function read_state()
			return tostring(seen_condition) .. ":" .. tostring(seen_hp)
		end
	`)
	require.NoError(t, mgr.LoadDirectory(dir, 0))

	target := &creature.State{ID: "c1", Name: "Grell", CurrentHP: 9, MaxHPCalculated: 30}
	mgr.RunConditionHook("on_poison_tick", "POISONED", target)

	ret, err := mgr.CallHook("read_state")
	require.NoError(t, err)
	assert.Equal(t, lua.LString("POISONED:9"), ret)
}

func TestRunConditionHookMissingHookIsNoop(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `function unrelated() end`)
	require.NoError(t, mgr.LoadDirectory(dir, 0))

	target := &creature.State{ID: "c1", CurrentHP: 5}
	mgr.RunConditionHook("never_defined", "STUNNED", target)
	mgr.RunConditionHook("", "STUNNED", target)
	assert.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/arbiterhq/arbiter/internal/game/dice"
)

// combatantTable converts a CombatantInfo snapshot into a Lua table.
func combatantTable(L *lua.LState, c *CombatantInfo) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(c.ID))
	L.SetField(t, "name", lua.LString(c.Name))
	L.SetField(t, "hp", lua.LNumber(c.HP))
	L.SetField(t, "max_hp", lua.LNumber(c.MaxHP))
	L.SetField(t, "ac", lua.LNumber(c.AC))
	conds := L.NewTable()
	for _, id := range c.Conditions {
		conds.Append(lua.LString(id))
	}
	L.SetField(t, "conditions", conds)
	return t
}

// RegisterModules registers all engine.* Lua tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: The engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetGlobal("engine", engine)

	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "combatant", m.combatantModule(L))
	L.SetField(engine, "combat", m.combatModule(L))
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	bind := func(name string, fn func(string, ...zap.Field)) {
		L.SetField(t, name, L.NewFunction(func(ls *lua.LState) int {
			fn(ls.CheckString(1), zap.String("origin", "lua"))
			return 0
		}))
	}
	bind("debug", m.logger.Debug)
	bind("info", m.logger.Info)
	bind("warn", m.logger.Warn)
	bind("error", m.logger.Error)
	return t
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "roll", L.NewFunction(func(ls *lua.LState) int {
		expr := ls.CheckString(1)
		res, err := m.roller.RollExpression(expr)
		if err != nil {
			ls.RaiseError("bad dice expression %q: %s", expr, err)
			return 0
		}
		faces := 0
		rolls := ls.NewTable()
		for _, f := range res.Dice {
			faces += f
			rolls.Append(lua.LNumber(f))
		}
		out := ls.NewTable()
		ls.SetField(out, "total", lua.LNumber(res.Total()))
		ls.SetField(out, "dice", lua.LNumber(faces))
		ls.SetField(out, "modifier", lua.LNumber(res.Modifier))
		ls.SetField(out, "rolls", rolls)
		ls.Push(out)
		return 1
	}))
	L.SetField(t, "d20", L.NewFunction(func(ls *lua.LState) int {
		roll := m.roller.RollD20(dice.Normal)
		ls.Push(lua.LNumber(roll.Value))
		return 1
	}))
	return t
}

// combatantModule exposes read access to any combatant in the encounter
// through the injected GetCombatant callback.
func (m *Manager) combatantModule(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "get", L.NewFunction(func(ls *lua.LState) int {
		if m.GetCombatant == nil {
			ls.Push(lua.LNil)
			return 1
		}
		info := m.GetCombatant(ls.CheckString(1))
		if info == nil {
			ls.Push(lua.LNil)
			return 1
		}
		ls.Push(combatantTable(ls, info))
		return 1
	}))
	return t
}

// combatModule exposes the mutation callbacks. With no callbacks injected
// every function is a silent no-op, which keeps scripts loadable in tools
// that only validate content.
func (m *Manager) combatModule(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "apply_damage", L.NewFunction(func(ls *lua.LState) int {
		if m.ApplyDamage == nil {
			return 0
		}
		id := ls.CheckString(1)
		amount := ls.CheckInt(2)
		damageType := ls.OptString(3, "")
		if err := m.ApplyDamage(id, amount, damageType); err != nil {
			m.logger.Warn("script damage rejected",
				zap.String("target", id),
				zap.Error(err),
			)
		}
		return 0
	}))
	L.SetField(t, "apply_condition", L.NewFunction(func(ls *lua.LState) int {
		if m.ApplyCondition == nil {
			return 0
		}
		id := ls.CheckString(1)
		conditionID := ls.CheckString(2)
		if err := m.ApplyCondition(id, conditionID); err != nil {
			m.logger.Warn("script condition rejected",
				zap.String("target", id),
				zap.String("condition", conditionID),
				zap.Error(err),
			)
		}
		return 0
	}))
	return t
}

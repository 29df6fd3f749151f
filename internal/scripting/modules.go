package scripting

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua table into L:
//
//	engine.log(msg)         debug log line tagged with the script source
//	engine.roll(expr)       rolls a range expression such as "6-13", returns the total
//	engine.chance(p)        true with probability p
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(m.luaLog))
	L.SetField(engine, "roll", L.NewFunction(m.luaRoll))
	L.SetField(engine, "chance", L.NewFunction(m.luaChance))
	L.SetGlobal("engine", engine)
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Debug("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

func (m *Manager) luaRoll(L *lua.LState) int {
	res, err := m.roller.RollExpr(L.CheckString(1))
	if err != nil {
		L.RaiseError("engine.roll: %s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(res.Total()))
	return 1
}

func (m *Manager) luaChance(L *lua.LState) int {
	p := float64(L.CheckNumber(1))
	L.Push(lua.LBool(m.roller.Chance("lua", p)))
	return 1
}

func stringReader(s string) *strings.Reader { return strings.NewReader(s) }

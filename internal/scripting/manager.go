package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/game/dice"
)

// Manager owns one sandboxed LState and dispatches hook calls into it.
//
// Manager is safe for concurrent use; calls are serialised because an LState is single-threaded.
type Manager struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager with the engine.* modules registered.
//
// Precondition: roller must be non-nil. A nil logger is replaced by a no-op logger.
// Postcondition: Returns a Manager with no scripts loaded. Call Close when done.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		L:      NewSandboxedState(instLimit),
		limit:  instLimit,
		roller: roller,
		logger: logger,
	}
	m.RegisterModules(m.L)
	return m
}

// Close releases the Lua VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.L.Close()
}

// LoadString executes src as a chunk named name.
//
// Postcondition: globals defined by src are callable via CallHook; returns error on Lua failure.
func (m *Manager) LoadString(name, src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := withBudget(m.L, m.limit, func() error {
		fn, err := m.L.Load(stringReader(src), name)
		if err != nil {
			return err
		}
		m.L.Push(fn)
		return m.L.PCall(0, lua.MultRet, nil)
	})
	if err != nil {
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}
	return nil
}

// LoadDir executes every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range luaFiles {
		if err := withBudget(m.L, m.limit, func() error { return m.L.DoFile(path) }); err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	return nil
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if the
// hook is not defined.
//
// Precondition: args must be valid lua.LValue instances created by this Manager's VM.
// Postcondition: Returns the first return value of the hook, or LNil with an error on a Lua runtime failure.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callLocked(hook, args...)
}

func (m *Manager) callLocked(hook string, args ...lua.LValue) (lua.LValue, error) {
	fn := m.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}
	err := withBudget(m.L, m.limit, func() error {
		return m.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error", zap.String("hook", hook), zap.Error(err))
		return lua.LNil, fmt.Errorf("scripting: %s: %w", hook, err)
	}
	ret := m.L.Get(-1)
	m.L.Pop(1)
	return ret, nil
}

// HasHook reports whether a global function named hook is defined.
func (m *Manager) HasHook(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.L.GetGlobal(hook).Type() == lua.LTFunction
}

// CallPredicate calls hook with each args map converted to a Lua table and
// reports the truthiness of its result. An undefined hook is false.
//
// Postcondition: on a Lua runtime error returns false and the error.
func (m *Manager) CallPredicate(hook string, args ...map[string]float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vals := make([]lua.LValue, 0, len(args))
	for _, a := range args {
		vals = append(vals, m.table(a))
	}
	ret, err := m.callLocked(hook, vals...)
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(ret), nil
}

func (m *Manager) table(fields map[string]float64) *lua.LTable {
	t := m.L.NewTable()
	for k, v := range fields {
		t.RawSetString(k, lua.LNumber(v))
	}
	return t
}

// Package script hosts the Lua extension runtime. An init script can
// register custom console commands and drive the debugger through the
// exposed ugdb table.
package script

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/burrbull/ugdb/internal/gdbmi"
)

// Host is the debugger surface exposed to Lua scripts.
type Host interface {
	// ConsoleCommand runs a verbatim gdb console command.
	ConsoleCommand(command string) error
	// Evaluate evaluates an expression and returns gdb's rendering.
	Evaluate(expression string) (string, error)
	// ToggleBreakpoint toggles a line breakpoint.
	ToggleBreakpoint(file string, line int) error
	// MI executes an MI operation and returns the decoded reply payload.
	MI(operation string, params ...string) (*gdbmi.Map, error)
	// Print writes a line to the console pane.
	Print(text string)
}

// Runtime is one Lua state with the ugdb API installed. All entry points
// lock the state; gopher-lua states are not goroutine safe.
type Runtime struct {
	mu       sync.Mutex
	state    *lua.LState
	host     Host
	commands map[string]*lua.LFunction
}

// New creates a runtime bound to the host.
func New(host Host) *Runtime {
	r := &Runtime{
		state:    lua.NewState(),
		host:     host,
		commands: make(map[string]*lua.LFunction),
	}
	r.installAPI()
	return r
}

// Close releases the Lua state.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Close()
}

// LoadFile executes the init script.
func (r *Runtime) LoadFile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.state.DoFile(path); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// LoadString executes Lua source. Used by tests and the console's "lua"
// command.
func (r *Runtime) LoadString(source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.state.DoString(source); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// HasCommand reports whether a console command of that name is registered.
func (r *Runtime) HasCommand(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.commands[name]
	return ok
}

// RunCommand invokes a registered command with the remaining console words
// as arguments.
func (r *Runtime) RunCommand(name string, args []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.commands[name]
	if !ok {
		return fmt.Errorf("script: unknown command %q", name)
	}
	table := r.state.NewTable()
	for _, arg := range args {
		table.Append(lua.LString(arg))
	}
	if err := r.state.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, table); err != nil {
		return fmt.Errorf("script: command %s: %w", name, err)
	}
	return nil
}

// installAPI registers the ugdb table in the Lua globals.
func (r *Runtime) installAPI() {
	L := r.state
	table := L.NewTable()
	L.SetFuncs(table, map[string]lua.LGFunction{
		"register_command": r.luaRegisterCommand,
		"execute":          r.luaExecute,
		"evaluate":         r.luaEvaluate,
		"mi":               r.luaMI,
		"breakpoint":       r.luaBreakpoint,
		"print":            r.luaPrint,
	})
	L.SetGlobal("ugdb", table)
}

// luaRegisterCommand implements ugdb.register_command(name, fn).
func (r *Runtime) luaRegisterCommand(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	r.commands[name] = fn
	return 0
}

// luaExecute implements ugdb.execute(command). Returns nil on success, an
// error message otherwise.
func (r *Runtime) luaExecute(L *lua.LState) int {
	command := L.CheckString(1)
	if err := r.host.ConsoleCommand(command); err != nil {
		L.Push(lua.LString(err.Error()))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

// luaEvaluate implements ugdb.evaluate(expr). Returns value, or nil plus an
// error message.
func (r *Runtime) luaEvaluate(L *lua.LState) int {
	expression := L.CheckString(1)
	value, err := r.host.Evaluate(expression)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(value))
	return 1
}

// luaMI implements ugdb.mi(operation, params...). Returns the reply payload
// as a table, or nil plus an error message.
func (r *Runtime) luaMI(L *lua.LState) int {
	operation := L.CheckString(1)
	params := make([]string, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		params = append(params, L.CheckString(i))
	}
	payload, err := r.host.MI(operation, params...)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(mapToLua(L, payload))
	return 1
}

// mapToLua converts an MI tuple into a Lua table.
func mapToLua(L *lua.LState, m *gdbmi.Map) *lua.LTable {
	table := L.NewTable()
	if m == nil {
		return table
	}
	for _, key := range m.Keys() {
		value, _ := m.Get(key)
		table.RawSetString(key, valueToLua(L, value))
	}
	return table
}

// valueToLua converts one MI value into a Lua value. Numbers keep their
// textual form when they do not fit a Lua number, e.g. large addresses.
func valueToLua(L *lua.LState, v gdbmi.Value) lua.LValue {
	switch v.Kind() {
	case gdbmi.KindNull:
		return lua.LNil
	case gdbmi.KindBool:
		return lua.LBool(v.Bool())
	case gdbmi.KindNumber:
		if n, err := v.Int(); err == nil {
			return lua.LNumber(n)
		}
		return lua.LString(v.Text())
	case gdbmi.KindString:
		return lua.LString(v.Text())
	case gdbmi.KindList:
		table := L.NewTable()
		for _, item := range v.List() {
			table.Append(valueToLua(L, item))
		}
		return table
	case gdbmi.KindMap:
		return mapToLua(L, v.Map())
	default:
		return lua.LNil
	}
}

// luaBreakpoint implements ugdb.breakpoint(file, line).
func (r *Runtime) luaBreakpoint(L *lua.LState) int {
	file := L.CheckString(1)
	line := L.CheckInt(2)
	if err := r.host.ToggleBreakpoint(file, line); err != nil {
		L.Push(lua.LString(err.Error()))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

// luaPrint implements ugdb.print(text).
func (r *Runtime) luaPrint(L *lua.LState) int {
	r.host.Print(L.CheckString(1))
	return 0
}

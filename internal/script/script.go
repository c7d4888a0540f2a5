// Package script loads Lua project definitions.
//
// A project file declares tasks with task(name, fn) and uses the globals
// installed here to run other tasks, execute commands, log and touch files.
// Every global delegates to the session it was created for. Bodies are
// called as fn(config, project) and may return one value.
//
// A gopher-lua state is not goroutine-safe. All Lua code runs on the
// goroutine that called Load or Build; background process exits are handled
// in Go and never call back into Lua.
package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/thruflo/brigadier/internal/project"
	"github.com/thruflo/brigadier/internal/session"
	"github.com/thruflo/brigadier/internal/task"
)

// Extension is the file extension of project definitions.
const Extension = ".lua"

// Script is a Lua state bound to one session.
type Script struct {
	L *lua.LState

	session *session.Session
	bridge  *bridge
	project *lua.LTable
}

// New creates a Lua state with the standard libraries and the project
// globals installed.
func New(s *session.Session) *Script {
	L := lua.NewState()
	sc := &Script{
		L:       L,
		session: s,
		bridge:  &bridge{L: L},
	}
	registerErrorType(L)
	sc.project = sc.newProjectTable()
	sc.install()
	return sc
}

// Definition returns a session.Definition that loads the file at path.
func (sc *Script) Definition(path string) session.Definition {
	return func(*session.Session) error {
		return sc.Load(path)
	}
}

// Load runs the file at path, declaring its tasks.
func (sc *Script) Load(path string) error {
	sc.session.Trace("load", path)
	fn, err := sc.L.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, fromLua(err))
	}
	return sc.call(fn, 0)
}

// LoadString runs src as a chunk called name.
func (sc *Script) LoadString(name, src string) error {
	fn, err := sc.L.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", name, fromLua(err))
	}
	return sc.call(fn, 0)
}

// Close releases the Lua state.
func (sc *Script) Close() {
	sc.L.Close()
}

// call runs fn in protected mode and converts a raised value to an error.
func (sc *Script) call(fn *lua.LFunction, nret int, args ...lua.LValue) error {
	return fromLua(sc.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...))
}

// body adapts a Lua function to task.Body.
func (sc *Script) body(fn *lua.LFunction) task.Body {
	return func(_ *project.Context, cfg task.Config) (interface{}, error) {
		args := []lua.LValue{sc.bridge.toLua(map[string]interface{}(cfg)), sc.project}
		if err := sc.call(fn, 1, args...); err != nil {
			return nil, err
		}
		ret := sc.L.Get(-1)
		sc.L.Pop(1)
		return sc.bridge.toGo(ret), nil
	}
}

// newProjectTable builds the project value passed to bodies. Its config
// field reads and writes the shared project context directly.
func (sc *Script) newProjectTable() *lua.LTable {
	L := sc.L
	ctx := sc.session.Project()

	view := L.NewTable()
	mt := L.NewTable()
	L.SetField(mt, "__index", L.NewFunction(func(L *lua.LState) int {
		v, _ := ctx.Get(L.CheckString(2))
		L.Push(sc.bridge.toLua(v))
		return 1
	}))
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(2)
		if v := L.Get(3); v == lua.LNil {
			ctx.Delete(key)
		} else {
			ctx.Set(key, sc.bridge.toGo(v))
		}
		return 0
	}))
	L.SetMetatable(view, mt)

	t := L.NewTable()
	t.RawSetString("config", view)
	t.RawSetString("dir", lua.LString(ctx.Dir()))
	L.SetFuncs(t, map[string]lua.LGFunction{
		"keys": func(L *lua.LState) int {
			L.Push(sc.bridge.toLua(ctx.Keys()))
			return 1
		},
		"snapshot": func(L *lua.LState) int {
			L.Push(sc.bridge.toLua(ctx.Config()))
			return 1
		},
	})
	return t
}

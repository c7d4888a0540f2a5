package script

import (
	"os"
	"runtime"
	"strconv"

	lua "github.com/yuin/gopher-lua"

	"github.com/thruflo/brigadier/internal/fsutil"
	"github.com/thruflo/brigadier/internal/process"
	"github.com/thruflo/brigadier/internal/task"
)

// install sets the project globals.
func (sc *Script) install() {
	L := sc.L
	globals := map[string]lua.LGFunction{
		"task":  sc.declareTask,
		"run":   sc.runTask,
		"ran":   sc.ranTask,
		"tasks": sc.taskNames,

		"exec":       sc.exec,
		"background": sc.background,

		"log":     sc.logger(sc.session.Log),
		"info":    sc.logger(sc.session.Info),
		"trace":   sc.logger(sc.session.Trace),
		"fail":    sc.fail,
		"inspect": sc.inspect,

		"read":    sc.read,
		"write":   sc.write,
		"copy":    sc.copy,
		"mkdir":   sc.pathOp(sc.session.FS().Mkdir),
		"rmdir":   sc.pathOp(sc.session.FS().Rmdir),
		"exists":  sc.exists,
		"symlink": sc.symlink,
		"files":   sc.glob(sc.session.FS().Files),
		"dirs":    sc.glob(sc.session.FS().Dirs),
		"trim":    sc.text(fsutil.Trim),
		"strip":   sc.text(fsutil.Strip),

		"capability": sc.capability,
		"render":     sc.render,
	}
	for name, fn := range globals {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	L.SetGlobal("project", sc.project)
	L.SetGlobal("platform", sc.platform())
}

func (sc *Script) declareTask(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	sc.session.Task(name, sc.body(fn))
	return 0
}

func (sc *Script) runTask(L *lua.LState) int {
	name := L.CheckString(1)
	var cfg task.Config
	if t := L.OptTable(2, nil); t != nil {
		if m, ok := sc.bridge.toGo(t).(map[string]interface{}); ok {
			cfg = task.Config(m)
		} else {
			cfg = task.Config{}
		}
	}

	result, err := sc.session.Run(name, cfg)
	if err != nil {
		return raise(L, err)
	}
	L.Push(sc.bridge.toLua(result))
	return 1
}

func (sc *Script) ranTask(L *lua.LState) int {
	L.Push(lua.LNumber(sc.session.Ran(L.CheckString(1))))
	return 1
}

func (sc *Script) taskNames(L *lua.LState) int {
	L.Push(sc.bridge.toLua(sc.session.Names()))
	return 1
}

func (sc *Script) exec(L *lua.LState) int {
	command, args, opts := sc.commandArgs(L)
	out, err := sc.session.Exec(command, args, opts...)
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(out))
	return 1
}

func (sc *Script) background(L *lua.LState) int {
	command, args, opts := sc.commandArgs(L)
	p, err := sc.session.Background(command, args, opts...)
	if err != nil {
		return raise(L, err)
	}
	L.Push(sc.processTable(p))
	return 1
}

// commandArgs reads (command, [args], [options]). A non-sequence table in
// second position is taken as the options.
func (sc *Script) commandArgs(L *lua.LState) (string, []string, []process.Option) {
	command := L.CheckString(1)
	argv, optv := L.Get(2), L.Get(3)
	if t, ok := argv.(*lua.LTable); ok && optv == lua.LNil {
		if _, seq := sequenceLen(t); !seq {
			argv, optv = lua.LNil, t
		}
	}
	return command, sc.bridge.stringList(argv), sc.commandOptions(L, optv)
}

func (sc *Script) commandOptions(L *lua.LState, lv lua.LValue) []process.Option {
	if lv == lua.LNil {
		return nil
	}
	t, ok := lv.(*lua.LTable)
	if !ok {
		L.ArgError(3, "options must be a table")
		return nil
	}

	var opts []process.Option
	if v := t.RawGetString("shell"); v != lua.LNil {
		opts = append(opts, process.WithShell(lua.LVAsBool(v)))
	}
	switch v := t.RawGetString("stdio").(type) {
	case lua.LBool:
		if v {
			opts = append(opts, process.WithStdio(process.StdioInherit))
		} else {
			opts = append(opts, process.WithStdio(process.StdioPipe))
		}
	case lua.LString:
		stdio, err := process.ParseStdio(string(v))
		if err != nil {
			L.ArgError(3, err.Error())
		}
		opts = append(opts, process.WithStdio(stdio))
	}
	if v := t.RawGetString("fail"); v != lua.LNil {
		opts = append(opts, process.WithFail(lua.LVAsBool(v)))
	}
	if v := t.RawGetString("watch"); v != lua.LNil {
		opts = append(opts, process.WithWatch(lua.LVAsBool(v)))
	}
	if v, ok := t.RawGetString("cwd").(lua.LString); ok {
		opts = append(opts, process.WithDir(string(v)))
	}
	if v, ok := t.RawGetString("env").(*lua.LTable); ok {
		opts = append(opts, process.WithEnv(sc.bridge.envList(v)...))
	}
	return opts
}

// processTable exposes a background process to Lua.
func (sc *Script) processTable(p *process.Process) *lua.LTable {
	L := sc.L
	t := L.NewTable()
	t.RawSetString("pid", lua.LNumber(p.PID()))
	t.RawSetString("command", lua.LString(p.Command))
	L.SetFuncs(t, map[string]lua.LGFunction{
		"wait": func(L *lua.LState) int {
			L.Push(lua.LNumber(p.Wait()))
			return 1
		},
		"kill": func(L *lua.LState) int {
			if err := p.Kill(); err != nil {
				return raise(L, err)
			}
			return 0
		},
		"output": func(L *lua.LState) int {
			L.Push(lua.LString(p.Output()))
			return 1
		},
		"running": func(L *lua.LState) int {
			select {
			case <-p.Done():
				L.Push(lua.LFalse)
			default:
				L.Push(lua.LTrue)
			}
			return 1
		},
	})
	return t
}

// values converts all arguments for the logger. Strings stay verbatim.
func (sc *Script) values(L *lua.LState) []interface{} {
	n := L.GetTop()
	args := make([]interface{}, 0, n)
	for i := 1; i <= n; i++ {
		args = append(args, sc.bridge.toGo(L.Get(i)))
	}
	return args
}

func (sc *Script) logger(fn func(args ...interface{})) lua.LGFunction {
	return func(L *lua.LState) int {
		fn(sc.values(L)...)
		return 0
	}
}

func (sc *Script) fail(L *lua.LState) int {
	return raise(L, sc.session.Fail(sc.values(L)...))
}

func (sc *Script) inspect(L *lua.LState) int {
	L.Push(lua.LString(sc.session.Inspect(sc.bridge.toGo(L.Get(1)))))
	return 1
}

func (sc *Script) read(L *lua.LState) int {
	content, err := sc.session.FS().Read(L.CheckString(1))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(content))
	return 1
}

func (sc *Script) write(L *lua.LState) int {
	name := L.CheckString(1)
	content := L.CheckString(2)
	if err := sc.session.FS().Write(name, []byte(content), sc.writeOptions(L, 3)...); err != nil {
		return raise(L, err)
	}
	return 0
}

func (sc *Script) copy(L *lua.LState) int {
	from := L.CheckString(1)
	to := L.CheckString(2)
	if err := sc.session.FS().Copy(from, to, sc.writeOptions(L, 3)...); err != nil {
		return raise(L, err)
	}
	return 0
}

// writeOptions reads {mode = 0644 | "0644", strip = bool} at position n.
func (sc *Script) writeOptions(L *lua.LState, n int) []fsutil.WriteOption {
	t := L.OptTable(n, nil)
	if t == nil {
		return nil
	}

	var opts []fsutil.WriteOption
	switch v := t.RawGetString("mode").(type) {
	case lua.LNumber:
		opts = append(opts, fsutil.WithMode(os.FileMode(int64(v))))
	case lua.LString:
		mode, err := strconv.ParseUint(string(v), 8, 32)
		if err != nil {
			L.ArgError(n, "mode must be an octal string")
		}
		opts = append(opts, fsutil.WithMode(os.FileMode(mode)))
	}
	if lua.LVAsBool(t.RawGetString("strip")) {
		opts = append(opts, fsutil.WithStrip())
	}
	return opts
}

func (sc *Script) pathOp(fn func(string) error) lua.LGFunction {
	return func(L *lua.LState) int {
		if err := fn(L.CheckString(1)); err != nil {
			return raise(L, err)
		}
		return 0
	}
}

func (sc *Script) exists(L *lua.LState) int {
	L.Push(lua.LBool(sc.session.FS().Exists(L.CheckString(1))))
	return 1
}

func (sc *Script) symlink(L *lua.LState) int {
	if err := sc.session.FS().Symlink(L.CheckString(1), L.CheckString(2)); err != nil {
		return raise(L, err)
	}
	return 0
}

func (sc *Script) glob(fn func(string) ([]string, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		names, err := fn(L.CheckString(1))
		if err != nil {
			return raise(L, err)
		}
		L.Push(sc.bridge.toLua(names))
		return 1
	}
}

func (sc *Script) text(fn func(string) string) lua.LGFunction {
	return func(L *lua.LState) int {
		L.Push(lua.LString(fn(L.CheckString(1))))
		return 1
	}
}

// capability returns nil for an absent renderer, otherwise a table whose
// render method calls it.
func (sc *Script) capability(L *lua.LState) int {
	name := L.CheckString(1)
	renderer, ok := sc.session.Capability(name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	t := L.NewTable()
	t.RawSetString("name", lua.LString(name))
	t.RawSetString("render", L.NewFunction(func(L *lua.LState) int {
		// Accept both cap.render(input) and cap:render(input).
		first := 1
		if L.Get(1) == t {
			first = 2
		}
		out, err := renderer.Render(L.CheckString(first), sc.bridge.toGo(L.Get(first+1)))
		if err != nil {
			return raise(L, err)
		}
		L.Push(lua.LString(out))
		return 1
	}))
	L.Push(t)
	return 1
}

func (sc *Script) render(L *lua.LState) int {
	out, err := sc.session.Render(L.CheckString(1), L.CheckString(2), sc.bridge.toGo(L.Get(3)))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(out))
	return 1
}

// platform describes the host: the current GOOS is a true field.
func (sc *Script) platform() *lua.LTable {
	t := sc.L.NewTable()
	t.RawSetString(runtime.GOOS, lua.LTrue)
	t.RawSetString("os", lua.LString(runtime.GOOS))
	t.RawSetString("arch", lua.LString(runtime.GOARCH))
	return t
}

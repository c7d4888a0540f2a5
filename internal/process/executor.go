// Package process runs external commands for task bodies.
//
// Exec blocks until the command exits and fails fast on a nonzero status.
// Background starts a command and returns immediately; the child is killed
// by an exit hook if the parent exits first, and its own exit is observed on
// a dedicated goroutine.
package process

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/thruflo/brigadier/internal/lifecycle"
	"github.com/thruflo/brigadier/internal/logging"
)

// Executor starts commands on behalf of one build session.
type Executor struct {
	log  *logging.Logger
	life *lifecycle.Lifecycle

	shell string
	dir   string
	env   []string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	mu    sync.Mutex
	procs map[*Process]struct{}
	wg    sync.WaitGroup
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithShellPath overrides the shell used when shell interpretation is on.
func WithShellPath(path string) ExecutorOption {
	return func(e *Executor) {
		e.shell = path
	}
}

// WithBaseDir sets the directory commands run in.
func WithBaseDir(dir string) ExecutorOption {
	return func(e *Executor) {
		e.dir = dir
	}
}

// WithBaseEnv adds KEY=VALUE entries to every child's environment.
func WithBaseEnv(env ...string) ExecutorOption {
	return func(e *Executor) {
		e.env = append(e.env, env...)
	}
}

// WithStreams replaces the parent streams inherited by children. Nil
// arguments keep the process's own stream.
func WithStreams(stdin io.Reader, stdout, stderr io.Writer) ExecutorOption {
	return func(e *Executor) {
		if stdin != nil {
			e.stdin = stdin
		}
		if stdout != nil {
			e.stdout = stdout
		}
		if stderr != nil {
			e.stderr = stderr
		}
	}
}

// NewExecutor creates an Executor that logs through log and registers
// background exit hooks on life.
func NewExecutor(log *logging.Logger, life *lifecycle.Lifecycle, opts ...ExecutorOption) *Executor {
	e := &Executor{
		log:    log,
		life:   life,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		procs:  make(map[*Process]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exec runs command to completion. With StdioPipe the captured standard
// output is returned; otherwise the result is empty. When fail is disabled,
// errors are swallowed and whatever was captured is returned.
func (e *Executor) Exec(command string, args []string, opts ...Option) (string, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	command, args = splitCommand(command, args, o)

	e.log.Trace(traceLine(command, args, o, len(opts) > 0)...)
	defer e.log.Indent()()

	cmd := e.command(command, args, o)
	var stdout, stderr bytes.Buffer
	e.wire(cmd, o, &stdout, &stderr)

	if err := cmd.Run(); err != nil {
		if !o.fail {
			e.log.Trace("ignored:", err)
			return stdout.String(), nil
		}
		return "", newCommandFailed(command, args, err, stderr.String())
	}

	return stdout.String(), nil
}

// Background starts command without waiting for it.
func (e *Executor) Background(command string, args []string, opts ...Option) (*Process, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	command, args = splitCommand(command, args, o)

	e.log.Trace(append([]interface{}{"background"}, traceLine(command, args, o, len(opts) > 0)...)...)

	p := &Process{
		Command: command,
		Args:    args,
		indent:  e.log.IndentLevel(),
		done:    make(chan struct{}),
	}
	p.cmd = e.command(command, args, o)
	e.wire(p.cmd, o, &p.stdout, &p.stderr)

	if err := p.cmd.Start(); err != nil {
		cf := newCommandFailed(command, args, err, "")
		if o.fail {
			return nil, cf
		}
		e.log.Trace("ignored:", cf)
		p.finish(-1)
		return p, nil
	}

	p.kill = func() error { return e.kill(p) }
	p.removeHook = e.life.Hooks().Prepend(func(int) {
		if err := p.Kill(); err != nil {
			e.log.Trace("background", command, "kill:", err)
		}
	})

	e.track(p)
	go e.wait(p, o)

	return p, nil
}

// wait observes the child's exit and applies the fail and watch options.
func (e *Executor) wait(p *Process, o options) {
	defer e.untrack(p)

	err := p.cmd.Wait()
	code := 0
	if err != nil {
		code = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
	}
	if p.wasKilled() {
		code = 0
	}

	p.removeHook()
	p.finish(code)

	if code != 0 && o.fail {
		e.life.Fail(newCommandFailed(p.Command, p.Args, err, p.stderr.String()))
		return
	}

	e.log.TraceAt(p.indent, "background", p.Command, "exit code", code)
	if o.watch {
		e.life.Exit(code)
	}
}

// Wait blocks until every background process started so far has exited and
// its exit handling has run.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// Running returns the number of live background processes.
func (e *Executor) Running() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.procs)
}

func (e *Executor) track(p *Process) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.procs[p] = struct{}{}
	e.wg.Add(1)
}

func (e *Executor) untrack(p *Process) {
	e.mu.Lock()
	delete(e.procs, p)
	e.mu.Unlock()
	e.wg.Done()
}

// command builds the exec.Cmd for one invocation.
func (e *Executor) command(command string, args []string, o options) *exec.Cmd {
	var cmd *exec.Cmd
	if o.shell {
		line := strings.Join(append([]string{command}, args...), " ")
		cmd = shellCommand(e.shell, line)
	} else {
		cmd = exec.Command(command, args...)
	}

	cmd.Dir = e.resolveDir(o.dir)
	if len(e.env) > 0 || len(o.env) > 0 {
		env := os.Environ()
		env = append(env, e.env...)
		env = append(env, o.env...)
		cmd.Env = env
	}
	return cmd
}

func (e *Executor) resolveDir(dir string) string {
	if dir == "" {
		return e.dir
	}
	if filepath.IsAbs(dir) || e.dir == "" {
		return dir
	}
	return filepath.Join(e.dir, dir)
}

// wire connects the child's streams according to the stdio mode.
func (e *Executor) wire(cmd *exec.Cmd, o options, stdout, stderr *bytes.Buffer) {
	switch o.stdio {
	case StdioInherit:
		cmd.Stdin = e.stdin
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
	case StdioPipe:
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	case StdioIgnore:
	}
}

// traceLine renders a command for the trace tier. Options are shown only
// when the caller passed some.
func traceLine(command string, args []string, o options, withOptions bool) []interface{} {
	line := []interface{}{command}
	if len(args) > 0 {
		line = append(line, strings.Join(args, " "))
	}
	if withOptions {
		line = append(line, o.String())
	}
	return line
}

// splitCommand splits "name arg arg" into fields when no shell will do it.
func splitCommand(command string, args []string, o options) (string, []string) {
	if o.shell || len(args) > 0 || !strings.ContainsAny(command, " \t") {
		return command, args
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return command, args
	}
	return fields[0], fields[1:]
}

// Package session binds the pieces of one build together. A Session owns the
// logger, lifecycle, project context, task engine, process executor, file
// helpers and renderers, and is the capability bundle handed to project
// definitions.
package session

import (
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/thruflo/brigadier/internal/capability"
	"github.com/thruflo/brigadier/internal/fsutil"
	"github.com/thruflo/brigadier/internal/lifecycle"
	"github.com/thruflo/brigadier/internal/logging"
	"github.com/thruflo/brigadier/internal/process"
	"github.com/thruflo/brigadier/internal/project"
	"github.com/thruflo/brigadier/internal/task"
)

// EnvSessionID names the environment variable carrying the session id to
// child processes.
const EnvSessionID = "BRIGADIER_SESSION"

// Definition declares tasks on a session. It is the Go form of a project file.
type Definition func(s *Session) error

// Session is the state of a single build.
type Session struct {
	// ID identifies the build and is exported to children as EnvSessionID.
	ID string

	log     *logging.Logger
	life    *lifecycle.Lifecycle
	project *project.Context
	engine  *task.Engine
	exec    *process.Executor
	fs      *fsutil.FS
	caps    *capability.Registry
}

// Options holds the dependencies of a Session. Zero values get defaults.
type Options struct {
	// Dir is the project directory. Commands and file helpers resolve
	// relative paths against it.
	Dir string
	// Logger defaults to a new logging.Logger.
	Logger *logging.Logger
	// Lifecycle defaults to one that reports through Logger and calls os.Exit.
	Lifecycle *lifecycle.Lifecycle
	// Capabilities defaults to capability.Builtin().
	Capabilities *capability.Registry
	// Shell overrides the platform shell.
	Shell string
	// Env is added to every child process environment.
	Env []string
	// Config seeds the project configuration.
	Config map[string]interface{}

	// Streams inherited by children. Nil means the process's own.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Session from opts.
func New(opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = logging.New()
	}
	life := opts.Lifecycle
	if life == nil {
		life = lifecycle.New(lifecycle.WithReporter(func(err error) {
			log.Error(err)
		}))
	}
	caps := opts.Capabilities
	if caps == nil {
		caps = capability.Builtin()
	}

	id := uuid.NewString()

	ctx := project.NewContext(opts.Dir)
	ctx.Merge(opts.Config)

	execOpts := []process.ExecutorOption{
		process.WithBaseDir(opts.Dir),
		process.WithBaseEnv(EnvSessionID + "=" + id),
		process.WithBaseEnv(opts.Env...),
	}
	if opts.Shell != "" {
		execOpts = append(execOpts, process.WithShellPath(opts.Shell))
	}
	if opts.Stdin != nil || opts.Stdout != nil || opts.Stderr != nil {
		execOpts = append(execOpts, process.WithStreams(opts.Stdin, opts.Stdout, opts.Stderr))
	}

	s := &Session{
		ID:      id,
		log:     log,
		life:    life,
		project: ctx,
		engine:  task.NewEngine(log, ctx, life),
		exec:    process.NewExecutor(log, life, execOpts...),
		fs:      fsutil.New(opts.Dir, log),
		caps:    caps,
	}
	log.Trace("session", id)
	return s
}

// Define runs def against the session.
func (s *Session) Define(def Definition) error {
	return def(s)
}

// Task declares a task.
func (s *Session) Task(name string, body task.Body) {
	s.engine.Declare(name, body)
}

// Run invokes a declared task with cfg.
func (s *Session) Run(name string, cfg task.Config) (interface{}, error) {
	return s.engine.Run(name, cfg)
}

// Ran returns how many times name has completed.
func (s *Session) Ran(name string) int {
	return s.engine.Ran(name)
}

// Has reports whether name is declared.
func (s *Session) Has(name string) bool {
	return s.engine.Has(name)
}

// Names returns the declared task names in declaration order.
func (s *Session) Names() []string {
	return s.engine.Names()
}

// Build runs name, or the default task, with the project configuration.
func (s *Session) Build(name string) (interface{}, error) {
	return s.engine.Build(name)
}

// Exec runs a command to completion.
func (s *Session) Exec(command string, args []string, opts ...process.Option) (string, error) {
	return s.exec.Exec(command, args, opts...)
}

// Background starts a command without waiting for it.
func (s *Session) Background(command string, args []string, opts ...process.Option) (*process.Process, error) {
	return s.exec.Background(command, args, opts...)
}

// Info logs at the upper tier.
func (s *Session) Info(args ...interface{}) {
	s.log.Info(args...)
}

// Log logs at the base tier.
func (s *Session) Log(args ...interface{}) {
	s.log.Log(args...)
}

// Trace logs at the lower tier.
func (s *Session) Trace(args ...interface{}) {
	s.log.Trace(args...)
}

// Inspect returns a structural rendering of v.
func (s *Session) Inspect(v interface{}) string {
	return logging.Inspect(v)
}

// Fail returns an error whose message joins args the way the logger does.
// Returning it from a body ends the build with exit code 1.
func (s *Session) Fail(args ...interface{}) error {
	return errors.New(logging.Join(args...))
}

// FS returns the file helpers rooted at the project directory.
func (s *Session) FS() *fsutil.FS {
	return s.fs
}

// Capabilities returns the renderer registry.
func (s *Session) Capabilities() *capability.Registry {
	return s.caps
}

// Capability looks up an optional renderer.
func (s *Session) Capability(name string) (capability.Renderer, bool) {
	return s.caps.Lookup(name)
}

// Render renders input with the named renderer.
func (s *Session) Render(name, input string, data interface{}) (string, error) {
	return s.caps.Render(name, input, data)
}

// Project returns the shared project context.
func (s *Session) Project() *project.Context {
	return s.project
}

// Config returns a copy of the project configuration.
func (s *Session) Config() map[string]interface{} {
	return s.project.Config()
}

// Logger returns the session logger.
func (s *Session) Logger() *logging.Logger {
	return s.log
}

// Lifecycle returns the session lifecycle.
func (s *Session) Lifecycle() *lifecycle.Lifecycle {
	return s.life
}

// Wait blocks until every background process has exited.
func (s *Session) Wait() {
	s.exec.Wait()
}

// Finish ends the build with the outcome err and returns the exit code. A
// successful build first waits for its background processes. If the
// lifecycle has already exited, its code wins. Otherwise err is printed and
// the exit hooks run.
func (s *Session) Finish(err error) int {
	if err == nil {
		s.exec.Wait()
	}
	if exited, code := s.life.Exited(); exited {
		return code
	}

	code := lifecycle.ExitCode(err)
	if err != nil {
		s.log.Error(err)
	}
	s.life.Finalize(code)
	return code
}

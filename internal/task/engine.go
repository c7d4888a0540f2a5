// Package task implements the task registry and invocation engine.
//
// Tasks are named bodies declared by a project definition. Run invokes a body
// synchronously, logs its name, scopes the log indentation around it and counts
// completed invocations. There is no dependency graph and no reentrancy guard:
// a body orders its work by calling Run itself, and may recurse.
package task

import (
	"sync"

	"github.com/thruflo/brigadier/internal/lifecycle"
	"github.com/thruflo/brigadier/internal/logging"
	"github.com/thruflo/brigadier/internal/project"
)

// DefaultTask is built when no task name is given.
const DefaultTask = "default"

// Config is the per-invocation configuration passed to a body.
type Config map[string]interface{}

// Body is the unit of work behind a task name.
type Body func(ctx *project.Context, cfg Config) (interface{}, error)

// Engine stores declared tasks and their run counts.
type Engine struct {
	log     *logging.Logger
	project *project.Context
	life    *lifecycle.Lifecycle

	mu    sync.RWMutex
	tasks map[string]Body
	order []string
	runs  map[string]int
}

// NewEngine creates an Engine whose bodies receive ctx.
func NewEngine(log *logging.Logger, ctx *project.Context, life *lifecycle.Lifecycle) *Engine {
	return &Engine{
		log:     log,
		project: ctx,
		life:    life,
		tasks:   make(map[string]Body),
		runs:    make(map[string]int),
	}
}

// Declare registers body under name, replacing any earlier declaration.
func (e *Engine) Declare(name string, body Body) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.tasks[name]; !ok {
		e.order = append(e.order, name)
	}
	e.tasks[name] = body
}

// Has reports whether name is declared.
func (e *Engine) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.tasks[name]
	return ok
}

// Names returns declared task names in declaration order.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.order...)
}

// Run invokes the task declared under name with cfg and returns its result.
// The run count is incremented only when the body returns without error.
func (e *Engine) Run(name string, cfg Config) (interface{}, error) {
	e.mu.RLock()
	body, ok := e.tasks[name]
	e.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Name: name, Known: e.Names()}
	}

	result, err := e.invoke(name, body, cfg)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.runs[name]++
	e.mu.Unlock()

	return result, nil
}

// invoke logs the task boundary and calls body inside an indent scope.
func (e *Engine) invoke(name string, body Body, cfg Config) (interface{}, error) {
	e.log.Info(name)
	if len(cfg) > 0 {
		e.log.Trace(logging.Inspect(map[string]interface{}(cfg)))
	}
	if cfg == nil {
		cfg = Config{}
	}

	defer e.log.Indent()()
	return body(e.project, cfg)
}

// Ran returns how many times name has completed.
func (e *Engine) Ran(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.runs[name]
}

// Build runs the named task, or DefaultTask when name is empty, with the
// project configuration. It registers an exit hook that resets the log
// indentation and traces the exit code however the process ends.
func (e *Engine) Build(name string) (interface{}, error) {
	if name == "" {
		if !e.Has(DefaultTask) {
			return nil, ErrNoDefaultTask
		}
		name = DefaultTask
	}

	e.life.Hooks().Append(func(code int) {
		e.log.SetIndentLevel(0)
		e.log.Trace("exit", code)
	})

	return e.Run(name, Config(e.project.Config()))
}

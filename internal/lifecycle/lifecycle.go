// Package lifecycle owns process termination for a build session: the list
// of exit hooks, the exit function and signal forwarding.
//
// Hooks run exactly once, in list order, whichever path ends the process:
// a normal return from the driver, a fatal error, a watched background
// process exiting, or an interrupt.
package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Hook is called with the exit code the process is about to exit with.
type Hook func(code int)

type entry struct {
	fn Hook
}

// Hooks is an ordered list of exit hooks.
type Hooks struct {
	mu      sync.Mutex
	entries []*entry
}

// Prepend adds fn to the front of the list. The returned function removes it.
func (h *Hooks) Prepend(fn Hook) func() {
	e := &entry{fn: fn}
	h.mu.Lock()
	h.entries = append([]*entry{e}, h.entries...)
	h.mu.Unlock()
	return func() { h.remove(e) }
}

// Append adds fn to the end of the list. The returned function removes it.
func (h *Hooks) Append(fn Hook) func() {
	e := &entry{fn: fn}
	h.mu.Lock()
	h.entries = append(h.entries, e)
	h.mu.Unlock()
	return func() { h.remove(e) }
}

func (h *Hooks) remove(e *entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, cur := range h.entries {
		if cur == e {
			h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered hooks.
func (h *Hooks) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Run drains the list and calls every hook with code. Hooks registered while
// running are not called.
func (h *Hooks) Run(code int) {
	h.mu.Lock()
	entries := h.entries
	h.entries = nil
	h.mu.Unlock()

	for _, e := range entries {
		e.fn(code)
	}
}

// ExitCoder is implemented by errors that carry a process exit code.
type ExitCoder interface {
	ExitCode() int
}

// ExitCode maps an error to a process exit code: 0 for nil, the code of an
// ExitCoder in the chain when positive, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) && coder.ExitCode() > 0 {
		return coder.ExitCode()
	}
	return 1
}

// Lifecycle runs exit hooks before handing over to the exit function.
type Lifecycle struct {
	hooks Hooks

	mu     sync.Mutex
	exited bool
	code   int
	exit   func(code int)
	report func(err error)
}

// Option configures a Lifecycle.
type Option func(*Lifecycle)

// WithExitFunc replaces os.Exit. Tests use it to observe the exit code.
func WithExitFunc(fn func(code int)) Option {
	return func(l *Lifecycle) {
		l.exit = fn
	}
}

// WithReporter sets the function that prints a fatal error before exit.
func WithReporter(fn func(err error)) Option {
	return func(l *Lifecycle) {
		l.report = fn
	}
}

// New creates a Lifecycle that exits with os.Exit.
func New(opts ...Option) *Lifecycle {
	l := &Lifecycle{
		exit:   os.Exit,
		report: func(error) {},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Hooks returns the hook list.
func (l *Lifecycle) Hooks() *Hooks {
	return &l.hooks
}

// Finalize runs the exit hooks with code without terminating. Only the first
// call to Finalize or Exit has an effect; it reports whether this call did.
func (l *Lifecycle) Finalize(code int) bool {
	l.mu.Lock()
	if l.exited {
		l.mu.Unlock()
		return false
	}
	l.exited = true
	l.code = code
	l.mu.Unlock()

	l.hooks.Run(code)
	return true
}

// Exit runs the exit hooks and calls the exit function with code.
func (l *Lifecycle) Exit(code int) {
	if l.Finalize(code) {
		l.exit(code)
	}
}

// Fail reports err and exits with its exit code.
func (l *Lifecycle) Fail(err error) {
	l.report(err)
	l.Exit(ExitCode(err))
}

// Exited reports whether the lifecycle has finished and with which code.
func (l *Lifecycle) Exited() (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exited, l.code
}

// Notify exits on the platform's termination signals until ctx is done. The
// exit code follows the shell convention of 128 plus the signal number.
func (l *Lifecycle) Notify(ctx context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, terminationSignals()...)

	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			l.Exit(signalExitCode(sig))
		case <-ctx.Done():
		}
	}()
}

func signalExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}

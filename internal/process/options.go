package process

import (
	"fmt"
	"strings"
)

// Stdio selects how a child's standard streams are wired.
type Stdio int

const (
	// StdioInherit shares the parent's stdin, stdout and stderr.
	StdioInherit Stdio = iota
	// StdioPipe captures stdout and stderr; stdin is the null device.
	StdioPipe
	// StdioIgnore connects every stream to the null device.
	StdioIgnore
)

func (s Stdio) String() string {
	switch s {
	case StdioInherit:
		return "inherit"
	case StdioPipe:
		return "pipe"
	case StdioIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("stdio(%d)", int(s))
	}
}

// ParseStdio accepts the names returned by Stdio.String.
func ParseStdio(name string) (Stdio, error) {
	switch strings.ToLower(name) {
	case "inherit", "":
		return StdioInherit, nil
	case "pipe":
		return StdioPipe, nil
	case "ignore":
		return StdioIgnore, nil
	default:
		return StdioInherit, fmt.Errorf("unknown stdio mode %q", name)
	}
}

type options struct {
	shell bool
	stdio Stdio
	fail  bool
	watch bool
	dir   string
	env   []string
}

func defaultOptions() options {
	return options{
		shell: true,
		stdio: StdioInherit,
		fail:  true,
	}
}

func (o options) String() string {
	return fmt.Sprintf("{shell: %t, stdio: %s, fail: %t, watch: %t}", o.shell, o.stdio, o.fail, o.watch)
}

// Option configures a single Exec or Background call.
type Option func(*options)

// WithShell runs the command through the platform shell. Enabled by default.
func WithShell(shell bool) Option {
	return func(o *options) {
		o.shell = shell
	}
}

// WithStdio selects stream wiring. StdioInherit by default.
func WithStdio(stdio Stdio) Option {
	return func(o *options) {
		o.stdio = stdio
	}
}

// WithFail controls whether a nonzero exit or spawn error is returned as a
// CommandFailedError. Enabled by default.
func WithFail(fail bool) Option {
	return func(o *options) {
		o.fail = fail
	}
}

// WithWatch makes the parent exit with the child's exit code once a
// background child exits. Ignored by Exec.
func WithWatch(watch bool) Option {
	return func(o *options) {
		o.watch = watch
	}
}

// WithDir sets the working directory, relative to the executor's directory.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithEnv adds KEY=VALUE entries to the child's environment.
func WithEnv(env ...string) Option {
	return func(o *options) {
		o.env = append(o.env, env...)
	}
}

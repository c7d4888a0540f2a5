package process

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandFailedError is returned when a command exits nonzero or cannot be
// started.
type CommandFailedError struct {
	Command string
	Args    []string
	// Code is the exit status, or -1 when the process never ran to an exit
	// status (spawn failure, killed by a signal).
	Code   int
	Stderr string
	Err    error
}

func (e *CommandFailedError) Error() string {
	name := e.Command
	if len(e.Args) > 0 {
		name += " " + strings.Join(e.Args, " ")
	}
	if e.Code < 0 && e.Err != nil {
		return fmt.Sprintf("%s: %v", name, e.Err)
	}
	msg := fmt.Sprintf("%s exit code %d", name, e.Code)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandFailedError) Unwrap() error {
	return e.Err
}

// ExitCode returns the child's exit status.
func (e *CommandFailedError) ExitCode() int {
	return e.Code
}

// IsCommandFailed checks if an error is a CommandFailedError.
func IsCommandFailed(err error) bool {
	var cf *CommandFailedError
	return errors.As(err, &cf)
}

func newCommandFailed(command string, args []string, err error, stderr string) *CommandFailedError {
	cf := &CommandFailedError{
		Command: command,
		Args:    args,
		Code:    -1,
		Stderr:  stderr,
		Err:     err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cf.Code = exitErr.ExitCode()
	}
	return cf
}

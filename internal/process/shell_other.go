//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

const defaultShell = "/bin/sh"

func shellCommand(shell, line string) *exec.Cmd {
	if shell == "" {
		shell = defaultShell
	}
	return exec.Command(shell, "-c", line)
}

// kill signals the direct child only; grandchildren are not reaped.
func (e *Executor) kill(p *Process) error {
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

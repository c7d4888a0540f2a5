//go:build windows

package process

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

func shellCommand(shell, line string) *exec.Cmd {
	if shell == "" {
		shell = os.Getenv("ComSpec")
	}
	if shell == "" {
		shell = "cmd.exe"
	}
	cmd := exec.Command(shell)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CmdLine: fmt.Sprintf(`%s /d /s /c "%s"`, shell, line),
	}
	return cmd
}

// kill removes the whole process tree rooted at the child.
func (e *Executor) kill(p *Process) error {
	_, err := e.Exec("taskkill",
		[]string{"/pid", strconv.Itoa(p.PID()), "/T", "/F"},
		WithShell(false),
		WithFail(false),
		WithStdio(StdioIgnore),
	)
	return err
}

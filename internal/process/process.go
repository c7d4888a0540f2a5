package process

import (
	"bytes"
	"errors"
	"os/exec"
	"sync"
)

// Process is a background child started by Executor.Background.
type Process struct {
	Command string
	Args    []string

	cmd    *exec.Cmd
	indent int

	stdout bytes.Buffer
	stderr bytes.Buffer

	kill       func() error
	removeHook func()

	mu     sync.Mutex
	killed bool
	code   int
	done   chan struct{}
}

// PID returns the OS process id, or 0 if the process never started.
func (p *Process) PID() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Done is closed once the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits and returns its exit code.
func (p *Process) Wait() int {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code
}

// Output returns the captured standard output once the process has exited.
// It is empty unless the process was started with StdioPipe.
func (p *Process) Output() string {
	<-p.done
	return p.stdout.String()
}

// Kill terminates the process. Killing an exited process is a no-op.
func (p *Process) Kill() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if p.kill == nil {
		return errors.New("process not started")
	}
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	return p.kill()
}

func (p *Process) wasKilled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

func (p *Process) finish(code int) {
	p.mu.Lock()
	p.code = code
	p.mu.Unlock()
	close(p.done)
}

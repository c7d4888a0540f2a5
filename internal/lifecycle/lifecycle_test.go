package lifecycle

import (
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeError struct{ code int }

func (e codeError) Error() string { return fmt.Sprintf("exit code %d", e.code) }
func (e codeError) ExitCode() int { return e.code }

func TestHooksOrder(t *testing.T) {
	var h Hooks
	var calls []string

	h.Append(func(int) { calls = append(calls, "appended") })
	h.Prepend(func(int) { calls = append(calls, "prepended") })
	h.Append(func(int) { calls = append(calls, "last") })

	h.Run(0)

	assert.Equal(t, []string{"prepended", "appended", "last"}, calls)
	assert.Equal(t, 0, h.Len())
}

func TestHooksRemove(t *testing.T) {
	var h Hooks
	called := false

	remove := h.Prepend(func(int) { called = true })
	require.Equal(t, 1, h.Len())
	remove()
	remove()

	h.Run(0)
	assert.False(t, called)
}

func TestHooksReceiveCode(t *testing.T) {
	var h Hooks
	got := -1
	h.Append(func(code int) { got = code })

	h.Run(7)

	assert.Equal(t, 7, got)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"exit coder", codeError{code: 3}, 3},
		{"wrapped exit coder", fmt.Errorf("task failed: %w", codeError{code: 2}), 2},
		{"non-positive code", codeError{code: -1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}

func TestLifecycleExitRunsHooksOnce(t *testing.T) {
	var exits []int
	l := New(WithExitFunc(func(code int) { exits = append(exits, code) }))

	hookRuns := 0
	l.Hooks().Append(func(int) { hookRuns++ })

	l.Exit(3)
	l.Exit(4)

	assert.Equal(t, []int{3}, exits)
	assert.Equal(t, 1, hookRuns)

	exited, code := l.Exited()
	assert.True(t, exited)
	assert.Equal(t, 3, code)
}

func TestLifecycleFinalizeDoesNotExit(t *testing.T) {
	exitCalled := false
	l := New(WithExitFunc(func(int) { exitCalled = true }))

	var got int
	l.Hooks().Append(func(code int) { got = code })

	assert.True(t, l.Finalize(5))
	assert.False(t, l.Finalize(6))
	assert.False(t, exitCalled)
	assert.Equal(t, 5, got)
}

func TestLifecycleFail(t *testing.T) {
	var reported error
	var exitCode int
	l := New(
		WithExitFunc(func(code int) { exitCode = code }),
		WithReporter(func(err error) { reported = err }),
	)

	err := codeError{code: 2}
	l.Fail(err)

	assert.Equal(t, err, reported)
	assert.Equal(t, 2, exitCode)
}

func TestSignalExitCode(t *testing.T) {
	assert.Equal(t, 130, signalExitCode(syscall.SIGINT))
}

package testutil

import (
	"testing"
	"time"
)

// ExitRecorder records exit codes in place of os.Exit.
type ExitRecorder struct {
	codes chan int
}

// NewExitRecorder creates an ExitRecorder.
func NewExitRecorder() *ExitRecorder {
	return &ExitRecorder{codes: make(chan int, 8)}
}

// Exit records code. It never blocks; codes beyond the buffer are dropped.
func (r *ExitRecorder) Exit(code int) {
	select {
	case r.codes <- code:
	default:
	}
}

// Await returns the next recorded code, failing the test after timeout.
func (r *ExitRecorder) Await(t *testing.T, timeout time.Duration) int {
	t.Helper()
	select {
	case code := <-r.codes:
		return code
	case <-time.After(timeout):
		t.Fatalf("no exit within %v", timeout)
		return -1
	}
}

// AssertNoExit fails the test if a code is recorded within wait.
func (r *ExitRecorder) AssertNoExit(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case code := <-r.codes:
		t.Errorf("unexpected exit with code %d", code)
	case <-time.After(wait):
	}
}

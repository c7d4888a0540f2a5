package testutil

import (
	"context"
	"testing"
	"time"
)

// Default timeouts for tests that wait on child processes.
const (
	// DefaultExitTimeout bounds how long a test waits for a background
	// child to exit and its exit handling to run.
	DefaultExitTimeout = 5 * time.Second

	// DefaultBuildTimeout bounds a whole build driven from a test.
	DefaultBuildTimeout = 30 * time.Second

	// DefaultTestBuffer is the buffer time subtracted from test deadline
	// to allow for cleanup operations before the test times out.
	DefaultTestBuffer = 2 * time.Second
)

// ContextWithTestDeadline creates a context that respects the test's deadline.
// It subtracts a buffer from the test deadline to allow time for cleanup.
// If the test has no deadline, it falls back to the provided fallback duration.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    ctx, cancel := testutil.ContextWithTestDeadline(t, time.Minute)
//	    defer cancel()
//	    life.Notify(ctx)
//	}
func ContextWithTestDeadline(t *testing.T, fallback time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return ContextWithTestDeadlineBuffer(t, fallback, DefaultTestBuffer)
}

// ContextWithTestDeadlineBuffer creates a context that respects the test's deadline
// with a custom buffer. If the test has no deadline, or the deadline minus
// the buffer has already passed, it uses the fallback duration.
func ContextWithTestDeadlineBuffer(t *testing.T, fallback, buffer time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()

	if deadline, ok := t.Deadline(); ok {
		adjustedDeadline := deadline.Add(-buffer)
		if time.Until(adjustedDeadline) > 0 {
			return context.WithDeadline(context.Background(), adjustedDeadline)
		}
	}

	return context.WithTimeout(context.Background(), fallback)
}

// BuildContext creates a context for a build driven by a test. It respects
// the test deadline if one is set, otherwise uses DefaultBuildTimeout.
func BuildContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return ContextWithTestDeadline(t, DefaultBuildTimeout)
}

package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContextWithTestDeadline_WithFallback(t *testing.T) {
	// Under go test there may be a test deadline; either it or the
	// fallback must produce a deadline in the future.
	ctx, cancel := ContextWithTestDeadline(t, 100*time.Millisecond)
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok, "context should have deadline")
	assert.Greater(t, time.Until(deadline).Seconds(), 0.0, "deadline should be in the future")
}

func TestContextWithTestDeadlineBuffer_LargeBufferUsesFallback(t *testing.T) {
	fallback := 200 * time.Millisecond
	ctx, cancel := ContextWithTestDeadlineBuffer(t, fallback, 1000*time.Hour)
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok, "context should have deadline")
	assert.InDelta(t, fallback.Seconds(), time.Until(deadline).Seconds(), 0.1)
}

func TestBuildContext(t *testing.T) {
	ctx, cancel := BuildContext(t)
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok, "context should have deadline")
	assert.Greater(t, time.Until(deadline).Seconds(), 0.0, "deadline should be in the future")
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := ContextWithTestDeadline(t, time.Minute)

	select {
	case <-ctx.Done():
		t.Fatal("context should not be done before cancel")
	default:
	}

	cancel()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("context should be done after cancel")
	}
}

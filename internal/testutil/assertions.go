package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thruflo/brigadier/internal/lifecycle"
)

// AssertLines asserts that output consists of exactly lines, each ending in
// a newline.
func AssertLines(t *testing.T, output fmt.Stringer, lines ...string) {
	t.Helper()
	want := ""
	if len(lines) > 0 {
		want = strings.Join(lines, "\n") + "\n"
	}
	assert.Equal(t, want, output.String(), "logged lines mismatch")
}

// AssertContainsLine asserts that output has a line equal to line.
func AssertContainsLine(t *testing.T, output fmt.Stringer, line string) {
	t.Helper()
	for _, l := range strings.Split(output.String(), "\n") {
		if l == line {
			return
		}
	}
	assert.Failf(t, "line not found", "%q not in output:\n%s", line, output.String())
}

// AssertExitCode asserts the exit code err maps to.
func AssertExitCode(t *testing.T, err error, expected int) {
	t.Helper()
	assert.Equal(t, expected, lifecycle.ExitCode(err), "exit code mismatch")
}

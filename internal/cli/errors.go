package cli

import (
	"errors"
	"fmt"
)

// UsageError reports a malformed invocation.
type UsageError struct {
	Message string
	Err     error
}

func (e *UsageError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// IsUsageError checks if an error is a UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// ExitError carries the exit code of a build whose failure has already been
// reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

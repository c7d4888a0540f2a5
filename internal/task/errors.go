package task

import (
	"errors"
	"fmt"
	"strings"
)

// NameSeparator joins task names in error messages.
const NameSeparator = "|"

// ErrNoDefaultTask is returned by Build when no name is given and no task
// named "default" is declared.
var ErrNoDefaultTask = errors.New("no default task")

// NotFoundError is returned when a task name has no declaration.
type NotFoundError struct {
	Name  string
	Known []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no such task %s in %s", e.Name, strings.Join(e.Known, NameSeparator))
}

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

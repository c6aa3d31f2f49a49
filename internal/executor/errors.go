package executor

import "fmt"

// CommandError is returned when a command cannot be started at all.
// Failures of a running command are reported through Result, not errors.
type CommandError struct {
	Command string
	Stage   string
	Cause   error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed at %s: %v", e.Command, e.Stage, e.Cause)
}

func (e *CommandError) Unwrap() error { return e.Cause }

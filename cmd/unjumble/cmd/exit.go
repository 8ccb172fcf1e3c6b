package cmd

import (
	"errors"
	"fmt"
)

// exitError is returned by commands that must end with a specific code.
// query exits 2 when any of its arguments has invalid characters.
type exitError struct{ code int }

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

// ExitCode extracts the exit code from an exitError.
// Returns -1 if err is not an exitError.
func ExitCode(err error) int {
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return -1
}

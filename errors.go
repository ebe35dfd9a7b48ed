package launchagent

import (
	"errors"
	"fmt"
)

// Common errors returned by launchagent operations
var (
	// ErrUnknownOption indicates a descriptor option key that is not recognized
	ErrUnknownOption = errors.New("launchagent: unknown descriptor option")

	// ErrNoLogFile indicates the service was configured without a log file
	ErrNoLogFile = errors.New("launchagent: no log file configured")

	// ErrHelperNotFound indicates a helper script was not found in the
	// configured helper directory
	ErrHelperNotFound = errors.New("launchagent: helper script not found")

	// ErrEntrypointMissing indicates the configured entrypoint does not exist
	ErrEntrypointMissing = errors.New("launchagent: entrypoint not found")
)

// OpError represents an error from a launchagent operation
type OpError struct {
	// Op is the operation that failed
	Op Op
	// Path is the file path or service label involved in the operation
	Path string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	return fmt.Sprintf("launchagent %s %q: %v", e.Op.String(), e.Path, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// MultiError aggregates multiple errors from bulk operations
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Unwrap returns the accumulated errors for error chain inspection
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

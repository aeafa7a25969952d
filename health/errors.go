package health

import "errors"

var (
	// ErrCheckTimeout indicates a single check attempt exceeded its time budget.
	ErrCheckTimeout = errors.New("health: check timed out")

	// ErrCheckPanic indicates a checker panicked during execution.
	ErrCheckPanic = errors.New("health: check panicked")

	// ErrCheckerNotFound indicates no checker is registered under the name.
	ErrCheckerNotFound = errors.New("health: checker not found")
)

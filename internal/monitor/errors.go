package monitor

import "errors"

// Errors reported by the command dispatcher. They describe a single
// user command going wrong and are never fatal to the dashboard.
var (
	ErrNoSuchProcess = errors.New("no such process")
	ErrPermission    = errors.New("permission denied")
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidPID    = errors.New("invalid pid")
	ErrMissingPID    = errors.New("missing pid")
	ErrNoSession     = errors.New("no active remote session")
)

package supervisor

import "errors"

var (
	ErrShuttingDown   = errors.New("supervisor: shutting down")
	ErrUnknownEntity  = errors.New("supervisor: unknown entity")
	ErrNotRunning     = errors.New("supervisor: command loop not running")
	ErrAlreadyRunning = errors.New("supervisor: command loop already running")
)

package server

import "errors"

// Monitor errors
var (
	ErrServerClosed         = errors.New("monitor is closed")
	ErrServerNotRunning     = errors.New("monitor is not running")
	ErrServerAlreadyRunning = errors.New("monitor is already running")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrBadEntityID          = errors.New("bad entity id")
)

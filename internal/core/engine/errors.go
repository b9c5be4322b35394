package engine

import "errors"

var (
	ErrNoRenderer = errors.New("engine: no renderer configured")
	ErrNoAssets   = errors.New("engine: no asset store configured")
	ErrNoInput    = errors.New("engine: no input source configured")
)

package assets

import "errors"

var (
	ErrBadPath     = errors.New("assets: path must look like ASSET:<pack>/<relative path>")
	ErrUnknownPack = errors.New("assets: unknown pack")
	ErrNotFound    = errors.New("assets: not found")
)

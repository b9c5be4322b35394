package entity

import (
	"errors"
	"fmt"
)

var (
	ErrCycle            = errors.New("entity: parent link would form a cycle")
	ErrBadSlot          = errors.New("entity: transform slot is not live")
	ErrUnknownComponent = errors.New("entity: no factory registered under that name")
	ErrDuplicateFactory = errors.New("entity: factory name already registered")
	ErrTerminated       = errors.New("entity: actor has terminated")
	ErrAlreadyStarted   = errors.New("entity: actor already started")
)

// ConstructError reports a component that could not be attached. The
// entity's component list is unchanged when it is returned.
type ConstructError struct {
	Component string
	Entity    ID
	Err       error
}

func (e *ConstructError) Error() string {
	return fmt.Sprintf("construct %s on entity %d: %v", e.Component, e.Entity, e.Err)
}

func (e *ConstructError) Unwrap() error { return e.Err }

// PanicError carries a value recovered from a component handler
type PanicError struct {
	Component string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("component %s panicked: %v", e.Component, e.Value)
}

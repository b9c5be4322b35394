package value

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Parse errors
var (
	ErrMissingValue    = errors.New("field has no value")
	ErrArity           = errors.New("wrong number of constructor arguments")
	ErrUnbalanced      = errors.New("unbalanced brackets")
	ErrUnexpectedToken = errors.New("unexpected token")
	ErrBadLiteral      = errors.New("malformed literal")
)

// Field errors
var (
	ErrMissingField = errors.New("missing required field")
	ErrWrongKind    = errors.New("field has wrong kind")
)

// ParseError reports where a definition failed to parse
type ParseError struct {
	Pos   lexer.Position
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%d:%d: %v", e.Pos.Line, e.Pos.Column, e.Err)
	}
	return fmt.Sprintf("%d:%d: %v near %q", e.Pos.Line, e.Pos.Column, e.Err, e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FieldError reports a required definition field that is absent or mistyped
type FieldError struct {
	Field string
	Want  Kind
	Got   Kind
	Err   error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrMissingField) {
		return fmt.Sprintf("field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("field %q: %v: want %s, got %s", e.Field, e.Err, e.Want, e.Got)
}

func (e *FieldError) Unwrap() error { return e.Err }

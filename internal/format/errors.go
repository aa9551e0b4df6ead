package format

import (
	"errors"
	"fmt"
)

// ErrUnterminatedLiteral is matched by every *Error reporting a string or
// block comment that runs to the end of the input.
var ErrUnterminatedLiteral = errors.New("unterminated literal")

// ErrorKind classifies fatal formatting failures.
type ErrorKind uint8

const (
	// KindUnterminatedLiteral: a quoted string or block comment has no closing delimiter.
	KindUnterminatedLiteral ErrorKind = iota + 1
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnterminatedLiteral:
		return "unterminated literal"
	default:
		return "unknown"
	}
}

// Error is returned when the input cannot be formatted. Offset is the byte
// offset of the construct that started the failure.
type Error struct {
	Kind   ErrorKind
	Offset int
	What   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("unterminated %s starting at offset %d", e.What, e.Offset)
}

func (e *Error) Unwrap() error {
	if e.Kind == KindUnterminatedLiteral {
		return ErrUnterminatedLiteral
	}
	return nil
}

func unterminated(what string, offset int) error {
	return &Error{Kind: KindUnterminatedLiteral, Offset: offset, What: what}
}

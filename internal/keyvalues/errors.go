package keyvalues

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the single problem a parse stopped at
type ErrorKind int

const (
	UnterminatedString ErrorKind = iota + 1
	UnexpectedToken
	NoMatchingRightBrace
	UnexpectedEOF
	// InvalidEscape is reserved for escape sequences inside quoted strings.
	// The lexer keeps backslashes verbatim, so it is never raised today.
	InvalidEscape
)

var (
	ErrUnterminatedString   = errors.New("unterminated string")
	ErrUnexpectedToken      = errors.New("unexpected token")
	ErrNoMatchingRightBrace = errors.New("no matching }")
	ErrUnexpectedEOF        = errors.New("unexpected end of input")
	ErrInvalidEscape        = errors.New("invalid escape sequence")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case UnterminatedString:
		return ErrUnterminatedString
	case UnexpectedToken:
		return ErrUnexpectedToken
	case NoMatchingRightBrace:
		return ErrNoMatchingRightBrace
	case UnexpectedEOF:
		return ErrUnexpectedEOF
	case InvalidEscape:
		return ErrInvalidEscape
	default:
		return nil
	}
}

func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a positioned lexer or builder failure. It matches the kind's
// sentinel through errors.Is.
type Error struct {
	Kind ErrorKind

	// Token is the offending token for UnexpectedToken, the opening brace for
	// NoMatchingRightBrace and the terminal token for UnexpectedEOF
	Token Token

	// Escape holds the character after the backslash for InvalidEscape
	Escape rune

	Line   int
	Column int
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnexpectedToken:
		return fmt.Sprintf("unexpected %s at line %d, column %d", e.Token, e.Line, e.Column)
	case InvalidEscape:
		return fmt.Sprintf("invalid escape sequence '\\%c' at line %d, column %d", e.Escape, e.Line, e.Column)
	default:
		return fmt.Sprintf("%s at line %d, column %d", e.Kind, e.Line, e.Column)
	}
}

func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

func newError(kind ErrorKind, t Token) *Error {
	return &Error{
		Kind:   kind,
		Token:  t,
		Line:   t.Line,
		Column: t.Column,
	}
}

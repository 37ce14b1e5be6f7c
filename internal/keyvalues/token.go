package keyvalues

import "fmt"

// TokenKind classifies a lexical unit of KeyValues text
type TokenKind int

const (
	LeftBrace TokenKind = iota + 1
	RightBrace
	StringLiteral
	EndOfInput
)

func (k TokenKind) String() string {
	switch k {
	case LeftBrace:
		return "{"
	case RightBrace:
		return "}"
	case StringLiteral:
		return "string"
	case EndOfInput:
		return "end of input"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a classified unit of input with its source position.
// Line and Column are 1-based and point at the token's first character.
type Token struct {
	Kind   TokenKind
	Text   string // literal content for StringLiteral, quotes excluded
	Line   int
	Column int
}

func (t Token) String() string {
	if t.Kind == StringLiteral {
		return fmt.Sprintf("%q", t.Text)
	}
	return t.Kind.String()
}

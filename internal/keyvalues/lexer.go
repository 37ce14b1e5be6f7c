package keyvalues

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Options tunes lexing. The zero value lexes plain KeyValues text.
type Options struct {
	// Comments treats "//" at the start of a token as a comment running to
	// the end of the line
	Comments bool
}

// Tokenize splits src into tokens. The result always ends with exactly one
// EndOfInput token positioned just after the last consumed character.
func Tokenize(src string) ([]Token, error) {
	return TokenizeWithOptions(src, Options{})
}

// TokenizeWithOptions is Tokenize with explicit lexer options
func TokenizeWithOptions(src string, opts Options) ([]Token, error) {
	l := &lexer{
		src:    src,
		opts:   opts,
		line:   1,
		column: 1,
	}
	return l.run()
}

type lexer struct {
	src    string
	opts   Options
	pos    int // byte offset of the next unread rune
	line   int
	column int
	tokens []Token
}

func (l *lexer) run() ([]Token, error) {
	for !l.atEnd() {
		r := l.peek()
		switch {
		case r == '{':
			l.emit(LeftBrace, "", l.line, l.column)
			l.advance()
		case r == '}':
			l.emit(RightBrace, "", l.line, l.column)
			l.advance()
		case r == '"':
			if err := l.quoted(); err != nil {
				return nil, err
			}
		case unicode.IsSpace(r):
			l.advance()
		case l.opts.Comments && strings.HasPrefix(l.src[l.pos:], "//"):
			l.comment()
		default:
			l.bare()
		}
	}

	l.emit(EndOfInput, "", l.line, l.column)
	return l.tokens, nil
}

// quoted consumes a string up to the next double quote. Backslashes are kept
// verbatim.
func (l *lexer) quoted() error {
	line, column := l.line, l.column
	l.advance()

	start := l.pos
	for !l.atEnd() && l.peek() != '"' {
		l.advance()
	}

	if l.atEnd() {
		return newError(UnterminatedString, Token{
			Kind:   StringLiteral,
			Text:   l.src[start:],
			Line:   line,
			Column: column,
		})
	}

	text := l.src[start:l.pos]
	l.advance()
	l.emit(StringLiteral, text, line, column)
	return nil
}

// bare consumes an unquoted token up to the next whitespace
func (l *lexer) bare() {
	line, column := l.line, l.column
	start := l.pos
	for !l.atEnd() && !unicode.IsSpace(l.peek()) {
		l.advance()
	}
	l.emit(StringLiteral, l.src[start:l.pos], line, column)
}

func (l *lexer) comment() {
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func (l *lexer) emit(kind TokenKind, text string, line, column int) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Text:   text,
		Line:   line,
		Column: column,
	})
}

func (l *lexer) atEnd() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) peek() rune {
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *lexer) advance() {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

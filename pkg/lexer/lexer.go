// Package lexer provides tokenization for Java type expressions.
//
// The discovery front end writes declared types the way javac prints them:
// primitive keywords, dotted binary names, array brackets, varargs and
// (ignored) generic arguments. The lexer turns such a string into tokens
// for the parser.
//
// Token Types:
//
//	IDENTIFIER - int, java, String, Outer$Inner
//	DOT        - name separator
//	ELLIPSIS   - varargs marker, equivalent to one array dimension
//	LBRACKET   - [
//	RBRACKET   - ]
//	LT, GT     - generic argument list
//	COMMA      - argument separator
//	QUESTION   - wildcard
package lexer

import (
	"encoding/json"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes a type expression.
type Lexer struct {
	input  string // The expression being tokenized
	pos    int    // Current byte position in input
	col    int    // Current column (0-indexed, in runes)
	tokens []Token
}

// New creates a new Lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{
		input:  input,
		tokens: make([]Token, 0),
	}
}

// Tokenize processes the entire input and returns all tokens, terminated by EOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}
	l.tokens = append(l.tokens, NewToken(EOF, "", l.col))
	return l.tokens, nil
}

// TokenizeJSON processes the input and returns tokens as a JSON array.
func (l *Lexer) TokenizeJSON() (string, error) {
	tokens, err := l.Tokenize()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(tokens)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tokens: %w", err)
	}
	return string(data), nil
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return r
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	l.col++
	return r
}

func (l *Lexer) emit(typ TokenType, value string, col int) {
	l.tokens = append(l.tokens, NewToken(typ, value, col))
}

func (l *Lexer) scanToken() error {
	start := l.col
	r := l.peek()

	switch {
	case unicode.IsSpace(r):
		l.advance()
		return nil
	case isIdentStart(r):
		l.scanIdentifier()
		return nil
	}

	l.advance()
	switch r {
	case '.':
		if l.hasPrefix("..") {
			l.advance()
			l.advance()
			l.emit(ELLIPSIS, "...", start)
			return nil
		}
		l.emit(DOT, ".", start)
	case '[':
		l.emit(LBRACKET, "[", start)
	case ']':
		l.emit(RBRACKET, "]", start)
	case '<':
		l.emit(LT, "<", start)
	case '>':
		l.emit(GT, ">", start)
	case ',':
		l.emit(COMMA, ",", start)
	case '?':
		l.emit(QUESTION, "?", start)
	case '&':
		l.emit(AMP, "&", start)
	case '@':
		l.emit(AT, "@", start)
	default:
		return fmt.Errorf("unexpected character %q at column %d in %q", r, start, l.input)
	}
	return nil
}

func (l *Lexer) hasPrefix(s string) bool {
	return len(l.input)-l.pos >= len(s) && l.input[l.pos:l.pos+len(s)] == s
}

func (l *Lexer) scanIdentifier() {
	start := l.col
	begin := l.pos
	for !l.isAtEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	l.emit(IDENTIFIER, l.input[begin:l.pos], start)
}

// isIdentStart mirrors Character.isJavaIdentifierStart for the characters
// that appear in practice.
func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

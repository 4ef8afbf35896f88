// Package lexer provides tokenization for Java type expressions.
package lexer

// TokenType represents the type of a token.
type TokenType string

// Token types for type expressions such as "java.util.Map<K, V>[]".
const (
	IDENTIFIER TokenType = "IDENTIFIER" // Java identifier, may contain '$' and non-ASCII letters
	DOT        TokenType = "DOT"        // .
	ELLIPSIS   TokenType = "ELLIPSIS"   // ... (varargs)
	LBRACKET   TokenType = "LBRACKET"   // [
	RBRACKET   TokenType = "RBRACKET"   // ]
	LT         TokenType = "LT"         // <
	GT         TokenType = "GT"         // >
	COMMA      TokenType = "COMMA"      // ,
	QUESTION   TokenType = "QUESTION"   // ? (wildcard)
	AMP        TokenType = "AMP"        // & (intersection bound)
	AT         TokenType = "AT"         // @ (type annotation)

	EOF TokenType = "EOF" // End of input
)

// Token represents a single token from the lexer.
type Token struct {
	Type   TokenType `json:"type"`
	Value  string    `json:"value"`
	Column int       `json:"col"`
}

// NewToken creates a new token with the given properties.
func NewToken(typ TokenType, value string, col int) Token {
	return Token{
		Type:   typ,
		Value:  value,
		Column: col,
	}
}

// IsIdentifier returns true if the token is an identifier.
func (t Token) IsIdentifier() bool {
	return t.Type == IDENTIFIER
}

// IsWord returns true if the token is the identifier word.
func (t Token) IsWord(word string) bool {
	return t.Type == IDENTIFIER && t.Value == word
}

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestTokenizeSimple(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenType
	}{
		{"int", []TokenType{IDENTIFIER, EOF}},
		{"java.lang.String", []TokenType{IDENTIFIER, DOT, IDENTIFIER, DOT, IDENTIFIER, EOF}},
		{"int[][]", []TokenType{IDENTIFIER, LBRACKET, RBRACKET, LBRACKET, RBRACKET, EOF}},
		{"String...", []TokenType{IDENTIFIER, ELLIPSIS, EOF}},
		{"Map<K, V>", []TokenType{IDENTIFIER, LT, IDENTIFIER, COMMA, IDENTIFIER, GT, EOF}},
		{"List<? extends Number>", []TokenType{IDENTIFIER, LT, QUESTION, IDENTIFIER, IDENTIFIER, GT, EOF}},
		{"", []TokenType{EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := New(tt.input).Tokenize()
			require.NoError(t, err)
			assert.Equal(t, tt.want, types(tokens))
		})
	}
}

func TestTokenizeIdentifiers(t *testing.T) {
	tokens, err := New("pkg.Outer$Inner").Tokenize()
	require.NoError(t, err)
	require.Len(t, tokens, 4)
	assert.Equal(t, "Outer$Inner", tokens[2].Value)
	assert.Equal(t, 4, tokens[2].Column)

	tokens, err = New("grüße.Käse_1").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, "grüße", tokens[0].Value)
	assert.Equal(t, "Käse_1", tokens[2].Value)
	assert.Equal(t, 6, tokens[2].Column, "columns count runes, not bytes")
}

func TestTokenizeNestedGenericsClose(t *testing.T) {
	tokens, err := New("List<List<String>>").Tokenize()
	require.NoError(t, err)
	assert.Equal(t, []TokenType{IDENTIFIER, LT, IDENTIFIER, LT, IDENTIFIER, GT, GT, EOF}, types(tokens))
}

func TestTokenizeRejectsUnexpected(t *testing.T) {
	_, err := New("int;").Tokenize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column 3")
}

func TestTokenizeJSON(t *testing.T) {
	out, err := New("int[]").TokenizeJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"IDENTIFIER","value":"int","col":0},
		{"type":"LBRACKET","value":"[","col":3},
		{"type":"RBRACKET","value":"]","col":4},
		{"type":"EOF","value":"","col":5}
	]`, out)
}

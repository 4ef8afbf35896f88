// Package parser converts type expressions and wire descriptors into
// structured form.
package parser

import (
	"fmt"
	"strings"

	"github.com/chazu/jniaccess/pkg/lexer"
)

// TypeExpr represents a parsed source-level type expression.
type TypeExpr struct {
	Name string     // "int", "java.lang.String", "pkg.Outer$Inner", or "?" for wildcards
	Args []TypeExpr // Generic arguments, kept for display only
	Dims int        // Array dimensions, including a trailing varargs marker
}

// IsArray returns true if the expression has at least one array dimension.
func (t TypeExpr) IsArray() bool {
	return t.Dims > 0
}

// Element returns the expression with one array dimension removed.
func (t TypeExpr) Element() TypeExpr {
	if t.Dims == 0 {
		return t
	}
	elem := t
	elem.Dims--
	return elem
}

// String renders the expression back in source form.
func (t TypeExpr) String() string {
	var b strings.Builder
	b.WriteString(t.Name)
	if len(t.Args) > 0 && t.Name != "?" {
		b.WriteByte('<')
		for i, arg := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(arg.String())
		}
		b.WriteByte('>')
	}
	b.WriteString(strings.Repeat("[]", t.Dims))
	return b.String()
}

// Parser consumes lexer tokens for one type expression.
type Parser struct {
	input  string
	tokens []lexer.Token
	pos    int
}

// ParseType parses a type expression such as "java.util.List<String>[]".
// Generic arguments are parsed and retained but carry no meaning for
// erasure-based consumers.
func ParseType(input string) (TypeExpr, error) {
	tokens, err := lexer.New(input).Tokenize()
	if err != nil {
		return TypeExpr{}, err
	}
	p := &Parser{input: input, tokens: tokens}
	expr, err := p.parseType()
	if err != nil {
		return TypeExpr{}, err
	}
	if !p.check(lexer.EOF) {
		return TypeExpr{}, p.errorf("unexpected %q after type", p.current().Value)
	}
	return expr, nil
}

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.NewToken(lexer.EOF, "", 0)
	}
	return p.tokens[p.pos]
}

func (p *Parser) check(typ lexer.TokenType) bool {
	return p.current().Type == typ
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(typ lexer.TokenType) (lexer.Token, error) {
	if !p.check(typ) {
		return lexer.Token{}, p.errorf("expected %s, got %s %q", typ, p.current().Type, p.current().Value)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q, column %d: %s", p.input, p.current().Column, fmt.Sprintf(format, args...))
}

func (p *Parser) skipAnnotations() error {
	for p.check(lexer.AT) {
		p.advance()
		if _, err := p.parseQualifiedName(); err != nil {
			return err
		}
	}
	return nil
}

// parseType := annotations QualifiedName [TypeArgs] {'[' ']'} ['...']
func (p *Parser) parseType() (TypeExpr, error) {
	if err := p.skipAnnotations(); err != nil {
		return TypeExpr{}, err
	}
	if p.check(lexer.QUESTION) {
		return p.parseWildcard()
	}

	name, err := p.parseQualifiedName()
	if err != nil {
		return TypeExpr{}, err
	}
	expr := TypeExpr{Name: name}

	if p.check(lexer.LT) {
		args, err := p.parseTypeArgs()
		if err != nil {
			return TypeExpr{}, err
		}
		expr.Args = args
	}

	for {
		if err := p.skipAnnotations(); err != nil {
			return TypeExpr{}, err
		}
		if !p.check(lexer.LBRACKET) {
			break
		}
		p.advance()
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return TypeExpr{}, err
		}
		expr.Dims++
	}

	if p.check(lexer.ELLIPSIS) {
		p.advance()
		expr.Dims++
	}

	return expr, nil
}

func (p *Parser) parseQualifiedName() (string, error) {
	first, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return "", err
	}
	parts := []string{first.Value}
	for p.check(lexer.DOT) {
		p.advance()
		next, err := p.expect(lexer.IDENTIFIER)
		if err != nil {
			return "", err
		}
		parts = append(parts, next.Value)
	}
	return strings.Join(parts, "."), nil
}

func (p *Parser) parseTypeArgs() ([]TypeExpr, error) {
	p.advance() // <
	var args []TypeExpr
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.check(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.GT); err != nil {
		return nil, err
	}
	return args, nil
}

// parseWildcard := '?' [('extends' | 'super') Type {'&' Type}]
func (p *Parser) parseWildcard() (TypeExpr, error) {
	p.advance() // ?
	expr := TypeExpr{Name: "?"}
	if p.current().IsWord("extends") || p.current().IsWord("super") {
		p.advance()
		bound, err := p.parseType()
		if err != nil {
			return TypeExpr{}, err
		}
		expr.Args = append(expr.Args, bound)
		for p.check(lexer.AMP) {
			p.advance()
			extra, err := p.parseType()
			if err != nil {
				return TypeExpr{}, err
			}
			expr.Args = append(expr.Args, extra)
		}
	}
	return expr, nil
}

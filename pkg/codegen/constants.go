package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/jniaccess/pkg/ir"
)

type renderedConstant struct {
	class   *ir.AccessedClass
	name    string
	literal string
}

// ConstantLiteral renders the C literal for a compile-time constant.
// Longs take the LL suffix and floats the f suffix; values C cannot spell
// directly (NaN, infinities, the most negative int and long) become
// constant expressions.
func ConstantLiteral(c *ir.Constant) (string, error) {
	bad := fmt.Errorf("%w: constant %s has value %v (%T)", ErrUnsupportedType, c.Name, c.Value, c.Value)

	switch c.Type.Kind {
	case ir.KindBoolean:
		v, ok := c.Value.(bool)
		if !ok {
			return "", bad
		}
		if v {
			return "JNI_TRUE", nil
		}
		return "JNI_FALSE", nil

	case ir.KindByte, ir.KindShort, ir.KindInt:
		v, ok := c.Value.(int64)
		if !ok {
			return "", bad
		}
		if v == math.MinInt32 {
			return "(-2147483647 - 1)", nil
		}
		return strconv.FormatInt(v, 10), nil

	case ir.KindLong:
		v, ok := c.Value.(int64)
		if !ok {
			return "", bad
		}
		if v == math.MinInt64 {
			return "(-9223372036854775807LL - 1)", nil
		}
		return strconv.FormatInt(v, 10) + "LL", nil

	case ir.KindFloat:
		v, ok := c.Value.(float64)
		if !ok {
			return "", bad
		}
		return floatLiteral(v, 32, "f"), nil

	case ir.KindDouble:
		v, ok := c.Value.(float64)
		if !ok {
			return "", bad
		}
		return floatLiteral(v, 64, ""), nil

	case ir.KindChar:
		v, ok := c.Value.(rune)
		if !ok || v < 0 || v > 0xFFFF {
			return "", bad
		}
		return charLiteral(v), nil

	case ir.KindDeclared:
		v, ok := c.Value.(string)
		if !ok || c.Type.Name != ir.StringClass {
			return "", bad
		}
		return stringLiteral(v), nil
	}
	return "", bad
}

func floatLiteral(v float64, bits int, suffix string) string {
	switch {
	case math.IsNaN(v):
		return "(0.0" + suffix + "/0.0" + suffix + ")"
	case math.IsInf(v, 1):
		return "(1.0" + suffix + "/0.0" + suffix + ")"
	case math.IsInf(v, -1):
		return "(-1.0" + suffix + "/0.0" + suffix + ")"
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + suffix
}

// escapeChar returns the escape for r inside a quote-delimited literal, or
// "" when r can be written as is.
func escapeChar(r rune, quote rune) string {
	switch r {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case '\\':
		return `\\`
	case quote:
		return `\` + string(quote)
	}
	if r < 0x20 || r == 0x7F {
		return fmt.Sprintf(`\%03o`, r)
	}
	return ""
}

func charLiteral(r rune) string {
	if r == 0 {
		return `'\0'`
	}
	if r > 0x7F {
		return fmt.Sprintf("0x%04X", r)
	}
	if esc := escapeChar(r, '\''); esc != "" {
		return "'" + esc + "'"
	}
	return "'" + string(r) + "'"
}

// stringLiteral escapes a Java string for C. NUL and control characters
// use three-digit octal escapes, so a following digit cannot extend them.
// Non-ASCII text is written as octal UTF-8 bytes.
func stringLiteral(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	prev := rune(0)
	for _, r := range s {
		switch {
		case r == '?' && prev == '?':
			// Breaks trigraphs such as "??=".
			sb.WriteString(`\?`)
		case r > 0x7F:
			for _, b := range []byte(string(r)) {
				fmt.Fprintf(&sb, `\%03o`, b)
			}
		default:
			if esc := escapeChar(r, '"'); esc != "" {
				sb.WriteString(esc)
			} else {
				sb.WriteRune(r)
			}
		}
		prev = r
	}
	sb.WriteByte('"')
	return sb.String()
}

// renderConstants renders every constant, skipping and reporting those that
// cannot be expressed.
func renderConstants(constants []*ir.Constant) ([]renderedConstant, []error) {
	var out []renderedConstant
	var errs []error
	for _, c := range constants {
		lit, err := ConstantLiteral(c)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: %w", c.Class.Name, c.Name, err))
			continue
		}
		out = append(out, renderedConstant{class: c.Class, name: constantName(c.Class.Name, c.Name), literal: lit})
	}
	return out, errs
}

package codegen

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// MangledPrefix starts every exported managed-to-native symbol.
const MangledPrefix = "Java"

// MangleName returns the exported symbol for a dotted qualified name such
// as "pkg.Holder.sum". Each segment is prefixed with '_' and escaped.
//
//	MangleName("a.b_c") == "Java_a_b_1c"
func MangleName(qualified string) string {
	var sb strings.Builder
	sb.WriteString(MangledPrefix)
	for _, segment := range strings.Split(qualified, ".") {
		sb.WriteByte('_')
		escapeSegment(&sb, segment)
	}
	return sb.String()
}

// MangleOverloaded returns the symbol for one member of an overload group:
// the plain mangled name, "__", then the escaped parameter descriptors.
//
//	MangleOverloaded("pkg.C.f", "Ljava/lang/String;I") == "Java_pkg_C_f__Ljava_lang_String_2I"
func MangleOverloaded(qualified, paramDescriptors string) string {
	return MangleName(qualified) + "__" + escapeSignature(paramDescriptors)
}

// escapeSegment writes one name segment. Only ASCII letters and digits pass
// through unchanged.
func escapeSegment(sb *strings.Builder, s string) {
	for _, r := range s {
		escapeRune(sb, r)
	}
}

// escapeSignature escapes parameter descriptors. '/' separates package
// segments and becomes '_'; everything else follows segment escaping.
func escapeSignature(desc string) string {
	var sb strings.Builder
	for _, r := range desc {
		if r == '/' {
			sb.WriteByte('_')
			continue
		}
		escapeRune(&sb, r)
	}
	return sb.String()
}

func escapeRune(sb *strings.Builder, r rune) {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		sb.WriteRune(r)
	case r == '_':
		sb.WriteString("_1")
	case r == ';':
		sb.WriteString("_2")
	case r == '[':
		sb.WriteString("_3")
	case r > 0xFFFF:
		hi, lo := utf16.EncodeRune(r)
		escapeCodeUnit(sb, hi)
		escapeCodeUnit(sb, lo)
	default:
		escapeCodeUnit(sb, r)
	}
}

// escapeCodeUnit writes "_0" and four hex digits, uppercase below 128 and
// lowercase above.
func escapeCodeUnit(sb *strings.Builder, u rune) {
	if u < 128 {
		fmt.Fprintf(sb, "_0%04X", u)
	} else {
		fmt.Fprintf(sb, "_0%04x", u)
	}
}

// cIdentifier converts a binary name into the identifier fragment used by
// helper function and cache symbol names: '.', '$' and any other character
// outside [A-Za-z0-9_] become '_'.
func cIdentifier(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// constantName returns the macro name of a constant, escaped the same way
// as exported symbols: "pkg.Outer$Inner", "MAX" gives "pkg_Outer_00024Inner_MAX".
func constantName(className, field string) string {
	return symbolPart(className + "." + field)
}

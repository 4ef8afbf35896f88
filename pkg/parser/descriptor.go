package parser

import (
	"fmt"
	"strings"
)

// FieldType is one decoded wire descriptor, e.g. "I" or "[Ljava/lang/String;".
type FieldType struct {
	Base      byte   // 'Z', 'C', 'B', 'S', 'I', 'J', 'F', 'D', 'V' or 'L'
	ClassName string // Internal name for 'L', e.g. "java/lang/String"
	Dims      int
}

// String renders the field type back as a descriptor.
func (f FieldType) String() string {
	var b strings.Builder
	b.WriteString(strings.Repeat("[", f.Dims))
	b.WriteByte(f.Base)
	if f.Base == 'L' {
		b.WriteString(f.ClassName)
		b.WriteByte(';')
	}
	return b.String()
}

// MethodDescriptor is a decoded method descriptor, e.g. "(ILjava/lang/String;)V".
type MethodDescriptor struct {
	Params []FieldType
	Return FieldType
}

// ParamDescriptors returns the concatenated parameter descriptors, the part
// used for overload disambiguation.
func (m MethodDescriptor) ParamDescriptors() string {
	var b strings.Builder
	for _, p := range m.Params {
		b.WriteString(p.String())
	}
	return b.String()
}

// String renders the descriptor back in wire form.
func (m MethodDescriptor) String() string {
	return "(" + m.ParamDescriptors() + ")" + m.Return.String()
}

// ParseFieldDescriptor decodes a single field descriptor. Void is rejected.
func ParseFieldDescriptor(desc string) (FieldType, error) {
	ft, n, err := decodeFieldType(desc, 0)
	if err != nil {
		return FieldType{}, err
	}
	if n != len(desc) {
		return FieldType{}, fmt.Errorf("descriptor %q: trailing data at offset %d", desc, n)
	}
	if ft.Base == 'V' {
		return FieldType{}, fmt.Errorf("descriptor %q: void is not a field type", desc)
	}
	return ft, nil
}

// ParseMethodDescriptor decodes a method descriptor.
func ParseMethodDescriptor(desc string) (MethodDescriptor, error) {
	if !strings.HasPrefix(desc, "(") {
		return MethodDescriptor{}, fmt.Errorf("descriptor %q: missing '('", desc)
	}
	var md MethodDescriptor
	pos := 1
	for {
		if pos >= len(desc) {
			return MethodDescriptor{}, fmt.Errorf("descriptor %q: missing ')'", desc)
		}
		if desc[pos] == ')' {
			pos++
			break
		}
		ft, next, err := decodeFieldType(desc, pos)
		if err != nil {
			return MethodDescriptor{}, err
		}
		if ft.Base == 'V' {
			return MethodDescriptor{}, fmt.Errorf("descriptor %q: void parameter at offset %d", desc, pos)
		}
		md.Params = append(md.Params, ft)
		pos = next
	}

	ret, next, err := decodeFieldType(desc, pos)
	if err != nil {
		return MethodDescriptor{}, err
	}
	if ret.Base == 'V' && ret.Dims > 0 {
		return MethodDescriptor{}, fmt.Errorf("descriptor %q: array of void", desc)
	}
	if next != len(desc) {
		return MethodDescriptor{}, fmt.Errorf("descriptor %q: trailing data at offset %d", desc, next)
	}
	md.Return = ret
	return md, nil
}

// ParseParamDescriptors decodes a bare concatenation of parameter
// descriptors, the form that follows "__" in an overloaded symbol.
func ParseParamDescriptors(desc string) ([]FieldType, error) {
	md, err := ParseMethodDescriptor("(" + desc + ")V")
	if err != nil {
		return nil, err
	}
	return md.Params, nil
}

func decodeFieldType(desc string, pos int) (FieldType, int, error) {
	var ft FieldType
	for pos < len(desc) && desc[pos] == '[' {
		ft.Dims++
		pos++
	}
	if pos >= len(desc) {
		return FieldType{}, pos, fmt.Errorf("descriptor %q: unexpected end", desc)
	}

	switch c := desc[pos]; c {
	case 'Z', 'C', 'B', 'S', 'I', 'J', 'F', 'D', 'V':
		ft.Base = c
		return ft, pos + 1, nil
	case 'L':
		end := strings.IndexByte(desc[pos:], ';')
		if end < 0 {
			return FieldType{}, pos, fmt.Errorf("descriptor %q: unterminated class name at offset %d", desc, pos)
		}
		name := desc[pos+1 : pos+end]
		if name == "" || strings.ContainsAny(name, ".[") {
			return FieldType{}, pos, fmt.Errorf("descriptor %q: invalid class name %q", desc, name)
		}
		ft.Base = 'L'
		ft.ClassName = name
		return ft, pos + end + 1, nil
	default:
		return FieldType{}, pos, fmt.Errorf("descriptor %q: unknown type code %q at offset %d", desc, c, pos)
	}
}

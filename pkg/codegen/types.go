package codegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/jniaccess/pkg/ir"
)

// ErrUnsupportedType is returned for a type outside the mappable kinds.
var ErrUnsupportedType = errors.New("unsupported type")

// TypeMapper derives the wire descriptor, native storage type and accessor
// family of semantic types. Results depend only on the type and the
// hierarchy it was created with.
type TypeMapper struct {
	types ir.Hierarchy
}

// NewTypeMapper creates a mapper that resolves string and throwable types
// through h.
func NewTypeMapper(h ir.Hierarchy) *TypeMapper {
	return &TypeMapper{types: h}
}

// Descriptor returns the wire descriptor of t, e.g. "I", "[J" or
// "Ljava/lang/String;". There is no fallback: unknown kinds fail.
func (m *TypeMapper) Descriptor(t ir.Type) (string, error) {
	switch t.Kind {
	case ir.KindDeclared:
		if t.Name == "" {
			return "", fmt.Errorf("%w: declared type without a name", ErrUnsupportedType)
		}
		return "L" + t.InternalName() + ";", nil
	case ir.KindArray:
		if t.Elem == nil || t.Elem.IsVoid() {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
		elem, err := m.Descriptor(*t.Elem)
		if err != nil {
			return "", err
		}
		return "[" + elem, nil
	default:
		if p, ok := primitiveRegistry[t.Kind]; ok {
			return string(p.descriptor), nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, t.Kind)
	}
}

// ParamDescriptors concatenates the descriptors of a parameter list, the
// form used for overload disambiguation.
func (m *TypeMapper) ParamDescriptors(params []ir.MethodParam) (string, error) {
	var sb strings.Builder
	for _, p := range params {
		d, err := m.Descriptor(p.Type)
		if err != nil {
			return "", fmt.Errorf("parameter %s: %w", p.SourceName, err)
		}
		sb.WriteString(d)
	}
	return sb.String(), nil
}

// MethodDescriptor returns "(<params>)<return>".
func (m *TypeMapper) MethodDescriptor(params []ir.MethodParam, ret ir.Type) (string, error) {
	args, err := m.ParamDescriptors(params)
	if err != nil {
		return "", err
	}
	r, err := m.Descriptor(ret)
	if err != nil {
		return "", fmt.Errorf("return type: %w", err)
	}
	return "(" + args + ")" + r, nil
}

// NativeType returns the native storage type of t. Anything that is not a
// scalar, void, string, throwable or primitive array maps to jobject.
func (m *TypeMapper) NativeType(t ir.Type) string {
	switch t.Kind {
	case ir.KindDeclared:
		switch {
		case m.IsString(t):
			return stringCType
		case m.IsThrowable(t):
			return throwableCType
		default:
			return objectCType
		}
	case ir.KindArray:
		if t.Elem != nil {
			if p, ok := primitiveRegistry[t.Elem.Kind]; ok && p.arrayType != "" {
				return p.arrayType
			}
		}
		return objectArrayType
	default:
		if p, ok := primitiveRegistry[t.Kind]; ok {
			return p.cType
		}
		return objectCType
	}
}

// AccessorTag returns the accessor family name of t: one of the scalar tags,
// "Void", or "Object" for every reference type.
func (m *TypeMapper) AccessorTag(t ir.Type) string {
	if p, ok := primitiveRegistry[t.Kind]; ok {
		return p.tag
	}
	return objectTag
}

// IsString reports whether t is the platform string type.
func (m *TypeMapper) IsString(t ir.Type) bool {
	return t.Kind == ir.KindDeclared && ir.IsSubtypeOf(m.types, t.Name, ir.StringClass)
}

// IsThrowable reports whether t is (transitively) a throwable type.
func (m *TypeMapper) IsThrowable(t ir.Type) bool {
	return t.Kind == ir.KindDeclared && ir.IsSubtypeOf(m.types, t.Name, ir.ThrowableClass)
}

// chainComplete reports whether the superclass chain of name reaches
// java.lang.Object through known types only.
func (m *TypeMapper) chainComplete(name string) bool {
	seen := make(map[string]bool)
	for name != "" && !seen[name] {
		seen[name] = true
		super, ok := m.types.Superclass(name)
		if !ok {
			return false
		}
		name = super
	}
	return name == ""
}

// castTo returns the cast prefix needed to assign a jobject result to cType.
func castTo(cType string) string {
	if cType == objectCType || !isReferenceCType(cType) {
		return ""
	}
	return "(" + cType + ") "
}

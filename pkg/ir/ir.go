// Package ir defines the element model code generation consumes.
//
// The model sits between the discovery JSON and the C emitters, providing:
//   - Resolved semantic types (every declared type is known to the hierarchy)
//   - Accessed classes, deduplicated by qualified name
//   - Accessed fields, methods and constructors with their sibling ordinals
//   - Resolved cache modes (DEFAULT never reaches the generators)
//
// A Model is built once per generation pass and never mutated afterwards.
package ir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedType is returned when a declared type is unknown to the hierarchy.
var ErrUnresolvedType = errors.New("unresolved type")

// ErrInvalidModel is returned for structurally invalid discovery input.
var ErrInvalidModel = errors.New("invalid element model")

// Kind discriminates semantic types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBoolean
	KindChar
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindVoid
	KindDeclared
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindChar:
		return "char"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindVoid:
		return "void"
	case KindDeclared:
		return "declared"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsPrimitive returns true for the scalar kinds and void.
func (k Kind) IsPrimitive() bool {
	return k >= KindBoolean && k <= KindVoid
}

// primitiveKinds maps Java keywords to kinds.
var primitiveKinds = map[string]Kind{
	"boolean": KindBoolean,
	"char":    KindChar,
	"byte":    KindByte,
	"short":   KindShort,
	"int":     KindInt,
	"long":    KindLong,
	"float":   KindFloat,
	"double":  KindDouble,
	"void":    KindVoid,
}

// PrimitiveKind returns the kind for a primitive keyword.
func PrimitiveKind(keyword string) (Kind, bool) {
	k, ok := primitiveKinds[keyword]
	return k, ok
}

// Type is a semantic type.
type Type struct {
	Kind Kind
	Name string // Binary name for KindDeclared, e.g. "java.lang.String" or "pkg.Outer$Inner"
	Elem *Type  // Element type for KindArray
}

// Primitive returns the type for a scalar kind or void.
func Primitive(k Kind) Type {
	return Type{Kind: k}
}

// Declared returns a declared reference type.
func Declared(name string) Type {
	return Type{Kind: KindDeclared, Name: name}
}

// ArrayOf returns an array type with the given element type.
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e}
}

// Void is the void type.
var Void = Primitive(KindVoid)

// InternalName returns the slash-separated binary name of a declared type.
func (t Type) InternalName() string {
	return strings.ReplaceAll(t.Name, ".", "/")
}

// IsVoid returns true for the void type.
func (t Type) IsVoid() bool {
	return t.Kind == KindVoid
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind || t.Name != o.Name {
		return false
	}
	if t.Kind == KindArray {
		return t.Elem != nil && o.Elem != nil && t.Elem.Equal(*o.Elem)
	}
	return true
}

func (t Type) String() string {
	switch t.Kind {
	case KindDeclared:
		return t.Name
	case KindArray:
		if t.Elem == nil {
			return "?[]"
		}
		return t.Elem.String() + "[]"
	default:
		return t.Kind.String()
	}
}

// CacheMode chooses between lookup-on-every-call and load-once globals.
type CacheMode int

const (
	CacheDefault CacheMode = iota // Resolved to a configured mode by the Builder
	CacheNone
	CacheEagerPersistent
)

func (m CacheMode) String() string {
	switch m {
	case CacheNone:
		return "NONE"
	case CacheEagerPersistent:
		return "EAGER_PERSISTENT"
	default:
		return "DEFAULT"
	}
}

// ParseCacheMode parses a cache mode name. The empty string means DEFAULT.
func ParseCacheMode(s string) (CacheMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "DEFAULT":
		return CacheDefault, nil
	case "NONE":
		return CacheNone, nil
	case "EAGER_PERSISTENT":
		return CacheEagerPersistent, nil
	default:
		return CacheDefault, fmt.Errorf("unknown cache mode %q", s)
	}
}

// ConstructorName is the reserved instance-initializer name.
const ConstructorName = "<init>"

// AccessedClass is a class referenced by at least one generated element.
// Identity is the qualified name.
type AccessedClass struct {
	Name string // Binary name, e.g. "pkg.Outer$Inner"
	Type Type
}

// InternalName returns the slash-separated binary name used by FindClass.
func (c *AccessedClass) InternalName() string {
	return c.Type.InternalName()
}

// MethodParam is one parameter. Order is significant.
type MethodParam struct {
	Name       string // C-safe name used in generated code
	SourceName string // Name as declared in Java
	Type       Type
}

// AccessedMethod is a method or constructor. Class is a back-reference only.
type AccessedMethod struct {
	Class       *AccessedClass
	Name        string
	Params      []MethodParam
	Return      Type
	Static      bool
	Constructor bool
	Ordinal     int // Position among the members of Class
	CacheMode   CacheMode
}

// IsInstance returns true when calls need an instance receiver.
func (m *AccessedMethod) IsInstance() bool {
	return !m.Static && !m.Constructor
}

// QualifiedName returns "pkg.Class.method".
func (m *AccessedMethod) QualifiedName() string {
	return m.Class.Name + "." + m.Name
}

// AccessedField is a field. Class is a back-reference only.
type AccessedField struct {
	Class     *AccessedClass
	Name      string
	Type      Type
	Static    bool
	Final     bool
	Ordinal   int
	CacheMode CacheMode
}

// QualifiedName returns "pkg.Class.field".
func (f *AccessedField) QualifiedName() string {
	return f.Class.Name + "." + f.Name
}

// ConstructorCall pairs a class with the constructor used to instantiate it.
type ConstructorCall struct {
	Class  *AccessedClass
	Method *AccessedMethod
}

// NativeMethod is a method declared native in Java and implemented in C.
type NativeMethod struct {
	Class  *AccessedClass
	Name   string
	Params []MethodParam
	Return Type
	Static bool
}

// QualifiedName returns "pkg.Class.method".
func (n *NativeMethod) QualifiedName() string {
	return n.Class.Name + "." + n.Name
}

// Constant is a static final field with a compile-time value.
type Constant struct {
	Class *AccessedClass
	Name  string
	Type  Type
	Value any // bool, int64, float64, rune or string depending on Type
}

// Element is an accessed member in discovery order.
type Element interface {
	Owner() *AccessedClass
	MemberOrdinal() int
	ElementName() string
}

func (m *AccessedMethod) Owner() *AccessedClass { return m.Class }
func (m *AccessedMethod) MemberOrdinal() int    { return m.Ordinal }
func (m *AccessedMethod) ElementName() string   { return m.QualifiedName() }
func (f *AccessedField) Owner() *AccessedClass  { return f.Class }
func (f *AccessedField) MemberOrdinal() int     { return f.Ordinal }
func (f *AccessedField) ElementName() string    { return f.QualifiedName() }

// Model is the complete element model for one generation pass.
type Model struct {
	Classes   []*AccessedClass // Unique, in first-reference order
	Elements  []Element        // Accessed fields, methods and constructors in discovery order
	Natives   []*NativeMethod
	Constants []*Constant
	Types     *TypeTable
}

// Class returns the accessed class with the given name.
func (m *Model) Class(name string) (*AccessedClass, bool) {
	for _, c := range m.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ElementError reports a problem with one element of the input.
type ElementError struct {
	Element string
	Err     error
}

func (e *ElementError) Error() string {
	return e.Element + ": " + e.Err.Error()
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tliron/commonlog"

	"github.com/chazu/jniaccess/pkg/ast"
)

var log = commonlog.GetLogger("jniaccess.ir")

// Options configures model construction.
type Options struct {
	// DefaultCacheMode replaces DEFAULT on annotated members. CacheDefault
	// here means CacheNone.
	DefaultCacheMode CacheMode
}

// Builder converts a discovery program into a Model.
type Builder struct {
	program *ast.Program
	opts    Options
	types   *TypeTable
	classes map[string]*AccessedClass
	model   *Model
	errors  []error
}

// NewBuilder creates a builder for the given program.
func NewBuilder(program *ast.Program, opts Options) *Builder {
	if opts.DefaultCacheMode == CacheDefault {
		opts.DefaultCacheMode = CacheNone
	}
	types := NewTypeTable(Builtins())
	types.DefineProgram(program)
	return &Builder{
		program: program,
		opts:    opts,
		types:   types,
		classes: make(map[string]*AccessedClass),
		model:   &Model{Types: types},
	}
}

// Build walks every class in declared order and returns the model together
// with one *ElementError per rejected member. Rejected members are left out
// of the model; everything else is still built.
func (b *Builder) Build() (*Model, []error) {
	for i := range b.program.Classes {
		b.buildClass(&b.program.Classes[i])
	}
	log.Debugf("built model: %d classes, %d elements, %d natives, %d constants, %d errors",
		len(b.model.Classes), len(b.model.Elements), len(b.model.Natives), len(b.model.Constants), len(b.errors))
	return b.model, b.errors
}

func (b *Builder) fail(element string, err error) {
	log.Debugf("rejecting %s: %v", element, err)
	b.errors = append(b.errors, &ElementError{Element: element, Err: err})
}

// class returns the AccessedClass for name, creating it on first reference.
func (b *Builder) class(name string) *AccessedClass {
	if c, ok := b.classes[name]; ok {
		return c
	}
	c := &AccessedClass{Name: name, Type: Declared(name)}
	b.classes[name] = c
	b.model.Classes = append(b.model.Classes, c)
	return c
}

func (b *Builder) buildClass(class *ast.Class) {
	if class.Name == "" {
		b.fail("<unnamed class>", fmt.Errorf("%w: class without a name", ErrInvalidModel))
		return
	}

	for ordinal := range class.Members {
		member := &class.Members[ordinal]
		element := memberLabel(class.Name, member)

		switch member.Kind {
		case ast.FieldMember:
			if member.IsAccessed() {
				b.buildField(class, member, ordinal, element)
			}
			if member.IsStatic() && member.IsFinal() && member.HasConstantValue() {
				b.buildConstant(class, member, element)
			}
		case ast.MethodMember:
			if member.IsNative() {
				b.buildNative(class, member, element)
			}
			if member.IsAccessed() {
				b.buildMethod(class, member, ordinal, element)
			}
		case ast.ConstructorMember:
			if member.IsAccessed() {
				b.buildConstructor(class, member, ordinal, element)
			}
		default:
			b.fail(element, fmt.Errorf("%w: unknown member kind %q", ErrInvalidModel, member.Kind))
		}
	}
}

func memberLabel(className string, m *ast.Member) string {
	if m.Kind == ast.ConstructorMember {
		return className + "." + ConstructorName
	}
	return className + "." + m.Name
}

func (b *Builder) cacheMode(m *ast.Member) (CacheMode, error) {
	mode, err := ParseCacheMode(m.Access.CacheMode)
	if err != nil {
		return CacheDefault, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if mode != CacheDefault {
		return mode, nil
	}
	if m.Access.PerformanceCritical {
		return CacheEagerPersistent, nil
	}
	return b.opts.DefaultCacheMode, nil
}

func (b *Builder) buildField(class *ast.Class, m *ast.Member, ordinal int, element string) {
	if m.Name == "" {
		b.fail(element, fmt.Errorf("%w: field without a name", ErrInvalidModel))
		return
	}
	typ, err := b.types.ParseTypeOf(m.Type)
	if err != nil {
		b.fail(element, err)
		return
	}
	if typ.IsVoid() {
		b.fail(element, fmt.Errorf("%w: field of type void", ErrInvalidModel))
		return
	}
	mode, err := b.cacheMode(m)
	if err != nil {
		b.fail(element, err)
		return
	}
	b.model.Elements = append(b.model.Elements, &AccessedField{
		Class:     b.class(class.Name),
		Name:      m.Name,
		Type:      typ,
		Static:    m.IsStatic(),
		Final:     m.IsFinal(),
		Ordinal:   ordinal,
		CacheMode: mode,
	})
}

func (b *Builder) buildMethod(class *ast.Class, m *ast.Member, ordinal int, element string) {
	if m.Name == "" || m.Name == ConstructorName {
		b.fail(element, fmt.Errorf("%w: method needs a simple name", ErrInvalidModel))
		return
	}
	ret, params, err := b.signature(m)
	if err != nil {
		b.fail(element, err)
		return
	}
	mode, err := b.cacheMode(m)
	if err != nil {
		b.fail(element, err)
		return
	}
	b.model.Elements = append(b.model.Elements, &AccessedMethod{
		Class:     b.class(class.Name),
		Name:      m.Name,
		Params:    params,
		Return:    ret,
		Static:    m.IsStatic(),
		Ordinal:   ordinal,
		CacheMode: mode,
	})
}

func (b *Builder) buildConstructor(class *ast.Class, m *ast.Member, ordinal int, element string) {
	if class.Kind == "interface" {
		b.fail(element, fmt.Errorf("%w: interfaces have no constructors", ErrInvalidModel))
		return
	}
	params, err := b.params(m.Params)
	if err != nil {
		b.fail(element, err)
		return
	}
	mode, err := b.cacheMode(m)
	if err != nil {
		b.fail(element, err)
		return
	}
	b.model.Elements = append(b.model.Elements, &AccessedMethod{
		Class:       b.class(class.Name),
		Name:        ConstructorName,
		Params:      params,
		Return:      Void,
		Constructor: true,
		Ordinal:     ordinal,
		CacheMode:   mode,
	})
}

func (b *Builder) buildNative(class *ast.Class, m *ast.Member, element string) {
	ret, params, err := b.signature(m)
	if err != nil {
		b.fail(element, err)
		return
	}
	b.model.Natives = append(b.model.Natives, &NativeMethod{
		Class:  b.class(class.Name),
		Name:   m.Name,
		Params: params,
		Return: ret,
		Static: m.IsStatic(),
	})
}

func (b *Builder) buildConstant(class *ast.Class, m *ast.Member, element string) {
	typ, err := b.types.ParseTypeOf(m.Type)
	if err != nil {
		b.fail(element, err)
		return
	}
	value, err := decodeConstant(typ, m.ConstantValue)
	if err != nil {
		b.fail(element, err)
		return
	}
	b.model.Constants = append(b.model.Constants, &Constant{
		Class: b.class(class.Name),
		Name:  m.Name,
		Type:  typ,
		Value: value,
	})
}

func (b *Builder) signature(m *ast.Member) (Type, []MethodParam, error) {
	retExpr := m.ReturnType
	if retExpr == "" {
		retExpr = "void"
	}
	ret, err := b.types.ParseTypeOf(retExpr)
	if err != nil {
		return Type{}, nil, err
	}
	params, err := b.params(m.Params)
	if err != nil {
		return Type{}, nil, err
	}
	return ret, params, nil
}

func (b *Builder) params(in []ast.Param) ([]MethodParam, error) {
	params := make([]MethodParam, 0, len(in))
	used := make(map[string]bool)
	for i, p := range in {
		typ, err := b.types.ParseTypeOf(p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i, err)
		}
		if typ.IsVoid() {
			return nil, fmt.Errorf("%w: parameter %d has type void", ErrInvalidModel, i)
		}
		name := SafeIdentifier(p.Name, i)
		for used[name] {
			name += "_"
		}
		used[name] = true
		params = append(params, MethodParam{Name: name, SourceName: p.Name, Type: typ})
	}
	return params, nil
}

// reservedNames are the locals generated bodies declare, plus C keywords.
var reservedNames = map[string]bool{
	"env": true, "instance": true, "class": true, "field": true, "method": true,
	"ctor": true, "result": true, "value": true, "cached": true, "message": true,
	"clazz": true, "local_class": true,
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true, "bool": true,
	"true": true, "false": true, "NULL": true,
}

// SafeIdentifier turns a source parameter name into a C identifier that
// cannot collide with generated locals. Characters outside [A-Za-z0-9_]
// become '_'; an empty name becomes "arg<index>".
func SafeIdentifier(name string, index int) string {
	if name == "" {
		return "arg" + strconv.Itoa(index)
	}
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()
	if reservedNames[out] || strings.HasPrefix(out, "c_") || strings.HasPrefix(out, "local_") {
		out += "_"
	}
	return out
}

// decodeConstant converts a JSON constant into the Go value matching typ:
// bool, int64, float64, rune or string.
func decodeConstant(typ Type, raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: constant value: %v", ErrInvalidModel, err)
	}

	switch typ.Kind {
	case KindBoolean:
		if bv, ok := v.(bool); ok {
			return bv, nil
		}
	case KindChar:
		switch cv := v.(type) {
		case string:
			if utf8.RuneCountInString(cv) == 1 {
				r, _ := utf8.DecodeRuneInString(cv)
				if r <= 0xFFFF {
					return r, nil
				}
			}
		case json.Number:
			n, err := cv.Int64()
			if err == nil && n >= 0 && n <= 0xFFFF {
				return rune(n), nil
			}
		}
	case KindByte, KindShort, KindInt, KindLong:
		if nv, ok := v.(json.Number); ok {
			n, err := strconv.ParseInt(nv.String(), 10, 64)
			if err == nil && fitsKind(typ.Kind, n) {
				return n, nil
			}
		}
	case KindFloat, KindDouble:
		switch fv := v.(type) {
		case json.Number:
			f, err := fv.Float64()
			if err == nil {
				return f, nil
			}
		case string:
			switch fv {
			case "NaN":
				return math.NaN(), nil
			case "Infinity":
				return math.Inf(1), nil
			case "-Infinity":
				return math.Inf(-1), nil
			}
		}
	case KindDeclared:
		if typ.Name == StringClass {
			if sv, ok := v.(string); ok {
				return sv, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: constant %s is not a valid %s", ErrInvalidModel, string(raw), typ)
}

func fitsKind(k Kind, n int64) bool {
	switch k {
	case KindByte:
		return n >= math.MinInt8 && n <= math.MaxInt8
	case KindShort:
		return n >= math.MinInt16 && n <= math.MaxInt16
	case KindInt:
		return n >= math.MinInt32 && n <= math.MaxInt32
	default:
		return true
	}
}

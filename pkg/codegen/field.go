package codegen

import (
	"fmt"
	"strings"

	"github.com/chazu/jniaccess/pkg/ir"
)

// FieldAccessor reads and, unless the field is final, writes one field.
type FieldAccessor struct {
	mapper     *TypeMapper
	field      *ir.AccessedField
	descriptor string
	cType      string
	tag        string
}

// NewFieldAccessor validates the field type and prepares the accessor.
func NewFieldAccessor(m *TypeMapper, f *ir.AccessedField) (*FieldAccessor, error) {
	desc, err := m.Descriptor(f.Type)
	if err != nil {
		return nil, err
	}
	return &FieldAccessor{
		mapper:     m,
		field:      f,
		descriptor: desc,
		cType:      m.NativeType(f.Type),
		tag:        m.AccessorTag(f.Type),
	}, nil
}

func (a *FieldAccessor) Shape() Shape                 { return ShapeFieldAccessor }
func (a *FieldAccessor) HostClass() *ir.AccessedClass { return a.field.Class }
func (a *FieldAccessor) CacheMode() ir.CacheMode      { return a.field.CacheMode }
func (a *FieldAccessor) Field() *ir.AccessedField     { return a.field }

// FunctionName returns the read function, the one every field has.
func (a *FieldAccessor) FunctionName() string {
	return functionName(functionPrefixRead, a.field.Class, a.field.Name)
}

func (a *FieldAccessor) writeName() string {
	return functionName(functionPrefixWrite, a.field.Class, a.field.Name)
}

func (a *FieldAccessor) writable() bool {
	return !a.field.Final
}

func (a *FieldAccessor) stringTyped() bool {
	return a.cType == stringCType
}

func (a *FieldAccessor) Functions() []string {
	names := []string{a.FunctionName()}
	if a.writable() {
		names = append(names, a.writeName())
		if a.stringTyped() {
			names = append(names, stringOverloadName(a.writeName()))
		}
	}
	return names
}

func (a *FieldAccessor) readSig() signature {
	return signature{returnType: a.cType, name: a.FunctionName(), instance: !a.field.Static}
}

func (a *FieldAccessor) writeSig() signature {
	return signature{
		returnType: "void",
		name:       a.writeName(),
		instance:   !a.field.Static,
		params:     []ir.MethodParam{{Name: "value", SourceName: "value", Type: a.field.Type}},
	}
}

func (a *FieldAccessor) Declarations(w *strings.Builder) {
	a.readSig().declare(w, a.mapper, false)
	if a.writable() {
		a.writeSig().declare(w, a.mapper, false)
		if a.stringTyped() {
			a.writeSig().declare(w, a.mapper, true)
		}
	}
}

func (a *FieldAccessor) Implementations(w *strings.Builder) {
	a.writeRead(w)
	if a.writable() {
		w.WriteByte('\n')
		a.writeWrite(w)
		if a.stringTyped() {
			w.WriteByte('\n')
			writeStringOverload(w, a.mapper, a.writeSig())
		}
	}
}

// target is the receiver of the accessor call: the class for static
// fields, the instance otherwise. The lookup family above uses the same
// static flag.
func (a *FieldAccessor) target(classExpr string) string {
	if a.field.Static {
		return classExpr
	}
	return "instance"
}

func (a *FieldAccessor) writeRead(w *strings.Builder) {
	a.readSig().write(w, a.mapper, false)
	w.WriteString(" {\n")
	l := newLookup(a.field.CacheMode, a.cType)
	class := l.class(w, a.field.Class)
	field := l.field(w, a.field, a.descriptor, class)
	l.finish(w, a.cType, fmt.Sprintf("%s(*env)->Get%s%sField(env, %s, %s);",
		castTo(a.cType), staticPart(a.field.Static), a.tag, a.target(class), field))
	w.WriteString("}\n")
}

func (a *FieldAccessor) writeWrite(w *strings.Builder) {
	a.writeSig().write(w, a.mapper, false)
	w.WriteString(" {\n")
	l := newLookup(a.field.CacheMode, "void")
	class := l.class(w, a.field.Class)
	field := l.field(w, a.field, a.descriptor, class)
	l.finish(w, "void", fmt.Sprintf("(*env)->Set%s%sField(env, %s, %s, value);",
		staticPart(a.field.Static), a.tag, a.target(class), field))
	w.WriteString("}\n")
}

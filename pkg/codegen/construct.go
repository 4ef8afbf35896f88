package codegen

import (
	"fmt"
	"strings"

	"github.com/chazu/jniaccess/pkg/ir"
)

// ObjectConstruction instantiates a class through one of its constructors.
type ObjectConstruction struct {
	methodBacked
	call  ir.ConstructorCall
	cType string
}

// NewObjectConstruction prepares the create wrapper for ctor.
func NewObjectConstruction(m *TypeMapper, ctor ir.ConstructorCall, overloaded bool) (*ObjectConstruction, error) {
	if !ctor.Method.Constructor {
		return nil, fmt.Errorf("%s is not a constructor", ctor.Method.QualifiedName())
	}
	b, err := newMethodBacked(m, ctor.Method, functionName(functionPrefixCreate, ctor.Class), overloaded)
	if err != nil {
		return nil, err
	}
	return &ObjectConstruction{
		methodBacked: b,
		call:         ctor,
		cType:        m.NativeType(ctor.Class.Type),
	}, nil
}

func (c *ObjectConstruction) Shape() Shape { return ShapeObjectConstruction }

func (c *ObjectConstruction) Functions() []string {
	return withStringOverload(c.mapper, []string{c.name}, c.name, c.method.Params)
}

func (c *ObjectConstruction) sig() signature {
	return signature{returnType: c.cType, name: c.name, params: c.method.Params}
}

func (c *ObjectConstruction) Declarations(w *strings.Builder) {
	c.sig().declare(w, c.mapper, false)
	if hasStringParam(c.mapper, c.method.Params) {
		c.sig().declare(w, c.mapper, true)
	}
}

func (c *ObjectConstruction) Implementations(w *strings.Builder) {
	c.sig().write(w, c.mapper, false)
	w.WriteString(" {\n")
	l := newLookup(c.method.CacheMode, c.cType)
	class := l.class(w, c.call.Class)
	ctor := l.method(w, c.method, c.descriptor, class, "ctor")
	l.finish(w, c.cType, fmt.Sprintf("%s(*env)->NewObject(env, %s, %s%s);", castTo(c.cType), class, ctor, arguments(c.method.Params)))
	w.WriteString("}\n")

	if hasStringParam(c.mapper, c.method.Params) {
		w.WriteByte('\n')
		writeStringOverload(w, c.mapper, c.sig())
	}
}

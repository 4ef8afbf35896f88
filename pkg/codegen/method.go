package codegen

import (
	"fmt"
	"strings"

	"github.com/chazu/jniaccess/pkg/ir"
)

// methodBacked carries what method invocation, construction and raising
// share: the resolved descriptor and the canonical function name.
type methodBacked struct {
	mapper     *TypeMapper
	method     *ir.AccessedMethod
	descriptor string
	paramDescs string
	name       string
}

// newMethodBacked resolves descriptors and picks the function name. When
// overloaded is set the name takes "__" and the escaped parameter
// descriptors, like an overloaded exported symbol.
func newMethodBacked(m *TypeMapper, method *ir.AccessedMethod, baseName string, overloaded bool) (methodBacked, error) {
	desc, err := m.MethodDescriptor(method.Params, method.Return)
	if err != nil {
		return methodBacked{}, err
	}
	params, _ := m.ParamDescriptors(method.Params)
	name := baseName
	if overloaded {
		name += "__" + escapeSignature(params)
	}
	return methodBacked{mapper: m, method: method, descriptor: desc, paramDescs: params, name: name}, nil
}

func (b methodBacked) HostClass() *ir.AccessedClass { return b.method.Class }
func (b methodBacked) CacheMode() ir.CacheMode      { return b.method.CacheMode }
func (b methodBacked) FunctionName() string         { return b.name }
func (b methodBacked) Method() *ir.AccessedMethod   { return b.method }

// MethodInvocation calls one static or instance method.
type MethodInvocation struct {
	methodBacked
	cType string
	tag   string
}

// NewMethodInvocation prepares the call wrapper for a non-constructor method.
func NewMethodInvocation(m *TypeMapper, method *ir.AccessedMethod, overloaded bool) (*MethodInvocation, error) {
	if method.Constructor {
		return nil, fmt.Errorf("%s: constructors are wrapped by object construction", method.QualifiedName())
	}
	b, err := newMethodBacked(m, method, functionName(functionPrefixCall, method.Class, method.Name), overloaded)
	if err != nil {
		return nil, err
	}
	return &MethodInvocation{
		methodBacked: b,
		cType:        m.NativeType(method.Return),
		tag:          m.AccessorTag(method.Return),
	}, nil
}

func (i *MethodInvocation) Shape() Shape { return ShapeMethodInvocation }

func (i *MethodInvocation) Functions() []string {
	return withStringOverload(i.mapper, []string{i.name}, i.name, i.method.Params)
}

func (i *MethodInvocation) sig() signature {
	return signature{returnType: i.cType, name: i.name, instance: i.method.IsInstance(), params: i.method.Params}
}

func (i *MethodInvocation) Declarations(w *strings.Builder) {
	i.sig().declare(w, i.mapper, false)
	if hasStringParam(i.mapper, i.method.Params) {
		i.sig().declare(w, i.mapper, true)
	}
}

func (i *MethodInvocation) Implementations(w *strings.Builder) {
	i.sig().write(w, i.mapper, false)
	w.WriteString(" {\n")
	l := newLookup(i.method.CacheMode, i.cType)
	class := l.class(w, i.method.Class)
	method := l.method(w, i.method, i.descriptor, class, "method")

	target := "instance"
	if i.method.Static {
		target = class
	}
	call := fmt.Sprintf("(*env)->Call%s%sMethod(env, %s, %s%s);",
		staticPart(i.method.Static), i.tag, target, method, arguments(i.method.Params))
	l.finish(w, i.cType, castTo(i.cType)+call)
	w.WriteString("}\n")

	if hasStringParam(i.mapper, i.method.Params) {
		w.WriteByte('\n')
		writeStringOverload(w, i.mapper, i.sig())
	}
}

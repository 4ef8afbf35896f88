package codegen

import (
	"fmt"
	"strings"

	"github.com/chazu/jniaccess/pkg/ir"
)

// Shape names one of the four binding shapes.
type Shape string

const (
	ShapeFieldAccessor      Shape = "field-accessor"
	ShapeMethodInvocation   Shape = "method-invocation"
	ShapeObjectConstruction Shape = "object-construction"
	ShapeExceptionRaise     Shape = "exception-raise"
)

// WrappedElement is one generated native-to-managed binding. The four
// implementations are FieldAccessor, MethodInvocation, ObjectConstruction
// and ExceptionRaise.
type WrappedElement interface {
	Shape() Shape
	HostClass() *ir.AccessedClass
	// FunctionName is the canonical function; overloads derive from it.
	FunctionName() string
	// Functions lists every function the element emits.
	Functions() []string
	CacheMode() ir.CacheMode
	Declarations(w *strings.Builder)
	Implementations(w *strings.Builder)
}

const (
	functionPrefixRead   = "read"
	functionPrefixWrite  = "write"
	functionPrefixCall   = "call"
	functionPrefixCreate = "create"
	functionPrefixThrow  = "throw"

	cStringParamPrefix    = "c_"
	cStringFunctionSuffix = "_cstr"
	indent                = "    "
)

// functionName builds "<prefix>_<class>[_<member>]".
func functionName(prefix string, class *ir.AccessedClass, member ...string) string {
	name := prefix + "_" + cIdentifier(class.Name)
	for _, m := range member {
		name += "_" + cIdentifier(m)
	}
	return name
}

// line writes one indented line.
func line(w *strings.Builder, depth int, format string, args ...any) {
	w.WriteString(strings.Repeat(indent, depth))
	fmt.Fprintf(w, format, args...)
	w.WriteByte('\n')
}

// signature is the C prototype of one generated function.
type signature struct {
	returnType string
	name       string
	instance   bool
	params     []ir.MethodParam
}

// write renders the prototype. With cStrings set, string parameters become
// raw character buffers and the name takes the "_cstr" suffix.
func (s signature) write(w *strings.Builder, m *TypeMapper, cStrings bool) {
	w.WriteString(s.returnType)
	w.WriteByte(' ')
	w.WriteString(s.name)
	if cStrings {
		w.WriteString(cStringFunctionSuffix)
	}
	w.WriteString("(JNIEnv *env")
	if s.instance {
		w.WriteString(", jobject instance")
	}
	for _, p := range s.params {
		if cStrings && m.IsString(p.Type) {
			w.WriteString(", " + rawStringCType + cStringParamPrefix + p.Name)
			continue
		}
		w.WriteString(", " + m.NativeType(p.Type) + " " + p.Name)
	}
	w.WriteByte(')')
}

func (s signature) declare(w *strings.Builder, m *TypeMapper, cStrings bool) {
	s.write(w, m, cStrings)
	w.WriteString(";\n")
}

// arguments renders ", a, b" for a call site.
func arguments(params []ir.MethodParam) string {
	var sb strings.Builder
	for _, p := range params {
		sb.WriteString(", ")
		sb.WriteString(p.Name)
	}
	return sb.String()
}

func hasStringParam(m *TypeMapper, params []ir.MethodParam) bool {
	for _, p := range params {
		if m.IsString(p.Type) {
			return true
		}
	}
	return false
}

// lookup emits the class and member handle resolution at the top of a body.
// Under CacheNone every handle is resolved inline with a NULL check and the
// class reference is a local one, released before every return; under
// CacheEagerPersistent the cached state record members are used directly.
type lookup struct {
	mode   ir.CacheMode
	fail   string
	locals []string
}

func newLookup(mode ir.CacheMode, returnType string) *lookup {
	return &lookup{mode: mode, fail: failureReturn(returnType)}
}

// release deletes every local reference the body holds so far.
func (l *lookup) release(w *strings.Builder, depth int) {
	for i := len(l.locals) - 1; i >= 0; i-- {
		line(w, depth, "(*env)->DeleteLocalRef(env, %s);", l.locals[i])
	}
}

// check bails out when symbol is NULL, leaving the pending exception.
func (l *lookup) check(w *strings.Builder, symbol string) {
	line(w, 1, "if (%s == NULL) {", symbol)
	l.release(w, 2)
	line(w, 2, "%s", l.fail)
	line(w, 1, "}")
}

// hold registers a local reference created by the body itself.
func (l *lookup) hold(local string) {
	l.locals = append(l.locals, local)
}

// finish writes the final call of a body. A value is returned directly
// when nothing needs releasing, otherwise it is held in result first.
func (l *lookup) finish(w *strings.Builder, returnType, call string) {
	switch {
	case returnType == "void":
		line(w, 1, "%s", call)
		l.release(w, 1)
	case len(l.locals) == 0:
		line(w, 1, "return %s", call)
	default:
		line(w, 1, "%s result = %s", returnType, call)
		l.release(w, 1)
		line(w, 1, "return result;")
	}
}

// class returns the expression holding the class handle.
func (l *lookup) class(w *strings.Builder, class *ir.AccessedClass) string {
	if l.mode == ir.CacheEagerPersistent {
		return cachedRef(classSymbol(class))
	}
	line(w, 1, "jclass class = (*env)->FindClass(env, \"%s\");", class.InternalName())
	l.check(w, "class")
	l.hold("class")
	return "class"
}

// field returns the expression holding the field handle.
func (l *lookup) field(w *strings.Builder, f *ir.AccessedField, descriptor, classExpr string) string {
	if l.mode == ir.CacheEagerPersistent {
		return cachedRef(fieldSymbol(f))
	}
	line(w, 1, "jfieldID field = (*env)->%s(env, %s, \"%s\", \"%s\");", fieldLookupFunc(f.Static), classExpr, f.Name, descriptor)
	l.check(w, "field")
	return "field"
}

// method returns the expression holding the method or constructor handle.
// local names the inline variable: "method" or "ctor".
func (l *lookup) method(w *strings.Builder, m *ir.AccessedMethod, descriptor, classExpr, local string) string {
	if l.mode == ir.CacheEagerPersistent {
		return cachedRef(methodSymbol(m))
	}
	line(w, 1, "jmethodID %s = (*env)->%s(env, %s, \"%s\", \"%s\");", local, methodLookupFunc(m.Static), classExpr, m.Name, descriptor)
	l.check(w, local)
	return local
}

func fieldLookupFunc(static bool) string {
	if static {
		return "GetStaticFieldID"
	}
	return "GetFieldID"
}

func methodLookupFunc(static bool) string {
	if static {
		return "GetStaticMethodID"
	}
	return "GetMethodID"
}

// staticPart returns "Static" for the static family of JNI functions.
func staticPart(static bool) string {
	if static {
		return "Static"
	}
	return ""
}

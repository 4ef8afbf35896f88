package codegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/jniaccess/pkg/ir"
)

// ErrNotThrowable is returned when a raise wrapper is requested for a class
// outside the java.lang.Throwable hierarchy.
var ErrNotThrowable = errors.New("class is not throwable")

// ExceptionRaise constructs and throws an exception instead of returning it.
//
// A constructor taking exactly one string is raised with ThrowNew and needs
// no constructor handle. Any other constructor is looked up, instantiated
// and passed to Throw.
type ExceptionRaise struct {
	methodBacked
	call ir.ConstructorCall
}

// NewExceptionRaise prepares the throw wrapper for ctor.
func NewExceptionRaise(m *TypeMapper, ctor ir.ConstructorCall, overloaded bool) (*ExceptionRaise, error) {
	if !m.IsThrowable(ctor.Class.Type) {
		return nil, fmt.Errorf("%w: %s", ErrNotThrowable, ctor.Class.Name)
	}
	b, err := newMethodBacked(m, ctor.Method, functionName(functionPrefixThrow, ctor.Class), overloaded)
	if err != nil {
		return nil, err
	}
	return &ExceptionRaise{methodBacked: b, call: ctor}, nil
}

func (e *ExceptionRaise) Shape() Shape { return ShapeExceptionRaise }

// messageOnly reports whether the constructor takes exactly one string.
func (e *ExceptionRaise) messageOnly() bool {
	params := e.method.Params
	return len(params) == 1 && e.mapper.IsString(params[0].Type)
}

// NeedsConstructor reports whether the body resolves a constructor handle.
func (e *ExceptionRaise) NeedsConstructor() bool {
	return !e.messageOnly()
}

func (e *ExceptionRaise) Functions() []string {
	return withStringOverload(e.mapper, []string{e.name}, e.name, e.method.Params)
}

func (e *ExceptionRaise) sig() signature {
	return signature{returnType: "void", name: e.name, params: e.method.Params}
}

func (e *ExceptionRaise) Declarations(w *strings.Builder) {
	e.sig().declare(w, e.mapper, false)
	if hasStringParam(e.mapper, e.method.Params) {
		e.sig().declare(w, e.mapper, true)
	}
}

func (e *ExceptionRaise) Implementations(w *strings.Builder) {
	if e.messageOnly() {
		e.writeThrowNew(w)
		w.WriteByte('\n')
		e.writeThrowNewRaw(w)
		return
	}

	e.sig().write(w, e.mapper, false)
	w.WriteString(" {\n")
	l := newLookup(e.method.CacheMode, "void")
	class := l.class(w, e.call.Class)
	ctor := l.method(w, e.method, e.descriptor, class, "ctor")
	line(w, 1, "jthrowable instance = (jthrowable) (*env)->NewObject(env, %s, %s%s);", class, ctor, arguments(e.method.Params))
	l.check(w, "instance")
	l.hold("instance")
	l.finish(w, "void", "(*env)->Throw(env, instance);")
	w.WriteString("}\n")

	if hasStringParam(e.mapper, e.method.Params) {
		w.WriteByte('\n')
		writeStringOverload(w, e.mapper, e.sig())
	}
}

// writeThrowNew raises from a jstring message, which ThrowNew only accepts
// as a modified-UTF-8 buffer.
func (e *ExceptionRaise) writeThrowNew(w *strings.Builder) {
	msg := e.method.Params[0].Name
	e.sig().write(w, e.mapper, false)
	w.WriteString(" {\n")
	l := newLookup(e.method.CacheMode, "void")
	class := l.class(w, e.call.Class)
	line(w, 1, "const char *message = NULL;")
	line(w, 1, "if (%s != NULL) {", msg)
	line(w, 2, "message = (*env)->GetStringUTFChars(env, %s, NULL);", msg)
	line(w, 2, "if (message == NULL) {")
	l.release(w, 3)
	line(w, 3, "return;")
	line(w, 2, "}")
	line(w, 1, "}")
	line(w, 1, "(*env)->ThrowNew(env, %s, message);", class)
	line(w, 1, "if (message != NULL) {")
	line(w, 2, "(*env)->ReleaseStringUTFChars(env, %s, message);", msg)
	line(w, 1, "}")
	l.release(w, 1)
	w.WriteString("}\n")
}

// writeThrowNewRaw hands the raw buffer straight to ThrowNew.
func (e *ExceptionRaise) writeThrowNewRaw(w *strings.Builder) {
	msg := e.method.Params[0].Name
	e.sig().write(w, e.mapper, true)
	w.WriteString(" {\n")
	l := newLookup(e.method.CacheMode, "void")
	class := l.class(w, e.call.Class)
	l.finish(w, "void", fmt.Sprintf("(*env)->ThrowNew(env, %s, %s%s);", class, cStringParamPrefix, msg))
	w.WriteString("}\n")
}

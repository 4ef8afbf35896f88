package codegen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/jniaccess/pkg/ir"
)

// ErrSymbolCollision is returned when two distinct lookups map to the same
// generated name. It points at a defect in the discovery input.
var ErrSymbolCollision = errors.New("symbol collision")

// stateRecord is the name of the static struct holding cached handles.
const stateRecord = "cached"

func cachedRef(symbol string) string {
	return stateRecord + "." + symbol
}

// symbolPart escapes a qualified name the way exported symbols are
// escaped, so distinct names never share a cache member.
func symbolPart(qualified string) string {
	return strings.TrimPrefix(MangleName(qualified), MangledPrefix+"_")
}

func classSymbol(c *ir.AccessedClass) string {
	return "class_" + symbolPart(c.Name)
}

// fieldSymbol and methodSymbol include the member ordinal, so overloads
// and same-named members get distinct handles.
func fieldSymbol(f *ir.AccessedField) string {
	return "field_" + symbolPart(f.Class.Name) + "_" + symbolPart(f.Name) + "_" + strconv.Itoa(f.Ordinal)
}

func methodSymbol(m *ir.AccessedMethod) string {
	name := m.Name
	if m.Constructor {
		name = "init"
	}
	return "method_" + symbolPart(m.Class.Name) + "_" + symbolPart(name) + "_" + strconv.Itoa(m.Ordinal)
}

type handleKind int

const (
	fieldHandle handleKind = iota
	methodHandle
)

// cachedHandle is one jfieldID or jmethodID member of the state record.
type cachedHandle struct {
	kind       handleKind
	symbol     string
	name       string
	descriptor string
	static     bool
}

func (h cachedHandle) cType() string {
	if h.kind == fieldHandle {
		return "jfieldID"
	}
	return "jmethodID"
}

func (h cachedHandle) lookupFunc() string {
	if h.kind == fieldHandle {
		return fieldLookupFunc(h.static)
	}
	return methodLookupFunc(h.static)
}

// cachedClass is one persistent class reference and the handles resolved
// against it.
type cachedClass struct {
	class   *ir.AccessedClass
	symbol  string
	handles []cachedHandle
}

// CachePlan is the collected set of cached symbols, built in one pass over
// every wrapped element before anything is emitted.
type CachePlan struct {
	namespace string
	classes   []*cachedClass // Acquisition order
	byClass   map[string]*cachedClass
	symbols   map[string]string // Symbol to the lookup that owns it
}

func newCachePlan(namespace string) *CachePlan {
	return &CachePlan{
		namespace: namespace,
		byClass:   make(map[string]*cachedClass),
		symbols:   make(map[string]string),
	}
}

// PlanCache collects the cached symbols of every EAGER_PERSISTENT element.
// Elements whose symbols collide with an earlier element are returned as
// rejected and contribute nothing.
func PlanCache(namespace string, elements []WrappedElement) (*CachePlan, map[WrappedElement]error) {
	plan := newCachePlan(namespace)
	rejected := make(map[WrappedElement]error)
	for _, e := range elements {
		if e.CacheMode() != ir.CacheEagerPersistent {
			continue
		}
		if err := plan.add(e); err != nil {
			rejected[e] = err
		}
	}
	return plan, rejected
}

// handleOf returns the member handle an element needs, if any.
func handleOf(e WrappedElement) (cachedHandle, bool) {
	switch v := e.(type) {
	case *FieldAccessor:
		f := v.Field()
		return cachedHandle{kind: fieldHandle, symbol: fieldSymbol(f), name: f.Name, descriptor: v.descriptor, static: f.Static}, true
	case *MethodInvocation:
		return methodHandleOf(v.methodBacked), true
	case *ObjectConstruction:
		return methodHandleOf(v.methodBacked), true
	case *ExceptionRaise:
		if v.NeedsConstructor() {
			return methodHandleOf(v.methodBacked), true
		}
	}
	return cachedHandle{}, false
}

func methodHandleOf(b methodBacked) cachedHandle {
	return cachedHandle{kind: methodHandle, symbol: methodSymbol(b.method), name: b.method.Name, descriptor: b.descriptor, static: b.method.Static}
}

// claim records owner as the lookup behind symbol.
func (p *CachePlan) claim(symbol, owner string) error {
	if prev, ok := p.symbols[symbol]; ok && prev != owner {
		return fmt.Errorf("%w: %s is generated for both %s and %s", ErrSymbolCollision, symbol, prev, owner)
	}
	return nil
}

func (p *CachePlan) add(e WrappedElement) error {
	class := e.HostClass()
	csym := classSymbol(class)
	if err := p.claim(csym, class.Name); err != nil {
		return err
	}
	handle, hasHandle := handleOf(e)
	var owner string
	if hasHandle {
		owner = fmt.Sprintf("%s.%s%s", class.Name, handle.name, handle.descriptor)
		if err := p.claim(handle.symbol, owner); err != nil {
			return err
		}
	}

	cc, ok := p.byClass[class.Name]
	if !ok {
		cc = &cachedClass{class: class, symbol: csym}
		p.byClass[class.Name] = cc
		p.classes = append(p.classes, cc)
		p.symbols[csym] = class.Name
	}
	if hasHandle {
		if _, seen := p.symbols[handle.symbol]; !seen {
			cc.handles = append(cc.handles, handle)
			p.symbols[handle.symbol] = owner
		}
	}
	return nil
}

// Empty reports whether nothing is cached.
func (p *CachePlan) Empty() bool {
	return len(p.classes) == 0
}

// Classes returns the cached class names in acquisition order.
func (p *CachePlan) Classes() []string {
	names := make([]string, len(p.classes))
	for i, c := range p.classes {
		names[i] = c.class.Name
	}
	return names
}

// Symbols returns every state record member in declaration order.
func (p *CachePlan) Symbols() []string {
	var out []string
	for _, c := range p.classes {
		out = append(out, c.symbol)
	}
	for _, c := range p.classes {
		for _, h := range c.handles {
			out = append(out, h.symbol)
		}
	}
	return out
}

// OnLoadName and OnUnloadName are the lifecycle function names.
func (p *CachePlan) OnLoadName() string   { return p.namespace + "OnLoad" }
func (p *CachePlan) OnUnloadName() string { return p.namespace + "OnUnload" }

// Declarations writes the lifecycle prototypes.
func (p *CachePlan) Declarations(w *strings.Builder) {
	fmt.Fprintf(w, "jint %s(JNIEnv *env);\n", p.OnLoadName())
	fmt.Fprintf(w, "void %s(JNIEnv *env);\n", p.OnUnloadName())
}

// StateRecord writes the static struct holding every cached handle. Nothing
// is written when nothing is cached.
func (p *CachePlan) StateRecord(w *strings.Builder) {
	if p.Empty() {
		return
	}
	w.WriteString("/*\n")
	fmt.Fprintf(w, " * Cached lookups. %s fills every member once, before any other function\n", p.OnLoadName())
	w.WriteString(" * in this file is called. Afterwards the members are only read, from any\n")
	fmt.Fprintf(w, " * thread, until %s releases them after the last call has returned.\n", p.OnUnloadName())
	w.WriteString(" */\n")
	w.WriteString("static struct {\n")
	for _, c := range p.classes {
		line(w, 1, "jclass %s;", c.symbol)
	}
	for _, c := range p.classes {
		for _, h := range c.handles {
			line(w, 1, "%s %s;", h.cType(), h.symbol)
		}
	}
	fmt.Fprintf(w, "} %s;\n", stateRecord)
}

// Functions writes OnLoad and OnUnload.
func (p *CachePlan) Functions(w *strings.Builder) {
	p.writeOnLoad(w)
	w.WriteByte('\n')
	p.writeOnUnload(w)
}

// writeOnLoad acquires one global reference per class, in plan order, and
// then resolves that class's handles. Any failure releases what was
// acquired so far and reports JNI_ERR with the JVM exception pending.
func (p *CachePlan) writeOnLoad(w *strings.Builder) {
	fmt.Fprintf(w, "jint %s(JNIEnv *env) {\n", p.OnLoadName())
	if p.Empty() {
		line(w, 1, "(void) env;")
		line(w, 1, "return JNI_OK;")
		w.WriteString("}\n")
		return
	}

	line(w, 1, "jclass local_class;")
	for _, c := range p.classes {
		ref := cachedRef(c.symbol)
		w.WriteByte('\n')
		line(w, 1, "local_class = (*env)->FindClass(env, \"%s\");", c.class.InternalName())
		line(w, 1, "if (local_class == NULL) {")
		line(w, 2, "goto fail;")
		line(w, 1, "}")
		line(w, 1, "%s = (jclass) (*env)->NewGlobalRef(env, local_class);", ref)
		line(w, 1, "(*env)->DeleteLocalRef(env, local_class);")
		line(w, 1, "if (%s == NULL) {", ref)
		line(w, 2, "goto fail;")
		line(w, 1, "}")
		for _, h := range c.handles {
			href := cachedRef(h.symbol)
			line(w, 1, "%s = (*env)->%s(env, %s, \"%s\", \"%s\");", href, h.lookupFunc(), ref, h.name, h.descriptor)
			line(w, 1, "if (%s == NULL) {", href)
			line(w, 2, "goto fail;")
			line(w, 1, "}")
		}
	}
	w.WriteByte('\n')
	line(w, 1, "return JNI_OK;")
	w.WriteByte('\n')
	w.WriteString("fail:\n")
	line(w, 1, "%s(env);", p.OnUnloadName())
	line(w, 1, "return JNI_ERR;")
	w.WriteString("}\n")
}

// writeOnUnload releases class references in reverse acquisition order and
// then clears every member. It tolerates a partially completed OnLoad.
func (p *CachePlan) writeOnUnload(w *strings.Builder) {
	fmt.Fprintf(w, "void %s(JNIEnv *env) {\n", p.OnUnloadName())
	if p.Empty() {
		line(w, 1, "(void) env;")
		w.WriteString("}\n")
		return
	}
	for i := len(p.classes) - 1; i >= 0; i-- {
		ref := cachedRef(p.classes[i].symbol)
		line(w, 1, "if (%s != NULL) {", ref)
		line(w, 2, "(*env)->DeleteGlobalRef(env, %s);", ref)
		line(w, 1, "}")
	}
	for _, sym := range p.Symbols() {
		line(w, 1, "%s = NULL;", cachedRef(sym))
	}
	w.WriteString("}\n")
}

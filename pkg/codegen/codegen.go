// Package codegen generates JNI access code from an element model.
//
// The reverse direction (native code calling into the JVM) is a header and
// an implementation file of helper functions, one group per wrapped
// element, plus the OnLoad/OnUnload pair managing cached lookups. The
// forward direction (the JVM calling native code) is a header with the
// mangled Java_* prototypes and the constant macros, and optionally a Go
// file exporting those symbols through cgo.
package codegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/jniaccess/pkg/ast"
	"github.com/chazu/jniaccess/pkg/ir"
)

var log = commonlog.GetLogger("jniaccess.codegen")

// Options configures one generation pass.
type Options struct {
	Namespace        string // Prefix of the OnLoad/OnUnload functions
	HeaderName       string // File name the implementation includes
	NativeHeaderName string // Used for the forward header include guard
	NativeHeaders    bool   // Produce the forward-direction header
	GoPackage        string // When set, also produce cgo exports in this package
	DefaultCacheMode ir.CacheMode
}

const (
	DefaultHeaderName       = "jni_access.h"
	DefaultNativeHeaderName = "jni_natives.h"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic reports a problem with one input element.
type Diagnostic struct {
	Severity Severity
	Element  string
	Message  string
	Err      error
}

func (d Diagnostic) String() string {
	if d.Element == "" {
		return d.Severity.String() + ": " + d.Message
	}
	return d.Severity.String() + ": " + d.Element + ": " + d.Message
}

// Binding summarises one wrapped element of the pass.
type Binding struct {
	Element      string
	Shape        Shape
	CacheMode    ir.CacheMode
	Functions    []string
	CacheSymbols []string
}

// Result contains the generated artifacts and any diagnostics. Artifacts
// are produced for every element that survived, even when the pass failed.
type Result struct {
	Header         string
	Implementation string
	NativeHeader   string
	GoExports      string
	Symbols        []string // Every function the built library must export
	Bindings       []Binding
	Natives        []NativeExport
	CachedClasses  []string
	Diagnostics    []Diagnostic
}

// Failed reports whether any error diagnostic was recorded.
func (r *Result) Failed() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Generate builds the element model from a discovery program and generates
// every artifact.
func Generate(program *ast.Program, opts Options) *Result {
	model, errs := ir.NewBuilder(program, ir.Options{DefaultCacheMode: opts.DefaultCacheMode}).Build()
	var diags []Diagnostic
	for _, err := range errs {
		diags = append(diags, errorDiagnostic(err))
	}
	result := GenerateModel(model, opts)
	result.Diagnostics = append(diags, result.Diagnostics...)
	return result
}

// GenerateModel generates every artifact from an already built model.
func GenerateModel(model *ir.Model, opts Options) *Result {
	if opts.HeaderName == "" {
		opts.HeaderName = DefaultHeaderName
	}
	if opts.NativeHeaderName == "" {
		opts.NativeHeaderName = DefaultNativeHeaderName
	}
	g := &generator{
		model:  model,
		opts:   opts,
		mapper: NewTypeMapper(model.Types),
		result: &Result{},
	}
	return g.generate()
}

type generator struct {
	model    *ir.Model
	opts     Options
	mapper   *TypeMapper
	wrappers []WrappedElement
	labels   map[WrappedElement]string
	plan     *CachePlan
	result   *Result
}

func errorDiagnostic(err error) Diagnostic {
	d := Diagnostic{Severity: SeverityError, Message: err.Error(), Err: err}
	var elemErr *ir.ElementError
	if errors.As(err, &elemErr) {
		d.Element = elemErr.Element
		d.Message = elemErr.Err.Error()
	}
	return d
}

func (g *generator) fail(element string, err error) {
	log.Debugf("%s: %v", element, err)
	g.result.Diagnostics = append(g.result.Diagnostics, Diagnostic{
		Severity: SeverityError, Element: element, Message: err.Error(), Err: err,
	})
}

func (g *generator) warn(element, message string) {
	g.result.Diagnostics = append(g.result.Diagnostics, Diagnostic{
		Severity: SeverityWarning, Element: element, Message: message,
	})
}

func (g *generator) generate() *Result {
	g.wrap()
	g.checkFunctionNames()

	// Collect every cached symbol before any text is emitted.
	plan, rejected := PlanCache(g.opts.Namespace, g.wrappers)
	g.plan = plan
	if len(rejected) > 0 {
		kept := g.wrappers[:0]
		for _, w := range g.wrappers {
			if err, bad := rejected[w]; bad {
				g.fail(g.labels[w], err)
				continue
			}
			kept = append(kept, w)
		}
		g.wrappers = kept
	}

	g.result.Header = g.header()
	g.result.Implementation = g.implementation()
	g.result.CachedClasses = plan.Classes()
	g.result.Symbols = append(g.result.Symbols, plan.OnLoadName(), plan.OnUnloadName())
	for _, w := range g.wrappers {
		g.result.Symbols = append(g.result.Symbols, w.Functions()...)
		g.result.Bindings = append(g.result.Bindings, g.binding(w))
	}

	if g.opts.NativeHeaders || g.opts.GoPackage != "" {
		g.natives()
	}

	log.Infof("generated %d bindings, %d native exports, %d cached classes, %d diagnostics",
		len(g.result.Bindings), len(g.result.Natives), len(g.result.CachedClasses), len(g.result.Diagnostics))
	return g.result
}

// overloadKey groups elements whose canonical function names would clash.
func overloadKey(m *ir.AccessedMethod) string {
	if m.Constructor {
		return m.Class.Name + "." + ir.ConstructorName
	}
	return m.Class.Name + "." + m.Name
}

// wrap turns every model element into its wrappers, in discovery order.
func (g *generator) wrap() {
	groups := make(map[string]int)
	for _, e := range g.model.Elements {
		if m, ok := e.(*ir.AccessedMethod); ok {
			groups[overloadKey(m)]++
		}
	}

	g.labels = make(map[WrappedElement]string)
	add := func(label string, w WrappedElement, err error) {
		if err != nil {
			g.fail(label, err)
			return
		}
		log.Debugf("wrapped %s as %s (%s)", label, w.Shape(), w.CacheMode())
		g.labels[w] = label
		g.wrappers = append(g.wrappers, w)
	}

	for _, e := range g.model.Elements {
		label := e.ElementName()
		switch v := e.(type) {
		case *ir.AccessedField:
			w, err := NewFieldAccessor(g.mapper, v)
			add(label, w, err)
		case *ir.AccessedMethod:
			overloaded := groups[overloadKey(v)] > 1
			if !v.Constructor {
				w, err := NewMethodInvocation(g.mapper, v, overloaded)
				add(label, w, err)
				continue
			}
			call := ir.ConstructorCall{Class: v.Class, Method: v}
			w, err := NewObjectConstruction(g.mapper, call, overloaded)
			add(label, w, err)
			if err != nil {
				continue
			}
			if g.mapper.IsThrowable(v.Class.Type) {
				t, err := NewExceptionRaise(g.mapper, call, overloaded)
				add(label, t, err)
			} else if !g.mapper.chainComplete(v.Class.Name) {
				g.warn(label, "superclass chain of "+v.Class.Name+" is incomplete; no throw wrapper generated")
			}
		}
	}
}

// checkFunctionNames drops every wrapper that would emit a function already
// claimed by an earlier wrapper or by the lifecycle pair.
func (g *generator) checkFunctionNames() {
	owner := map[string]string{
		g.opts.Namespace + "OnLoad":   "module lifecycle",
		g.opts.Namespace + "OnUnload": "module lifecycle",
	}
	kept := g.wrappers[:0]
	for _, w := range g.wrappers {
		label := g.labels[w]
		var clash error
		for _, fn := range w.Functions() {
			if prev, ok := owner[fn]; ok {
				clash = fmt.Errorf("%w: function %s is generated for both %s and %s", ErrSymbolCollision, fn, prev, label)
				break
			}
		}
		if clash != nil {
			g.fail(label, clash)
			continue
		}
		for _, fn := range w.Functions() {
			owner[fn] = label
		}
		kept = append(kept, w)
	}
	g.wrappers = kept
}

func (g *generator) binding(w WrappedElement) Binding {
	b := Binding{
		Element:   g.labels[w],
		Shape:     w.Shape(),
		CacheMode: w.CacheMode(),
		Functions: w.Functions(),
	}
	if w.CacheMode() == ir.CacheEagerPersistent {
		b.CacheSymbols = append(b.CacheSymbols, classSymbol(w.HostClass()))
		if h, ok := handleOf(w); ok {
			b.CacheSymbols = append(b.CacheSymbols, h.symbol)
		}
	}
	return b
}

// includeGuard derives a macro name from a file name: "jni_access.h"
// becomes "JNI_ACCESS_H".
func includeGuard(fileName string) string {
	var sb strings.Builder
	for i, r := range fileName {
		switch {
		case r >= 'a' && r <= 'z':
			sb.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r == '_':
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
	return sb.String()
}

func writeBanner(w *strings.Builder) {
	w.WriteString("/* Generated by jniaccess. Do not edit. */\n")
}

func writeCppOpen(w *strings.Builder) {
	w.WriteString("#ifdef __cplusplus\nextern \"C\" {\n#endif\n\n")
}

func writeCppClose(w *strings.Builder) {
	w.WriteString("#ifdef __cplusplus\n}\n#endif\n\n")
}

func (g *generator) header() string {
	guard := includeGuard(g.opts.HeaderName)
	var w strings.Builder
	writeBanner(&w)
	fmt.Fprintf(&w, "#ifndef %s\n#define %s\n\n", guard, guard)
	w.WriteString("#include <jni.h>\n\n")
	writeCppOpen(&w)
	g.plan.Declarations(&w)
	w.WriteByte('\n')
	for _, wr := range g.wrappers {
		wr.Declarations(&w)
		w.WriteByte('\n')
	}
	writeCppClose(&w)
	fmt.Fprintf(&w, "#endif /* %s */\n", guard)
	return w.String()
}

func (g *generator) implementation() string {
	var w strings.Builder
	writeBanner(&w)
	fmt.Fprintf(&w, "#include \"%s\"\n\n", g.opts.HeaderName)
	if !g.plan.Empty() {
		g.plan.StateRecord(&w)
		w.WriteByte('\n')
	}
	g.plan.Functions(&w)
	for _, wr := range g.wrappers {
		w.WriteByte('\n')
		wr.Implementations(&w)
	}
	return w.String()
}

func (g *generator) natives() {
	exports, errs := NativeExports(g.mapper, g.model.Natives)
	for _, err := range errs {
		g.fail("", err)
	}
	g.result.Natives = exports
	for _, e := range exports {
		g.result.Symbols = append(g.result.Symbols, e.Symbol)
	}

	if g.opts.NativeHeaders {
		constants, errs := renderConstants(g.model.Constants)
		for _, err := range errs {
			g.fail("", err)
		}
		var w strings.Builder
		writeNativeHeader(&w, includeGuard(g.opts.NativeHeaderName), g.model.Classes, constants, exports)
		g.result.NativeHeader = w.String()
	}

	if g.opts.GoPackage != "" {
		code, err := GenerateGoExports(g.opts.GoPackage, exports)
		if err != nil {
			g.fail("", fmt.Errorf("rendering Go exports: %w", err))
			return
		}
		g.result.GoExports = code
	}
}

package codegen

import (
	"fmt"
	"strings"

	"github.com/chazu/jniaccess/pkg/ir"
)

// NativeParam is one parameter of an exported native function.
type NativeParam struct {
	Name  string
	CType string
}

// NativeExport is the managed-to-native prototype of one native method.
type NativeExport struct {
	Method     *ir.NativeMethod
	Symbol     string
	ReturnType string
	Receiver   NativeParam // "jclass clazz" for static methods, "jobject instance" otherwise
	Params     []NativeParam
}

// NativeExports mangles and types every native method. Methods sharing an
// owner and simple name all receive the overload suffix. Methods whose
// types cannot be mapped are returned as errors and skipped.
func NativeExports(m *TypeMapper, natives []*ir.NativeMethod) ([]NativeExport, []error) {
	groups := make(map[string]int)
	for _, n := range natives {
		groups[n.QualifiedName()]++
	}

	var exports []NativeExport
	var errs []error
	for _, n := range natives {
		descs, err := m.ParamDescriptors(n.Params)
		if err == nil {
			_, err = m.Descriptor(n.Return)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.QualifiedName(), err))
			continue
		}

		symbol := MangleName(n.QualifiedName())
		if groups[n.QualifiedName()] > 1 {
			symbol = MangleOverloaded(n.QualifiedName(), descs)
		}

		e := NativeExport{
			Method:     n,
			Symbol:     symbol,
			ReturnType: m.NativeType(n.Return),
			Receiver:   NativeParam{Name: "instance", CType: "jobject"},
		}
		if n.Static {
			e.Receiver = NativeParam{Name: "clazz", CType: "jclass"}
		}
		for _, p := range n.Params {
			e.Params = append(e.Params, NativeParam{Name: p.Name, CType: m.NativeType(p.Type)})
		}
		exports = append(exports, e)
	}
	return exports, errs
}

// Prototype renders the JNIEXPORT declaration.
func (e NativeExport) Prototype() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "JNIEXPORT %s JNICALL %s(JNIEnv *env, %s %s", e.ReturnType, e.Symbol, e.Receiver.CType, e.Receiver.Name)
	for _, p := range e.Params {
		fmt.Fprintf(&sb, ", %s %s", p.CType, p.Name)
	}
	sb.WriteString(");")
	return sb.String()
}

// writeNativeHeader renders the forward-direction header: per class, its
// constants followed by its exported prototypes.
func writeNativeHeader(w *strings.Builder, guard string, classes []*ir.AccessedClass, constants []renderedConstant, exports []NativeExport) {
	writeBanner(w)
	fmt.Fprintf(w, "#ifndef %s\n#define %s\n\n", guard, guard)
	w.WriteString("#include <jni.h>\n\n")
	writeCppOpen(w)

	for _, class := range classes {
		var section strings.Builder
		for _, c := range constants {
			if c.class == class {
				fmt.Fprintf(&section, "#undef %s\n#define %s %s\n", c.name, c.name, c.literal)
			}
		}
		for _, e := range exports {
			if e.Method.Class == class {
				section.WriteString(e.Prototype())
				section.WriteByte('\n')
			}
		}
		if section.Len() == 0 {
			continue
		}
		fmt.Fprintf(w, "/* %s */\n", class.Name)
		w.WriteString(section.String())
		w.WriteByte('\n')
	}

	writeCppClose(w)
	fmt.Fprintf(w, "#endif /* %s */\n", guard)
}

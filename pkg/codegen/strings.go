package codegen

import (
	"strings"

	"github.com/chazu/jniaccess/pkg/ir"
)

// writeStringOverload emits the "_cstr" variant of sig. Each string
// parameter arrives as a raw modified-UTF-8 buffer, is converted with
// NewStringUTF, and is released after the canonical function returns.
func writeStringOverload(w *strings.Builder, m *TypeMapper, sig signature) {
	sig.write(w, m, true)
	w.WriteString(" {\n")

	fail := failureReturn(sig.returnType)
	var converted []string
	for _, p := range sig.params {
		if !m.IsString(p.Type) {
			continue
		}
		line(w, 1, "jstring %s = (*env)->NewStringUTF(env, %s%s);", p.Name, cStringParamPrefix, p.Name)
		line(w, 1, "if (%s == NULL) {", p.Name)
		for _, prev := range converted {
			line(w, 2, "(*env)->DeleteLocalRef(env, %s);", prev)
		}
		line(w, 2, "%s", fail)
		line(w, 1, "}")
		converted = append(converted, p.Name)
	}

	call := sig.name + "(env"
	if sig.instance {
		call += ", instance"
	}
	call += arguments(sig.params) + ");"

	returns := sig.returnType != "void"
	if returns {
		line(w, 1, "%s result = %s", sig.returnType, call)
	} else {
		line(w, 1, "%s", call)
	}
	for _, name := range converted {
		line(w, 1, "(*env)->DeleteLocalRef(env, %s);", name)
	}
	if returns {
		line(w, 1, "return result;")
	}
	w.WriteString("}\n")
}

// stringOverloadName returns the name of the raw-buffer variant.
func stringOverloadName(name string) string {
	return name + cStringFunctionSuffix
}

// withStringOverload appends the raw-buffer variant to names when params
// contain a string.
func withStringOverload(m *TypeMapper, names []string, canonical string, params []ir.MethodParam) []string {
	if hasStringParam(m, params) {
		names = append(names, stringOverloadName(canonical))
	}
	return names
}

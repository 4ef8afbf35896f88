// This file contains cgo export generation for c-shared libraries.

package codegen

import (
	"bytes"
	"go/token"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
)

// GenerateGoExports produces a Go file that implements every native method
// as a cgo //export function forwarding to a Natives implementation. The
// package can be built with: go build -buildmode=c-shared -o libnatives.so
func GenerateGoExports(pkg string, exports []NativeExport) (string, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by jniaccess. DO NOT EDIT.")
	f.CgoPreamble("#include <jni.h>")

	var methods []jen.Code
	for _, e := range exports {
		methods = append(methods, jen.Id(goMethodName(e.Symbol)).Params(goParams(e)...).Add(goResult(e)))
	}

	f.Comment("Natives is implemented by the Go side of the native methods.")
	f.Type().Id("Natives").Interface(methods...)
	f.Line()
	f.Comment("Impl receives every call. It must be set before the library is loaded.")
	f.Var().Id("Impl").Id("Natives")
	f.Line()

	for _, e := range exports {
		call := jen.Id("Impl").Dot(goMethodName(e.Symbol)).Call(goArgs(e)...)
		var body jen.Code = call
		if e.ReturnType != "void" {
			body = jen.Return(call)
		}
		f.Comment("//export " + e.Symbol)
		f.Func().Id(e.Symbol).Params(goParams(e)...).Add(goResult(e)).Block(body)
		f.Line()
	}

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// goMethodName derives an exported Go method name from a mangled symbol:
// "Java_pkg_Holder_sum" becomes "Pkg_Holder_sum".
func goMethodName(symbol string) string {
	name := strings.TrimPrefix(symbol, MangledPrefix+"_")
	runes := []rune(name)
	if len(runes) == 0 || !unicode.IsLetter(runes[0]) {
		return "N" + name
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// goName keeps parameter names clear of Go keywords and the identifiers
// the generated file declares.
func goName(name string) string {
	if token.IsKeyword(name) {
		return name + "_"
	}
	switch name {
	case "Impl", "Natives", "C", "clazz", "instance", "env":
		return name + "_"
	}
	return name
}

func cType(name string) jen.Code {
	return jen.Qual("C", name)
}

func goParams(e NativeExport) []jen.Code {
	params := []jen.Code{
		jen.Id("env").Op("*").Qual("C", "JNIEnv"),
		jen.Id(e.Receiver.Name).Add(cType(e.Receiver.CType)),
	}
	for _, p := range e.Params {
		params = append(params, jen.Id(goName(p.Name)).Add(cType(p.CType)))
	}
	return params
}

func goArgs(e NativeExport) []jen.Code {
	args := []jen.Code{jen.Id("env"), jen.Id(e.Receiver.Name)}
	for _, p := range e.Params {
		args = append(args, jen.Id(goName(p.Name)))
	}
	return args
}

func goResult(e NativeExport) jen.Code {
	if e.ReturnType == "void" {
		return jen.Null()
	}
	return cType(e.ReturnType)
}

package codegen

import "github.com/chazu/jniaccess/pkg/ir"

// primitive describes how one scalar kind appears on the native side.
type primitive struct {
	descriptor byte   // Wire descriptor character
	cType      string // Native storage type
	tag        string // Accessor family, as in Get<Tag>Field / Call<Tag>Method
	arrayType  string // Native handle for a one-dimensional array of this kind
}

// primitiveRegistry maps every scalar kind (and void) to its native views.
var primitiveRegistry = map[ir.Kind]primitive{
	ir.KindBoolean: {'Z', "jboolean", "Boolean", "jbooleanArray"},
	ir.KindChar:    {'C', "jchar", "Char", "jcharArray"},
	ir.KindByte:    {'B', "jbyte", "Byte", "jbyteArray"},
	ir.KindShort:   {'S', "jshort", "Short", "jshortArray"},
	ir.KindInt:     {'I', "jint", "Int", "jintArray"},
	ir.KindLong:    {'J', "jlong", "Long", "jlongArray"},
	ir.KindFloat:   {'F', "jfloat", "Float", "jfloatArray"},
	ir.KindDouble:  {'D', "jdouble", "Double", "jdoubleArray"},
	ir.KindVoid:    {'V', "void", "Void", ""},
}

const (
	objectTag       = "Object"
	objectCType     = "jobject"
	stringCType     = "jstring"
	throwableCType  = "jthrowable"
	objectArrayType = "jobjectArray"
	rawStringCType  = "const char *"
)

// isReferenceCType reports whether a native type is a handle, which fails
// with NULL rather than 0.
func isReferenceCType(cType string) bool {
	switch cType {
	case "void", "jboolean", "jchar", "jbyte", "jshort", "jint", "jlong", "jfloat", "jdouble":
		return false
	}
	return true
}

// failureReturn is the statement an inline lookup uses to bail out of a
// function returning cType.
func failureReturn(cType string) string {
	switch {
	case cType == "void":
		return "return;"
	case isReferenceCType(cType):
		return "return NULL;"
	default:
		return "return 0;"
	}
}

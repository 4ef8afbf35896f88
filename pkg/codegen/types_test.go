package codegen

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/jniaccess/pkg/ir"
)

func testMapper() *TypeMapper {
	types := ir.NewTypeTable(ir.Builtins())
	types.Define(ir.TypeDecl{Name: "pkg.Oops", Superclass: "java.lang.RuntimeException"})
	types.Define(ir.TypeDecl{Name: "pkg.Widget"})
	return NewTypeMapper(types)
}

func TestTypeMapperMappings(t *testing.T) {
	m := testMapper()
	tests := []struct {
		typ        ir.Type
		descriptor string
		native     string
		tag        string
	}{
		{ir.Primitive(ir.KindBoolean), "Z", "jboolean", "Boolean"},
		{ir.Primitive(ir.KindChar), "C", "jchar", "Char"},
		{ir.Primitive(ir.KindByte), "B", "jbyte", "Byte"},
		{ir.Primitive(ir.KindShort), "S", "jshort", "Short"},
		{ir.Primitive(ir.KindInt), "I", "jint", "Int"},
		{ir.Primitive(ir.KindLong), "J", "jlong", "Long"},
		{ir.Primitive(ir.KindFloat), "F", "jfloat", "Float"},
		{ir.Primitive(ir.KindDouble), "D", "jdouble", "Double"},
		{ir.Void, "V", "void", "Void"},
		{ir.Declared("java.lang.String"), "Ljava/lang/String;", "jstring", "Object"},
		{ir.Declared("pkg.Oops"), "Lpkg/Oops;", "jthrowable", "Object"},
		{ir.Declared("pkg.Widget"), "Lpkg/Widget;", "jobject", "Object"},
		{ir.Declared("pkg.Outer$Inner"), "Lpkg/Outer$Inner;", "jobject", "Object"},
		{ir.ArrayOf(ir.Primitive(ir.KindInt)), "[I", "jintArray", "Object"},
		{ir.ArrayOf(ir.Primitive(ir.KindBoolean)), "[Z", "jbooleanArray", "Object"},
		{ir.ArrayOf(ir.Declared("java.lang.String")), "[Ljava/lang/String;", "jobjectArray", "Object"},
		{ir.ArrayOf(ir.ArrayOf(ir.Primitive(ir.KindByte))), "[[B", "jobjectArray", "Object"},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			desc, err := m.Descriptor(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.descriptor, desc)
			assert.Equal(t, tt.native, m.NativeType(tt.typ))
			assert.Equal(t, tt.tag, m.AccessorTag(tt.typ))

			// Same input, same output.
			again, _ := m.Descriptor(tt.typ)
			assert.Equal(t, desc, again)
		})
	}
}

func TestTypeMapperRejectsUnsupported(t *testing.T) {
	m := testMapper()
	for _, typ := range []ir.Type{
		{},
		{Kind: ir.KindDeclared},
		{Kind: ir.KindArray},
		ir.ArrayOf(ir.Void),
	} {
		_, err := m.Descriptor(typ)
		assert.True(t, errors.Is(err, ErrUnsupportedType), "%v: %v", typ, err)
	}
}

func TestMethodDescriptor(t *testing.T) {
	m := testMapper()
	params := []ir.MethodParam{
		{Name: "msg", Type: ir.Declared("java.lang.String")},
		{Name: "code", Type: ir.Primitive(ir.KindInt)},
	}
	desc, err := m.MethodDescriptor(params, ir.Void)
	require.NoError(t, err)
	assert.Equal(t, "(Ljava/lang/String;I)V", desc)

	desc, err = m.MethodDescriptor(nil, ir.ArrayOf(ir.Primitive(ir.KindLong)))
	require.NoError(t, err)
	assert.Equal(t, "()[J", desc)

	_, err = m.MethodDescriptor([]ir.MethodParam{{Name: "x", SourceName: "x"}}, ir.Void)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestTypeMapperHierarchy(t *testing.T) {
	m := testMapper()
	assert.True(t, m.IsString(ir.Declared("java.lang.String")))
	assert.False(t, m.IsString(ir.Declared("java.lang.Object")))
	assert.True(t, m.IsThrowable(ir.Declared("pkg.Oops")))
	assert.True(t, m.IsThrowable(ir.Declared("java.lang.Throwable")))
	assert.False(t, m.IsThrowable(ir.Declared("pkg.Widget")))
	assert.False(t, m.IsThrowable(ir.ArrayOf(ir.Declared("pkg.Oops"))))

	assert.True(t, m.chainComplete("pkg.Oops"))
	assert.False(t, m.chainComplete("lib.Unknown"))
}

func TestCastTo(t *testing.T) {
	assert.Equal(t, "", castTo("jobject"))
	assert.Equal(t, "", castTo("jint"))
	assert.Equal(t, "(jstring) ", castTo("jstring"))
	assert.Equal(t, "(jintArray) ", castTo("jintArray"))
}

func TestMangleName(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"pkg.Holder.sum", "Java_pkg_Holder_sum"},
		{"a.b_c", "Java_a_b_1c"},
		{"pkg.Outer$Inner.run", "Java_pkg_Outer_00024Inner_run"},
		{"pkg.Café.m", "Java_pkg_Caf_000e9_m"},
		{"pkg.C.\U0001F600", "Java_pkg_C__0d83d_0de00"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MangleName(tt.input))
		})
	}
}

func TestMangleOverloaded(t *testing.T) {
	assert.Equal(t, "Java_pkg_C_f__I", MangleOverloaded("pkg.C.f", "I"))
	assert.Equal(t, "Java_pkg_C_f__J", MangleOverloaded("pkg.C.f", "J"))
	assert.Equal(t, "Java_pkg_C_f__Ljava_lang_String_2_3I", MangleOverloaded("pkg.C.f", "Ljava/lang/String;[I"))
	assert.Equal(t, "Java_pkg_C_f__", MangleOverloaded("pkg.C.f", ""))
	assert.NotEqual(t, MangleOverloaded("pkg.C.f", "I"), MangleOverloaded("pkg.C.f", "J"))
}

func TestMangledSymbolsAreIdentifiers(t *testing.T) {
	for _, name := range []string{"a.b_c", "x.y;z", "p.[q", "p.Cläss.méthod", "p.C.\U0001F600"} {
		sym := MangleName(name)
		for _, r := range sym {
			ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			assert.True(t, ok, "%q contains %q", sym, r)
		}
	}
	assert.Equal(t, "Java_x_y_2z", MangleName("x.y;z"))
	assert.Equal(t, "Java_p__3q", MangleName("p.[q"))
}

func TestCIdentifier(t *testing.T) {
	assert.Equal(t, "pkg_Outer_Inner", cIdentifier("pkg.Outer$Inner"))
	assert.Equal(t, "a_b_c", cIdentifier("a.b_c"))
	assert.Equal(t, "pkg_Outer_00024Inner_MAX", constantName("pkg.Outer$Inner", "MAX"))
}

func TestCacheSymbolsEscapeNames(t *testing.T) {
	bc := &ir.AccessedClass{Name: "a.b_c"}
	ab := &ir.AccessedClass{Name: "a_b.c"}
	assert.Equal(t, "class_a_b_1c", classSymbol(bc))
	assert.Equal(t, "class_a_1b_c", classSymbol(ab))
	assert.Equal(t, "field_a_b_1c_x_1y_0", fieldSymbol(&ir.AccessedField{Class: bc, Name: "x_y"}))
	assert.Equal(t, "method_pkg_Outer_00024Inner_init_2",
		methodSymbol(&ir.AccessedMethod{Class: &ir.AccessedClass{Name: "pkg.Outer$Inner"}, Name: "<init>", Constructor: true, Ordinal: 2}))
}

func TestConstantLiteral(t *testing.T) {
	class := &ir.AccessedClass{Name: "pkg.K", Type: ir.Declared("pkg.K")}
	tests := []struct {
		name  string
		typ   ir.Type
		value any
		want  string
	}{
		{"true", ir.Primitive(ir.KindBoolean), true, "JNI_TRUE"},
		{"false", ir.Primitive(ir.KindBoolean), false, "JNI_FALSE"},
		{"int", ir.Primitive(ir.KindInt), int64(42), "42"},
		{"negative int", ir.Primitive(ir.KindShort), int64(-7), "-7"},
		{"int min", ir.Primitive(ir.KindInt), int64(math.MinInt32), "(-2147483647 - 1)"},
		{"long", ir.Primitive(ir.KindLong), int64(1) << 40, "1099511627776LL"},
		{"long min", ir.Primitive(ir.KindLong), int64(math.MinInt64), "(-9223372036854775807LL - 1)"},
		{"float", ir.Primitive(ir.KindFloat), 1.5, "1.5f"},
		{"whole float", ir.Primitive(ir.KindFloat), 2.0, "2.0f"},
		{"double", ir.Primitive(ir.KindDouble), 0.25, "0.25"},
		{"nan", ir.Primitive(ir.KindDouble), math.NaN(), "(0.0/0.0)"},
		{"inf", ir.Primitive(ir.KindFloat), math.Inf(1), "(1.0f/0.0f)"},
		{"char", ir.Primitive(ir.KindChar), 'x', "'x'"},
		{"quote char", ir.Primitive(ir.KindChar), '\'', `'\''`},
		{"nul char", ir.Primitive(ir.KindChar), rune(0), `'\0'`},
		{"wide char", ir.Primitive(ir.KindChar), 'é', "0x00E9"},
		{"string", ir.Declared(ir.StringClass), "a\"b\\c\n", `"a\"b\\c\n"`},
		{"trigraph", ir.Declared(ir.StringClass), "??=", `"?\?="`},
		{"utf8", ir.Declared(ir.StringClass), "é", `"\303\251"`},
		{"control", ir.Declared(ir.StringClass), "\x01" + "1", `"\0011"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConstantLiteral(&ir.Constant{Class: class, Name: "K", Type: tt.typ, Value: tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ConstantLiteral(&ir.Constant{Class: class, Name: "K", Type: ir.Primitive(ir.KindInt), Value: "nope"})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = ConstantLiteral(&ir.Constant{Class: class, Name: "K", Type: ir.Declared("pkg.Widget"), Value: "x"})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestPlanCacheSharesClassHandle(t *testing.T) {
	m := testMapper()
	class := &ir.AccessedClass{Name: "pkg.Widget", Type: ir.Declared("pkg.Widget")}
	f1, err := NewFieldAccessor(m, &ir.AccessedField{Class: class, Name: "a", Type: ir.Primitive(ir.KindInt), Ordinal: 0, CacheMode: ir.CacheEagerPersistent})
	require.NoError(t, err)
	f2, err := NewFieldAccessor(m, &ir.AccessedField{Class: class, Name: "b", Type: ir.Primitive(ir.KindInt), Static: true, Ordinal: 1, CacheMode: ir.CacheEagerPersistent})
	require.NoError(t, err)
	f3, err := NewFieldAccessor(m, &ir.AccessedField{Class: class, Name: "c", Type: ir.Primitive(ir.KindInt), Ordinal: 2, CacheMode: ir.CacheNone})
	require.NoError(t, err)

	plan, rejected := PlanCache("x_", []WrappedElement{f1, f2, f3})
	assert.Empty(t, rejected)
	assert.Equal(t, []string{"pkg.Widget"}, plan.Classes())
	assert.Equal(t, []string{"class_pkg_Widget", "field_pkg_Widget_a_0", "field_pkg_Widget_b_1"}, plan.Symbols())

	var w strings.Builder
	plan.Functions(&w)
	assert.Equal(t, 1, strings.Count(w.String(), "NewGlobalRef"))
	assert.Contains(t, w.String(), "cached.field_pkg_Widget_b_1 = (*env)->GetStaticFieldID(env, cached.class_pkg_Widget, \"b\", \"I\");")
}

func TestEmptyPlanLifecycle(t *testing.T) {
	plan, _ := PlanCache("", nil)
	assert.True(t, plan.Empty())

	var w strings.Builder
	plan.StateRecord(&w)
	assert.Empty(t, w.String())

	plan.Functions(&w)
	assert.Contains(t, w.String(), "jint OnLoad(JNIEnv *env) {")
	assert.Contains(t, w.String(), "return JNI_OK;")
	assert.NotContains(t, w.String(), "FindClass")
}

func TestExceptionRaiseRequiresThrowable(t *testing.T) {
	m := testMapper()
	class := &ir.AccessedClass{Name: "pkg.Widget", Type: ir.Declared("pkg.Widget")}
	ctor := &ir.AccessedMethod{Class: class, Name: ir.ConstructorName, Return: ir.Void, Constructor: true}
	_, err := NewExceptionRaise(m, ir.ConstructorCall{Class: class, Method: ctor}, false)
	assert.ErrorIs(t, err, ErrNotThrowable)
}

func TestStringOverloadCleansUp(t *testing.T) {
	m := testMapper()
	sig := signature{
		returnType: "jint",
		name:       "call_pkg_W_f",
		params: []ir.MethodParam{
			{Name: "a", Type: ir.Declared(ir.StringClass)},
			{Name: "n", Type: ir.Primitive(ir.KindInt)},
			{Name: "b", Type: ir.Declared(ir.StringClass)},
		},
	}
	var w strings.Builder
	writeStringOverload(&w, m, sig)
	want := `jint call_pkg_W_f_cstr(JNIEnv *env, const char *c_a, jint n, const char *c_b) {
    jstring a = (*env)->NewStringUTF(env, c_a);
    if (a == NULL) {
        return 0;
    }
    jstring b = (*env)->NewStringUTF(env, c_b);
    if (b == NULL) {
        (*env)->DeleteLocalRef(env, a);
        return 0;
    }
    jint result = call_pkg_W_f(env, a, n, b);
    (*env)->DeleteLocalRef(env, a);
    (*env)->DeleteLocalRef(env, b);
    return result;
}
`
	assert.Equal(t, want, w.String())
}

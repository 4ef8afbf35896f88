package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantDims int
		wantArgs int
	}{
		{"int", "int", 0, 0},
		{"java.lang.String", "java.lang.String", 0, 0},
		{"byte[]", "byte", 1, 0},
		{"java.lang.Object[][]", "java.lang.Object", 2, 0},
		{"java.lang.String...", "java.lang.String", 1, 0},
		{"int[]...", "int", 2, 0},
		{"java.util.Map<java.lang.String, java.util.List<java.lang.Integer>>", "java.util.Map", 0, 2},
		{"java.util.List<? extends java.lang.Number>[]", "java.util.List", 1, 1},
		{"pkg.Outer$Inner", "pkg.Outer$Inner", 0, 0},
		{"@javax.annotation.Nonnull java.lang.String", "java.lang.String", 0, 0},
		{"  long  ", "long", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := ParseType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, expr.Name)
			assert.Equal(t, tt.wantDims, expr.Dims)
			assert.Len(t, expr.Args, tt.wantArgs)
		})
	}
}

func TestParseTypeErrors(t *testing.T) {
	tests := []string{
		"",
		"int[",
		"java.",
		"List<String",
		"int int",
		"Map<,>",
		"int;",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseType(input)
			assert.Error(t, err)
		})
	}
}

func TestTypeExprString(t *testing.T) {
	expr, err := ParseType("java.util.Map<K,java.util.List<? super T>>[]")
	require.NoError(t, err)
	assert.Equal(t, "java.util.Map<K, java.util.List<?>>[]", expr.String())

	elem := expr.Element()
	assert.False(t, elem.IsArray())
	assert.Equal(t, "java.util.Map", elem.Name)
	assert.Equal(t, 1, expr.Dims, "Element must not mutate the receiver")
}

func TestParseFieldDescriptor(t *testing.T) {
	tests := []struct {
		desc      string
		wantBase  byte
		wantClass string
		wantDims  int
	}{
		{"I", 'I', "", 0},
		{"J", 'J', "", 0},
		{"[Z", 'Z', "", 1},
		{"Ljava/lang/String;", 'L', "java/lang/String", 0},
		{"[[Lpkg/Outer$Inner;", 'L', "pkg/Outer$Inner", 2},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			ft, err := ParseFieldDescriptor(tt.desc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, ft.Base)
			assert.Equal(t, tt.wantClass, ft.ClassName)
			assert.Equal(t, tt.wantDims, ft.Dims)
			assert.Equal(t, tt.desc, ft.String())
		})
	}
}

func TestParseFieldDescriptorErrors(t *testing.T) {
	for _, desc := range []string{"", "V", "Q", "[", "Ljava/lang/String", "L;", "Ljava.lang.String;", "II"} {
		t.Run(desc, func(t *testing.T) {
			_, err := ParseFieldDescriptor(desc)
			assert.Error(t, err)
		})
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	md, err := ParseMethodDescriptor("(ILjava/lang/String;[J)V")
	require.NoError(t, err)
	require.Len(t, md.Params, 3)
	assert.Equal(t, byte('I'), md.Params[0].Base)
	assert.Equal(t, "java/lang/String", md.Params[1].ClassName)
	assert.Equal(t, 1, md.Params[2].Dims)
	assert.Equal(t, byte('V'), md.Return.Base)
	assert.Equal(t, "ILjava/lang/String;[J", md.ParamDescriptors())
	assert.Equal(t, "(ILjava/lang/String;[J)V", md.String())

	md, err = ParseMethodDescriptor("()Ljava/lang/Object;")
	require.NoError(t, err)
	assert.Empty(t, md.Params)
	assert.Equal(t, "java/lang/Object", md.Return.ClassName)
}

func TestParseMethodDescriptorErrors(t *testing.T) {
	for _, desc := range []string{"", "I)V", "(I", "(I)", "(V)V", "()[V", "(I)VV", "(X)V"} {
		t.Run(desc, func(t *testing.T) {
			_, err := ParseMethodDescriptor(desc)
			assert.Error(t, err)
		})
	}
}

func TestParseParamDescriptors(t *testing.T) {
	params, err := ParseParamDescriptors("IJ")
	require.NoError(t, err)
	require.Len(t, params, 2)
	assert.Equal(t, byte('J'), params[1].Base)

	params, err = ParseParamDescriptors("")
	require.NoError(t, err)
	assert.Empty(t, params)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counterModel = `{
  "classes": [
    {
      "name": "pkg.Counter",
      "members": [
        {"kind": "field", "name": "count", "type": "int", "modifiers": ["static"], "access": {"cacheMode": "EAGER_PERSISTENT"}},
        {"kind": "field", "name": "LIMIT", "type": "int", "modifiers": ["static", "final"], "constantValue": 10},
        {"kind": "method", "name": "bump", "returnType": "int", "params": [{"name": "by", "type": "int"}], "modifiers": ["native", "static"]}
      ]
    }
  ]
}`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(context.Background(), append([]string{"jniaccess"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeModel(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestMangleCommand(t *testing.T) {
	out, _, err := execute(t, "mangle", "pkg.Holder.sum")
	require.NoError(t, err)
	assert.Equal(t, "Java_pkg_Holder_sum\n", out)

	out, _, err = execute(t, "mangle", "--signature", "(Ljava/lang/String;I)V", "a.b_c.f")
	require.NoError(t, err)
	assert.Equal(t, "Java_a_b_1c_f__Ljava_lang_String_2I\n", out)

	_, _, err = execute(t, "mangle", "--signature", "(I", "pkg.C.f")
	assert.Error(t, err)

	_, _, err = execute(t, "mangle")
	assert.Error(t, err)
}

func TestGenerateCommand(t *testing.T) {
	model := writeModel(t, counterModel)
	out := filepath.Join(t.TempDir(), "gen")

	_, stderr, err := execute(t, "generate", "--namespace", "counter_", "--go-package", "natives", "--out-dir", out, model)
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "Generated 1 bindings, 1 native exports, 1 cached classes.")

	impl, err := os.ReadFile(filepath.Join(out, "jni_access.c"))
	require.NoError(t, err)
	assert.Contains(t, string(impl), "jint counter_OnLoad(JNIEnv *env) {")
	assert.Contains(t, string(impl), "cached.field_pkg_Counter_count_0")

	natives, err := os.ReadFile(filepath.Join(out, "jni_natives.h"))
	require.NoError(t, err)
	assert.Contains(t, string(natives), "#define pkg_Counter_LIMIT 10")
	assert.Contains(t, string(natives), "JNIEXPORT jint JNICALL Java_pkg_Counter_bump(JNIEnv *env, jclass clazz, jint by);")

	exports, err := os.ReadFile(filepath.Join(out, "jni_exports.go"))
	require.NoError(t, err)
	assert.Contains(t, string(exports), "//export Java_pkg_Counter_bump")

	_, err = os.Stat(filepath.Join(out, "jni_access.h"))
	assert.NoError(t, err)
}

func TestGenerateUsesConfigFile(t *testing.T) {
	model := writeModel(t, counterModel)
	dir := filepath.Dir(model)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jniaccess.toml"), []byte(`
[generate]
namespace = "cfg_"
native-headers = false

[output]
dir = "out"
implementation = "counter.c"
`), 0644))

	_, stderr, err := execute(t, "generate", model)
	require.NoError(t, err, stderr)

	impl, err := os.ReadFile(filepath.Join(dir, "out", "counter.c"))
	require.NoError(t, err)
	assert.Contains(t, string(impl), "jint cfg_OnLoad(JNIEnv *env) {")

	_, err = os.Stat(filepath.Join(dir, "out", "jni_natives.h"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateDryRun(t *testing.T) {
	model := writeModel(t, counterModel)
	out := filepath.Join(t.TempDir(), "gen")

	_, stderr, err := execute(t, "generate", "--dry-run", "--out-dir", out, model)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Dry run - would write")
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateFailures(t *testing.T) {
	model := writeModel(t, `{"classes": [{"name": "pkg.Bad", "members": [
		{"kind": "field", "name": "x", "type": "pkg.Missing", "modifiers": ["static"], "access": {}},
		{"kind": "field", "name": "y", "type": "int", "modifiers": ["static"], "access": {}}
	]}]}`)
	out := filepath.Join(t.TempDir(), "gen")

	_, stderr, err := execute(t, "generate", "--out-dir", out, model)
	require.Error(t, err)
	assert.Contains(t, stderr, "error: pkg.Bad.x:")
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "nothing is written without --keep-going")

	_, _, err = execute(t, "generate", "--keep-going", "--out-dir", out, model)
	require.Error(t, err)
	header, readErr := os.ReadFile(filepath.Join(out, "jni_access.h"))
	require.NoError(t, readErr)
	assert.Contains(t, string(header), "read_pkg_Bad_y")

	_, _, err = execute(t, "generate", "--cache-mode", "LAZY", "--out-dir", out, model)
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	model := writeModel(t, counterModel)

	out, _, err := execute(t, "inspect", model)
	require.NoError(t, err)
	assert.Contains(t, out, "Default cache mode: NONE")
	assert.Contains(t, out, "pkg.Counter.count")
	assert.Contains(t, out, "read_pkg_Counter_count, write_pkg_Counter_count")
	assert.Contains(t, out, "pkg.Counter.bump -> Java_pkg_Counter_bump")
	assert.Contains(t, out, "Cached classes: pkg.Counter")

	out, _, err = execute(t, "inspect", "--json", model)
	require.NoError(t, err)
	var in inspection
	require.NoError(t, json.Unmarshal([]byte(out), &in))
	require.Len(t, in.Bindings, 1)
	assert.Equal(t, "field-accessor", in.Bindings[0].Shape)
	assert.Equal(t, "EAGER_PERSISTENT", in.Bindings[0].CacheMode)
	assert.Equal(t, []string{"class_pkg_Counter", "field_pkg_Counter_count_0"}, in.Bindings[0].CacheSymbols)
}

func TestInspectType(t *testing.T) {
	out, _, err := execute(t, "inspect", "--type", "java.util.List<java.lang.String>[]")
	require.Error(t, err, "java.util.List is not a built-in type")

	out, _, err = execute(t, "inspect", "--type", "java.lang.String[]")
	require.NoError(t, err)
	assert.Contains(t, out, "parsed:     java.lang.String[]")
	assert.Contains(t, out, "descriptor: [Ljava/lang/String;")
	assert.Contains(t, out, "native:     jobjectArray")
	assert.Contains(t, out, "accessor:   Object")
	assert.Contains(t, out, "tokens:     [")
}

func TestVerifyRequiresLibrary(t *testing.T) {
	model := writeModel(t, counterModel)
	_, _, err := execute(t, "verify", model)
	assert.Error(t, err)

	_, _, err = execute(t, "verify", "--lib", filepath.Join(t.TempDir(), "missing.so"), model)
	assert.Error(t, err)
}

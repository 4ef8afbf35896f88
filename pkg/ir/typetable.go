package ir

import (
	"fmt"

	"github.com/chazu/jniaccess/pkg/ast"
	"github.com/chazu/jniaccess/pkg/parser"
)

const (
	ObjectClass    = "java.lang.Object"
	StringClass    = "java.lang.String"
	ThrowableClass = "java.lang.Throwable"
)

// Hierarchy answers supertype questions about declared types.
type Hierarchy interface {
	// Superclass returns the direct superclass of name. The second result is
	// false when name is unknown. java.lang.Object has no superclass and
	// returns ("", true).
	Superclass(name string) (string, bool)
}

// IsSubtypeOf reports whether name equals ancestor or reaches it by walking
// the superclass chain to the root. Unknown links end the walk.
func IsSubtypeOf(h Hierarchy, name, ancestor string) bool {
	seen := make(map[string]bool)
	for name != "" && !seen[name] {
		if name == ancestor {
			return true
		}
		seen[name] = true
		super, ok := h.Superclass(name)
		if !ok {
			return false
		}
		name = super
	}
	return false
}

// TypeDecl records what the table knows about one declared type.
type TypeDecl struct {
	Name       string
	Superclass string
	Interfaces []string
}

// TypeTable maps binary names to supertype information. Lookups fall back
// to the parent table, so a per-pass table can sit on top of the shared
// built-in table.
type TypeTable struct {
	parent *TypeTable
	decls  map[string]TypeDecl
}

// NewTypeTable creates a table with the given parent.
func NewTypeTable(parent *TypeTable) *TypeTable {
	return &TypeTable{
		parent: parent,
		decls:  make(map[string]TypeDecl),
	}
}

// Define adds or replaces a declaration in this table.
func (t *TypeTable) Define(decl TypeDecl) {
	if decl.Superclass == "" && decl.Name != ObjectClass {
		decl.Superclass = ObjectClass
	}
	t.decls[decl.Name] = decl
}

// Resolve looks up a declaration in this table and parent tables.
func (t *TypeTable) Resolve(name string) (TypeDecl, bool) {
	if decl, ok := t.decls[name]; ok {
		return decl, true
	}
	if t.parent != nil {
		return t.parent.Resolve(name)
	}
	return TypeDecl{}, false
}

// Superclass implements Hierarchy.
func (t *TypeTable) Superclass(name string) (string, bool) {
	decl, ok := t.Resolve(name)
	if !ok {
		return "", false
	}
	return decl.Superclass, true
}

// Knows reports whether a declared type can be resolved.
func (t *TypeTable) Knows(name string) bool {
	_, ok := t.Resolve(name)
	return ok
}

// TypeOf converts a parsed type expression into a semantic type. Declared
// names must be known to the table.
func (t *TypeTable) TypeOf(expr parser.TypeExpr) (Type, error) {
	var base Type
	if k, ok := PrimitiveKind(expr.Name); ok {
		if k == KindVoid && expr.Dims > 0 {
			return Type{}, fmt.Errorf("%w: array of void", ErrInvalidModel)
		}
		base = Primitive(k)
	} else {
		if expr.Name == "?" {
			return Type{}, fmt.Errorf("%w: wildcard %q is not a concrete type", ErrUnresolvedType, expr.String())
		}
		if !t.Knows(expr.Name) {
			// Unresolved simple names may be erased type variables, which
			// the discovery front end reports with their bound instead.
			return Type{}, fmt.Errorf("%w: %s", ErrUnresolvedType, expr.Name)
		}
		base = Declared(expr.Name)
	}
	for i := 0; i < expr.Dims; i++ {
		base = ArrayOf(base)
	}
	return base, nil
}

// ParseTypeOf parses and resolves a type expression in one step.
func (t *TypeTable) ParseTypeOf(expr string) (Type, error) {
	parsed, err := parser.ParseType(expr)
	if err != nil {
		return Type{}, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	return t.TypeOf(parsed)
}

// DefineProgram registers every class and type declaration in a discovery
// program.
func (t *TypeTable) DefineProgram(program *ast.Program) {
	for _, td := range program.Types {
		t.Define(TypeDecl{Name: td.Name, Superclass: td.Superclass, Interfaces: td.Interfaces})
	}
	for _, c := range program.Classes {
		super := c.Superclass
		if c.Kind == "interface" {
			super = ""
		}
		if c.Kind == "enum" && super == "" {
			super = "java.lang.Enum"
		}
		t.Define(TypeDecl{Name: c.Name, Superclass: super, Interfaces: c.Interfaces})
	}
}

// builtinTypes is the java.lang hierarchy every pass can rely on without the
// discovery output repeating it.
var builtinTypes = []TypeDecl{
	{Name: ObjectClass},
	{Name: StringClass, Interfaces: []string{"java.lang.CharSequence", "java.lang.Comparable", "java.io.Serializable"}},
	{Name: "java.lang.CharSequence"},
	{Name: "java.lang.Comparable"},
	{Name: "java.lang.Runnable"},
	{Name: "java.lang.Iterable"},
	{Name: "java.lang.AutoCloseable"},
	{Name: "java.io.Serializable"},
	{Name: "java.lang.Class"},
	{Name: "java.lang.Enum"},
	{Name: "java.lang.Number"},
	{Name: "java.lang.Boolean"},
	{Name: "java.lang.Character"},
	{Name: "java.lang.Byte", Superclass: "java.lang.Number"},
	{Name: "java.lang.Short", Superclass: "java.lang.Number"},
	{Name: "java.lang.Integer", Superclass: "java.lang.Number"},
	{Name: "java.lang.Long", Superclass: "java.lang.Number"},
	{Name: "java.lang.Float", Superclass: "java.lang.Number"},
	{Name: "java.lang.Double", Superclass: "java.lang.Number"},
	{Name: "java.lang.StringBuilder"},
	{Name: ThrowableClass, Interfaces: []string{"java.io.Serializable"}},
	{Name: "java.lang.Exception", Superclass: ThrowableClass},
	{Name: "java.lang.Error", Superclass: ThrowableClass},
	{Name: "java.lang.RuntimeException", Superclass: "java.lang.Exception"},
	{Name: "java.lang.IllegalArgumentException", Superclass: "java.lang.RuntimeException"},
	{Name: "java.lang.IllegalStateException", Superclass: "java.lang.RuntimeException"},
	{Name: "java.lang.NullPointerException", Superclass: "java.lang.RuntimeException"},
	{Name: "java.lang.IndexOutOfBoundsException", Superclass: "java.lang.RuntimeException"},
	{Name: "java.lang.ArrayIndexOutOfBoundsException", Superclass: "java.lang.IndexOutOfBoundsException"},
	{Name: "java.lang.UnsupportedOperationException", Superclass: "java.lang.RuntimeException"},
	{Name: "java.lang.ArithmeticException", Superclass: "java.lang.RuntimeException"},
	{Name: "java.lang.ClassCastException", Superclass: "java.lang.RuntimeException"},
	{Name: "java.io.IOException", Superclass: "java.lang.Exception"},
	{Name: "java.lang.InterruptedException", Superclass: "java.lang.Exception"},
	{Name: "java.lang.OutOfMemoryError", Superclass: "java.lang.VirtualMachineError"},
	{Name: "java.lang.VirtualMachineError", Superclass: "java.lang.Error"},
	{Name: "java.lang.AssertionError", Superclass: "java.lang.Error"},
}

// Builtins returns a fresh table holding the built-in java.lang hierarchy.
func Builtins() *TypeTable {
	t := NewTypeTable(nil)
	for _, decl := range builtinTypes {
		t.Define(decl)
	}
	return t
}

// Package ast defines the element model produced by the discovery front end.
//
// The front end (a javac plugin or annotation processor) walks the compiled
// program and writes one JSON document describing every class that declares
// an accessed or native member. Member order inside a class is the declared
// order and is significant: it defines each member's ordinal among its
// siblings, which in turn feeds cache symbol names.
package ast

import "encoding/json"

// Program is the root of the discovery output.
type Program struct {
	Classes []Class    `json:"classes"`
	Types   []TypeDecl `json:"types"` // Supertype information for referenced types not listed in Classes
}

// Class represents a class, interface or enum that declares at least one
// interesting member.
type Class struct {
	Name       string   `json:"name"`       // Binary name, e.g. "com.example.Outer$Inner"
	Kind       string   `json:"kind"`       // "class", "interface" or "enum"
	Superclass string   `json:"superclass"` // Binary name; empty means java.lang.Object
	Interfaces []string `json:"interfaces"`
	Members    []Member `json:"members"`
	Location   Location `json:"location"`
}

// TypeDecl carries the supertypes of a referenced type.
type TypeDecl struct {
	Name       string   `json:"name"`
	Superclass string   `json:"superclass"`
	Interfaces []string `json:"interfaces"`
}

// Location represents a position in the Java source file.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

// MemberKind distinguishes the members of a class.
type MemberKind string

const (
	FieldMember       MemberKind = "field"
	MethodMember      MemberKind = "method"
	ConstructorMember MemberKind = "constructor"
)

// Member represents one enclosed element of a class.
type Member struct {
	Kind          MemberKind      `json:"kind"`
	Name          string          `json:"name"`       // Empty or "<init>" for constructors
	Type          string          `json:"type"`       // Field type expression
	ReturnType    string          `json:"returnType"` // Method return type expression
	Params        []Param         `json:"params"`
	Modifiers     []string        `json:"modifiers"` // "static", "final", "native", ...
	Access        *Access         `json:"access"`    // Non-nil when the member carries the access annotation
	ConstantValue json.RawMessage `json:"constantValue,omitempty"`
	Location      Location        `json:"location"`
}

// Param represents a method or constructor parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Access holds the attributes of the access annotation.
type Access struct {
	CacheMode           string `json:"cacheMode"`           // "DEFAULT", "NONE" or "EAGER_PERSISTENT"
	PerformanceCritical bool   `json:"performanceCritical"` // Legacy attribute, implies EAGER_PERSISTENT under DEFAULT
}

// HasModifier checks if the member has a specific modifier.
func (m *Member) HasModifier(modifier string) bool {
	for _, mod := range m.Modifiers {
		if mod == modifier {
			return true
		}
	}
	return false
}

// IsStatic returns true if the member is declared static.
func (m *Member) IsStatic() bool {
	return m.HasModifier("static")
}

// IsFinal returns true if the member is declared final.
func (m *Member) IsFinal() bool {
	return m.HasModifier("final")
}

// IsNative returns true if the member is a native method.
func (m *Member) IsNative() bool {
	return m.Kind == MethodMember && m.HasModifier("native")
}

// IsAccessed returns true if the member carries the access annotation.
func (m *Member) IsAccessed() bool {
	return m.Access != nil
}

// HasConstantValue returns true if the discovery front end recorded a
// compile-time constant for the member.
func (m *Member) HasConstantValue() bool {
	return len(m.ConstantValue) > 0 && string(m.ConstantValue) != "null"
}

package model

import "strings"

// DefaultType is the root of every type hierarchy and the type of untyped
// parameters and objects.
const DefaultType = "object"

// Parameter is a typed "?name" of a variable or action.
type Parameter struct {
	Name string // with the "?" prefix
	Type string
}

// String returns "?x - type".
func (p Parameter) String() string {
	return p.Name + " - " + p.Type
}

// Variable is a predicate or function signature.
type Variable struct {
	Name       string
	Parameters []Parameter
	Span       Span
}

// Equal compares the case-insensitive name and the parameter count.
func (v Variable) Equal(o Variable) bool {
	return strings.EqualFold(v.Name, o.Name) && len(v.Parameters) == len(o.Parameters)
}

// Declaration renders the variable as it would be declared.
func (v Variable) Declaration() string {
	var b strings.Builder
	b.WriteString(v.Name)
	for _, p := range v.Parameters {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	return b.String()
}

// Grounded renders the variable name with concrete arguments, the way
// initial facts name their variables ("at truck1 depot").
func Grounded(name string, args ...string) string {
	if len(args) == 0 {
		return strings.ToLower(name)
	}
	return strings.ToLower(name + " " + strings.Join(args, " "))
}

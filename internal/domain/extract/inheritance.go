package extract

import (
	"strings"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/syntax"
)

// typedName is one name of a "a b - t c - (either u v)" list with the
// types it was assigned.
type typedName struct {
	name  string
	types []string
	node  syntax.Node
}

// scanTyped walks declaration elements left to right. Names are buffered
// until a "-", then assigned the type that follows; names still buffered
// at the end get defaultType.
func scanTyped(elements []syntax.Node, defaultType string, r Reporter) []typedName {
	var out, pending []typedName
	for i := 0; i < len(elements); i++ {
		e := elements[i]
		switch {
		case isSeparator(e):
			if i+1 >= len(elements) {
				r.AddProblem(e.Start(), model.SeverityError, "expected a type after '-'")
				continue
			}
			i++
			types := typeNames(elements[i], r)
			for _, p := range pending {
				p.types = types
				out = append(out, p)
			}
			pending = pending[:0]
		case e.Kind() == syntax.Other || e.Kind() == syntax.Parameter:
			pending = append(pending, typedName{name: strings.ToLower(e.Token().Text), node: e})
		default:
			r.AddProblem(e.Start(), model.SeverityError, "unexpected %q in declaration list", firstLine(e.Text()))
		}
	}
	for _, p := range pending {
		p.types = []string{defaultType}
		out = append(out, p)
	}
	return out
}

// typeNames reads the type after a "-": a name or "(either a b ...)".
func typeNames(n syntax.Node, r Reporter) []string {
	if n.Kind() == syntax.Other {
		return []string{strings.ToLower(n.Token().Text)}
	}
	if n.Keyword() == "either" {
		var out []string
		for _, c := range n.Elements() {
			if c.Kind() == syntax.Other {
				out = append(out, strings.ToLower(c.Token().Text))
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	r.AddProblem(n.Start(), model.SeverityError, "invalid type %q", firstLine(n.Text()))
	return []string{model.DefaultType}
}

// ParseInheritance builds a parent -> children hierarchy from declaration
// elements. Names not followed by a type attach to defaultParent.
func ParseInheritance(elements []syntax.Node, defaultParent string, r Reporter) *model.Inheritance {
	h := model.NewInheritance(defaultParent)
	for _, tn := range scanTyped(elements, defaultParent, r) {
		for _, t := range tn.types {
			if t != tn.name {
				h.Add(tn.name, t)
			}
		}
	}
	return h
}

// ParseTypes parses the elements of ":types". A type used only as a
// parent becomes a child of "object", so the hierarchy has one root.
func ParseTypes(elements []syntax.Node, r Reporter) *model.Inheritance {
	h := ParseInheritance(elements, model.DefaultType, r)
	for _, name := range h.Names() {
		if name == model.DefaultType {
			continue
		}
		if _, ok := h.Parent(name); !ok {
			h.Add(name, model.DefaultType)
		}
	}
	return h
}

// ParseObjects parses the elements of ":objects" or ":constants" into an
// object -> type map.
func ParseObjects(elements []syntax.Node, r Reporter) *model.ObjectTypes {
	m := model.NewObjectTypes()
	for _, tn := range scanTyped(elements, model.DefaultType, r) {
		m.Set(tn.name, tn.types[0])
	}
	return m
}

// ParseParameters parses "?a ?b - t ?c" into typed parameters, in order.
func ParseParameters(elements []syntax.Node, r Reporter) []model.Parameter {
	var out []model.Parameter
	for _, tn := range scanTyped(elements, model.DefaultType, r) {
		if !strings.HasPrefix(tn.name, "?") {
			r.AddProblem(tn.node.Start(), model.SeverityError, "expected a parameter, found %q", tn.name)
			continue
		}
		out = append(out, model.Parameter{Name: tn.name, Type: tn.types[0]})
	}
	return out
}

// ParseVariable parses "(name ?p - type ...)".
func ParseVariable(n syntax.Node, r Reporter) (model.Variable, bool) {
	if !n.IsBracket() {
		r.AddProblem(n.Start(), model.SeverityError, "expected a declaration in brackets, found %q", n.Text())
		return model.Variable{}, false
	}
	name, rest := head(n)
	if name == "" {
		r.AddProblem(n.Start(), model.SeverityError, "missing name in %q", firstLine(n.Text()))
		return model.Variable{}, false
	}
	return model.Variable{
		Name:       name,
		Parameters: ParseParameters(rest, r),
		Span:       model.SpanOf(n),
	}, true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "..."
	}
	return s
}

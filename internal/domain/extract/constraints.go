package extract

import (
	"strconv"
	"strings"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/syntax"
)

// constraintShape describes a combinator: how many leading numbers it
// takes and how many goal descriptors follow.
type constraintShape struct {
	kind    model.ConstraintKind
	numbers int
	goals   int
}

var constraintShapes = map[string]constraintShape{
	"always":          {model.ConstraintAlways, 0, 1},
	"sometime":        {model.ConstraintSometime, 0, 1},
	"at-most-once":    {model.ConstraintAtMostOnce, 0, 1},
	"within":          {model.ConstraintWithin, 1, 1},
	"sometime-after":  {model.ConstraintSometimeAfter, 0, 2},
	"sometime-before": {model.ConstraintSometimeBefore, 0, 2},
	"always-within":   {model.ConstraintAlwaysWithin, 1, 2},
	"hold-during":     {model.ConstraintHoldDuring, 2, 1},
	"hold-after":      {model.ConstraintHoldAfter, 1, 1},
}

// ParseConstraints parses the body of a ":constraints" section. Top-level
// "and" is flattened. Forms that are not recognized are kept as
// ConstraintUnrecognized so callers can report them.
func ParseConstraints(section syntax.Node, r Reporter) []model.Constraint {
	var out []model.Constraint
	for _, e := range section.Elements() {
		out = append(out, parseConstraint(e, r)...)
	}
	return out
}

func parseConstraint(n syntax.Node, r Reporter) []model.Constraint {
	unrecognized := []model.Constraint{{Kind: model.ConstraintUnrecognized, Node: n}}
	if !n.IsBracket() {
		r.AddProblem(n.Start(), model.SeverityError, "expected a constraint, found %q", n.Text())
		return unrecognized
	}

	kw := n.Keyword()
	els := n.Elements()
	if shape, ok := constraintShapes[kw]; ok {
		c, ok := parseShaped(n, shape, els, r)
		if !ok {
			return unrecognized
		}
		return []model.Constraint{c}
	}

	switch kw {
	case "and":
		var out []model.Constraint
		for _, e := range els {
			out = append(out, parseConstraint(e, r)...)
		}
		return out
	case "at":
		if len(els) == 2 && els[0].Kind() == syntax.Other && strings.EqualFold(els[0].Token().Text, "end") && els[1].IsBracket() {
			return []model.Constraint{{Kind: model.ConstraintAtEnd, Goals: []syntax.Node{els[1]}, Node: n}}
		}
	case "preference":
		if c, ok := parsePreference(n, els, r); ok {
			return []model.Constraint{c}
		}
		return unrecognized
	case "after", "strictly-after":
		if c, ok := parseAfter(n, kw, els, r); ok {
			return []model.Constraint{c}
		}
		return unrecognized
	case "":
		if c, ok := parseNamedCondition(n, r); ok {
			return []model.Constraint{c}
		}
	}
	r.AddProblem(n.Start(), model.SeverityWarning, "unsupported constraint %q", firstLine(n.Text()))
	return unrecognized
}

func parseShaped(n syntax.Node, shape constraintShape, els []syntax.Node, r Reporter) (model.Constraint, bool) {
	if len(els) != shape.numbers+shape.goals {
		r.AddProblem(n.Start(), model.SeverityError, "%s expects %d arguments, found %d",
			n.Keyword(), shape.numbers+shape.goals, len(els))
		return model.Constraint{}, false
	}
	c := model.Constraint{Kind: shape.kind, Node: n}
	for _, e := range els[:shape.numbers] {
		v, err := strconv.ParseFloat(e.Token().Text, 64)
		if err != nil || e.Kind() != syntax.Other {
			r.AddProblem(e.Start(), model.SeverityError, "%s expects a number, found %q", n.Keyword(), firstLine(e.Text()))
			return model.Constraint{}, false
		}
		c.Bounds = append(c.Bounds, v)
	}
	for _, e := range els[shape.numbers:] {
		if !e.IsBracket() {
			r.AddProblem(e.Start(), model.SeverityError, "%s expects a condition, found %q", n.Keyword(), e.Text())
			return model.Constraint{}, false
		}
		c.Goals = append(c.Goals, e)
	}
	return c, true
}

// parsePreference parses "(preference [NAME] BODY)".
func parsePreference(n syntax.Node, els []syntax.Node, r Reporter) (model.Constraint, bool) {
	c := model.Constraint{Kind: model.ConstraintPreference, Node: n}
	if len(els) > 0 && els[0].Kind() == syntax.Other {
		c.Name = strings.ToLower(els[0].Token().Text)
		els = els[1:]
	}
	if len(els) != 1 || !els[0].IsBracket() {
		r.AddProblem(n.Start(), model.SeverityError, "preference expects one constrained formula")
		return model.Constraint{}, false
	}
	body := parseConstraint(els[0], r)
	if len(body) == 1 {
		c.Body = &body[0]
	} else {
		c.Body = &model.Constraint{Kind: model.ConstraintUnrecognized, Node: els[0]}
	}
	return c, true
}

// parseAfter parses "(after A B)" where A and B are condition names or
// inline named conditions.
func parseAfter(n syntax.Node, kw string, els []syntax.Node, r Reporter) (model.Constraint, bool) {
	if len(els) != 2 {
		r.AddProblem(n.Start(), model.SeverityError, "%s expects two conditions, found %d", kw, len(els))
		return model.Constraint{}, false
	}
	kind := model.ConstraintAfter
	if kw == "strictly-after" {
		kind = model.ConstraintStrictlyAfter
	}
	c := model.Constraint{Kind: kind, Node: n}
	for i, e := range els {
		var ref model.Constraint
		switch {
		case e.Kind() == syntax.Other:
			ref = model.Constraint{Kind: model.ConstraintNamedCondition, Name: strings.ToLower(e.Token().Text), Node: e}
		case e.IsBracket():
			named, ok := parseNamedCondition(e, r)
			if !ok {
				r.AddProblem(e.Start(), model.SeverityError, "expected a named condition, found %q", firstLine(e.Text()))
				return model.Constraint{}, false
			}
			ref = named
		default:
			return model.Constraint{}, false
		}
		if i == 0 {
			c.Predecessor = &ref
		} else {
			c.Successor = &ref
		}
	}
	return c, true
}

// parseNamedCondition parses "(:name NAME :condition GD)".
func parseNamedCondition(n syntax.Node, r Reporter) (model.Constraint, bool) {
	c := model.Constraint{Kind: model.ConstraintNamedCondition, Node: n}
	els := n.Elements()
	for i := 0; i+1 < len(els); i += 2 {
		key := els[i]
		if key.Kind() != syntax.Other {
			return model.Constraint{}, false
		}
		switch strings.ToLower(key.Token().Text) {
		case ":name":
			c.Name = strings.ToLower(els[i+1].Token().Text)
		case ":condition":
			c.Goals = append(c.Goals, els[i+1])
		default:
			return model.Constraint{}, false
		}
	}
	if c.Name == "" || len(els)%2 != 0 {
		return model.Constraint{}, false
	}
	return c, true
}

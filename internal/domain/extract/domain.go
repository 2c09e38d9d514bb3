package extract

import (
	"regexp"
	"strings"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/syntax"
	"github.com/corey/pddl/internal/ports"
)

var domainRe = regexp.MustCompile(`(?is)^\s*\(\s*define\s*\(\s*domain\s+([^\s()]+)\s*\)`)

type domainSection func(d *model.DomainInfo, n syntax.Node)

// domainSections dispatches the sections of "(define (domain ...))".
// Sections marked repeatable may occur any number of times.
var domainSections = map[string]struct {
	parse      domainSection
	repeatable bool
}{
	":requirements":    {parseRequirements, false},
	":types":           {parseTypesSection, false},
	":constants":       {parseConstantsSection, false},
	":predicates":      {parsePredicatesSection, false},
	":functions":       {parseFunctionsSection, false},
	":constraints":     {parseDomainConstraints, false},
	":derived":         {parseDerived, true},
	":action":          {parseAction(model.InstantAction), true},
	":durative-action": {parseAction(model.DurativeAction), true},
	":process":         {parseAction(model.Process), true},
	":event":           {parseAction(model.Event), true},
}

// DomainSections lists the section keywords a domain may contain.
func DomainSections() []string {
	out := make([]string, 0, len(domainSections))
	for k := range domainSections {
		out = append(out, k)
	}
	return out
}

// ParseDomain extracts a domain model from tree. It returns false when the
// text does not start with "(define (domain NAME)", so the caller can try
// another extractor.
func ParseDomain(meta model.FileMeta, source string, tree *syntax.Tree, pos ports.PositionResolver) (*model.DomainInfo, bool) {
	m := domainRe.FindStringSubmatch(stripComments(tree.Text()))
	if m == nil {
		return nil, false
	}
	define := tree.Root().FirstOpenBracket("define")
	if !define.Valid() {
		return nil, false
	}

	d := model.NewDomainInfo(m[1])
	d.Load(meta, source, tree, pos)

	seen := make(map[string]bool)
	for _, section := range define.Elements() {
		kw := section.Keyword()
		if kw == "domain" {
			continue
		}
		handler, ok := domainSections[kw]
		if !ok {
			d.AddProblem(section.Start(), model.SeverityWarning, "unexpected domain section %q", firstLine(section.Text()))
			continue
		}
		if seen[kw] && !handler.repeatable {
			d.AddProblem(section.Start(), model.SeverityWarning, "duplicate %s section ignored", kw)
			continue
		}
		seen[kw] = true
		handler.parse(d, section)
	}
	return d, true
}

func parseRequirements(d *model.DomainInfo, n syntax.Node) {
	for _, e := range n.Elements() {
		text := strings.ToLower(e.Token().Text)
		if e.Kind() != syntax.Other || !strings.HasPrefix(text, ":") {
			d.AddProblem(e.Start(), model.SeverityError, "invalid requirement %q", firstLine(e.Text()))
			continue
		}
		if !d.HasRequirement(text) {
			d.Requirements = append(d.Requirements, text)
		}
	}
}

func parseTypesSection(d *model.DomainInfo, n syntax.Node) {
	d.Types = ParseTypes(n.Elements(), d)
}

func parseConstantsSection(d *model.DomainInfo, n syntax.Node) {
	d.Constants = ParseObjects(n.Elements(), d)
}

func parsePredicatesSection(d *model.DomainInfo, n syntax.Node) {
	d.Predicates = parseVariables(d, n.Elements(), "predicate")
}

// parseFunctionsSection parses "(f ?x - t) - number (g)"; the "- number"
// return types are skipped.
func parseFunctionsSection(d *model.DomainInfo, n syntax.Node) {
	var decls []syntax.Node
	els := n.Elements()
	for i := 0; i < len(els); i++ {
		if isSeparator(els[i]) {
			i++
			continue
		}
		decls = append(decls, els[i])
	}
	d.Functions = parseVariables(d, decls, "function")
}

func parseVariables(d *model.DomainInfo, decls []syntax.Node, what string) []model.Variable {
	var out []model.Variable
	for _, decl := range decls {
		v, ok := ParseVariable(decl, d)
		if !ok {
			continue
		}
		if findDuplicate(out, v) {
			d.AddProblem(decl.Start(), model.SeverityWarning, "%s %q declared more than once", what, v.Name)
			continue
		}
		out = append(out, v)
	}
	return out
}

func findDuplicate(vars []model.Variable, v model.Variable) bool {
	for _, o := range vars {
		if strings.EqualFold(o.Name, v.Name) {
			return true
		}
	}
	return false
}

func parseDomainConstraints(d *model.DomainInfo, n syntax.Node) {
	d.Constraints = ParseConstraints(n, d)
}

// parseDerived parses "(:derived (name ?x - t) BODY)".
func parseDerived(d *model.DomainInfo, n syntax.Node) {
	els := n.Elements()
	if len(els) == 0 {
		d.AddProblem(n.Start(), model.SeverityError, "derived predicate without declaration")
		return
	}
	v, ok := ParseVariable(els[0], d)
	if !ok {
		return
	}
	v.Span = model.SpanOf(n)
	dp := model.DerivedPredicate{Variable: v}
	if len(els) > 1 {
		dp.Body = els[1]
	}
	d.Derived = append(d.Derived, dp)
}

// parseAction parses "(:action NAME :key VALUE ...)" and its durative,
// process and event siblings.
func parseAction(kind model.ActionKind) domainSection {
	return func(d *model.DomainInfo, n syntax.Node) {
		els := n.Elements()
		if len(els) == 0 || els[0].Kind() != syntax.Other || strings.HasPrefix(els[0].Token().Text, ":") {
			d.AddProblem(n.Start(), model.SeverityError, "%s without a name", kind)
			return
		}
		a := model.Action{
			Kind: kind,
			Name: strings.ToLower(els[0].Token().Text),
			Span: model.SpanOf(n),
		}
		for i := 1; i < len(els); i++ {
			key := els[i]
			if key.Kind() != syntax.Other || !strings.HasPrefix(key.Token().Text, ":") {
				d.AddProblem(key.Start(), model.SeverityError, "expected a keyword in %s %q, found %q", kind, a.Name, firstLine(key.Text()))
				continue
			}
			if i+1 >= len(els) {
				d.AddProblem(key.Start(), model.SeverityError, "missing value for %s", key.Token().Text)
				break
			}
			i++
			value := els[i]
			switch strings.ToLower(key.Token().Text) {
			case ":parameters":
				if value.IsBracket() {
					a.Parameters = ParseParameters(value.Elements(), d)
				} else {
					d.AddProblem(value.Start(), model.SeverityError, "parameters of %q must be in brackets", a.Name)
				}
			case ":precondition":
				a.Precondition = value
			case ":condition":
				a.Condition = value
			case ":duration":
				a.Duration = value
			case ":effect":
				a.Effect = value
			default:
				d.AddProblem(key.Start(), model.SeverityWarning, "unknown keyword %s in %s %q", key.Token().Text, kind, a.Name)
			}
		}
		for _, existing := range d.Actions {
			if existing.Name == a.Name {
				d.AddProblem(n.Start(), model.SeverityWarning, "%s %q declared more than once", kind, a.Name)
				break
			}
		}
		d.Actions = append(d.Actions, a)
	}
}

package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/syntax"
	"github.com/corey/pddl/internal/ports"
)

var problemRe = regexp.MustCompile(`(?is)^\s*\(\s*define\s*\(\s*problem\s+([^\s()]+)\s*\)\s*\(\s*:domain\s+([^\s()]+)\s*\)`)

type problemSection func(p *model.ProblemInfo, n syntax.Node)

var problemSections = map[string]problemSection{
	":objects":     parseObjectsSection,
	":init":        parseInitSection,
	":goal":        parseGoalSection,
	":constraints": parseProblemConstraints,
	":metric":      parseMetricSection,
}

// unsupportedFacts are init constructs kept verbatim rather than evaluated.
var unsupportedFacts = map[string]bool{
	"forall":   true,
	"assign":   true,
	"increase": true,
	"decrease": true,
}

// ParseProblem extracts a problem model from tree. It returns false unless
// the text starts with "(define (problem NAME) (:domain DOMAIN)".
func ParseProblem(meta model.FileMeta, source string, tree *syntax.Tree, pos ports.PositionResolver) (*model.ProblemInfo, bool) {
	m := problemRe.FindStringSubmatch(stripComments(tree.Text()))
	if m == nil {
		return nil, false
	}
	define := tree.Root().FirstOpenBracket("define")
	if !define.Valid() {
		return nil, false
	}

	p := model.NewProblemInfo(m[1], m[2])
	p.Load(meta, source, tree, pos)

	seen := make(map[string]bool)
	for _, section := range define.Elements() {
		kw := section.Keyword()
		// problems may restate requirements; the domain's are the ones used
		if kw == "problem" || kw == ":domain" || kw == ":requirements" {
			continue
		}
		handler, ok := problemSections[kw]
		if !ok {
			p.AddProblem(section.Start(), model.SeverityWarning, "unexpected problem section %q", firstLine(section.Text()))
			continue
		}
		if seen[kw] {
			p.AddProblem(section.Start(), model.SeverityWarning, "duplicate %s section ignored", kw)
			continue
		}
		seen[kw] = true
		handler(p, section)
	}
	return p, true
}

func parseObjectsSection(p *model.ProblemInfo, n syntax.Node) {
	p.Objects = ParseObjects(n.Elements(), p)
}

func parseGoalSection(p *model.ProblemInfo, n syntax.Node) {
	for _, e := range n.Elements() {
		if e.IsBracket() {
			p.Goal = e
			return
		}
	}
	p.AddProblem(n.Start(), model.SeverityError, "empty goal")
}

func parseMetricSection(p *model.ProblemInfo, n syntax.Node) {
	p.Metric = normalize(n.NestedNonCommentText())
}

func parseProblemConstraints(p *model.ProblemInfo, n syntax.Node) {
	p.Constraints = ParseConstraints(n, p)
}

// parseInitSection reads each top-level entry of ":init". Supply/demand
// directives go to their own collector, everything else becomes a
// TimedVariableValue.
func parseInitSection(p *model.ProblemInfo, n syntax.Node) {
	for _, e := range n.Elements() {
		if !e.IsBracket() {
			p.AddProblem(e.Start(), model.SeverityError, "unexpected %q in :init", firstLine(e.Text()))
			continue
		}
		if e.Keyword() == "supply-demand" {
			p.SupplyDemands = append(p.SupplyDemands, parseSupplyDemand(p, e))
			continue
		}
		p.Init = append(p.Init, ParseInitEntry(e))
	}
}

func parseSupplyDemand(p *model.ProblemInfo, n syntax.Node) model.SupplyDemand {
	sd := model.SupplyDemand{Span: model.SpanOf(n), Node: n}
	for _, e := range n.Elements() {
		if e.Kind() == syntax.Other {
			sd.Name = strings.ToLower(e.Token().Text)
			break
		}
	}
	if sd.Name == "" {
		p.AddProblem(n.Start(), model.SeverityWarning, "supply-demand without a name")
	}
	return sd
}

// ParseInitEntry parses one ":init" bracket. "(at NUMBER FACT)" sets the
// time; any other shape, "(at truck depot)" included, is a fact at time 0.
func ParseInitEntry(n syntax.Node) model.TimedVariableValue {
	tv := model.TimedVariableValue{Span: model.SpanOf(n)}
	fact := n
	if n.Keyword() == "at" {
		els := n.Elements()
		if len(els) == 2 && els[0].Token().IsNumber() && els[1].IsBracket() {
			tv.Time, _ = strconv.ParseFloat(els[0].Token().Text, 64)
			fact = els[1]
		}
	}
	tv.VariableName, tv.Value = ParseFact(fact)
	return tv
}

// ParseFact returns the variable a fact bracket names and the value it
// assigns.
func ParseFact(n syntax.Node) (string, model.VariableValue) {
	verbatim := model.UnsupportedValue(n.NonCommentText())
	kw := n.Keyword()
	els := n.Elements()

	switch {
	case kw == "=":
		if len(els) != 2 || !els[0].IsBracket() {
			return normalize(n.NestedNonCommentText()), verbatim
		}
		name := groundedName(els[0])
		if !els[1].Token().IsNumber() {
			return name, verbatim
		}
		v, _ := strconv.ParseFloat(els[1].Token().Text, 64)
		return name, model.NumberValue(v)

	case kw == "not":
		if len(els) != 1 || !els[0].IsBracket() {
			return normalize(n.NestedNonCommentText()), verbatim
		}
		name, inner := ParseFact(els[0])
		if neg, ok := inner.Negate(); ok {
			return name, neg
		}
		return name, verbatim

	case unsupportedFacts[kw]:
		for _, e := range els {
			if e.IsBracket() && kw != "forall" {
				return groundedName(e), verbatim
			}
		}
		return normalize(n.NestedNonCommentText()), verbatim
	}
	return groundedName(n), model.BoolValue(true)
}

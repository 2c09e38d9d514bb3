// Package extract turns syntax trees into the semantic model: domains,
// problems, plans and happenings traces. Extraction never fails on bad
// input; it records ParsingProblems and keeps going.
package extract

import (
	"regexp"
	"strings"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/syntax"
)

// Reporter receives diagnostics. *model.FileBase implements it.
type Reporter interface {
	AddProblem(offset int, severity model.Severity, format string, args ...any)
}

type discard struct{}

func (discard) AddProblem(int, model.Severity, string, ...any) {}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

var spaceRe = regexp.MustCompile(`\s+`)

// normalize lower-cases text and collapses whitespace runs to one space.
func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(text, " ")))
}

// stripComments blanks every comment with spaces so offsets are kept.
func stripComments(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for tok := range syntax.Tokens(text) {
		if tok.Kind == syntax.Comment {
			b.WriteString(strings.Repeat(" ", len(tok.Text)))
			continue
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

// head splits a bracket into its leading name and the remaining elements.
// Operator brackets are named by their keyword, so a predicate called "at"
// still has a name.
func head(n syntax.Node) (string, []syntax.Node) {
	els := n.Elements()
	if n.Kind() == syntax.OpenBracketOperator {
		return n.Keyword(), els
	}
	if len(els) == 0 || els[0].Kind() != syntax.Other {
		return "", els
	}
	return strings.ToLower(els[0].Token().Text), els[1:]
}

// groundedName renders a fact bracket as "name arg...".
func groundedName(n syntax.Node) string {
	name, rest := head(n)
	args := make([]string, 0, len(rest))
	for _, r := range rest {
		args = append(args, normalize(r.NonCommentText()))
	}
	return model.Grounded(name, args...)
}

func isSeparator(n syntax.Node) bool {
	return n.Kind() == syntax.Other && n.Token().Text == "-"
}

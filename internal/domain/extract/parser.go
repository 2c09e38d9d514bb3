package extract

import (
	"strings"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/syntax"
	"github.com/corey/pddl/internal/ports"
)

// Parser turns document text into a FileInfo.
type Parser struct {
	// Positions builds the offset-to-position mapping for a text.
	// Defaults to syntax.NewLineIndex.
	Positions func(text string) ports.PositionResolver
}

// NewParser returns a Parser using line/character positions.
func NewParser() *Parser { return &Parser{} }

func (p *Parser) positions(text string) ports.PositionResolver {
	if p == nil || p.Positions == nil {
		return syntax.NewLineIndex(text)
	}
	return p.Positions(text)
}

// ParseFile parses text according to meta.Language.
func (p *Parser) ParseFile(meta model.FileMeta, text string) model.FileInfo {
	return p.ParseTransformed(meta, text, text)
}

// ParseTransformed parses text, the output of a pre-parsing step, while the
// returned file keeps source as its text.
func (p *Parser) ParseTransformed(meta model.FileMeta, source, text string) model.FileInfo {
	pos := p.positions(text)

	switch strings.ToLower(meta.Language) {
	case model.LanguagePlan:
		return ParsePlan(meta, source, pos)
	case model.LanguageHappenings:
		return ParseHappenings(meta, source, pos)
	}

	tree := syntax.Parse(text)
	if !strings.EqualFold(meta.Language, model.LanguagePDDL) {
		return unknown(meta, source, tree, pos)
	}
	var info model.FileInfo
	if d, ok := ParseDomain(meta, source, tree, pos); ok {
		info = d
	} else if pr, ok := ParseProblem(meta, source, tree, pos); ok {
		pp, err := PreParsingDirective(source)
		if err != nil {
			pr.AddProblem(0, model.SeverityWarning, "%v", err)
		}
		pr.PreParsing = pp
		info = pr
	} else {
		u := unknown(meta, source, tree, pos)
		reportOffending(u, tree)
		return u
	}
	reportOffending(info.Base(), tree)
	return info
}

func unknown(meta model.FileMeta, source string, tree *syntax.Tree, pos ports.PositionResolver) *model.UnknownInfo {
	u := &model.UnknownInfo{}
	u.Load(meta, source, tree, pos)
	return u
}

func reportOffending(r Reporter, tree *syntax.Tree) {
	for _, tok := range tree.Offending() {
		if tok.Kind == syntax.CloseBracket {
			r.AddProblem(tok.Start, model.SeverityError, "unexpected closing bracket")
		} else {
			r.AddProblem(tok.Start, model.SeverityError, "unmatched opening bracket")
		}
	}
}

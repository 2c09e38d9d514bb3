package model

import "github.com/corey/pddl/internal/domain/syntax"

// Span is a byte range of the source text. End is exclusive.
type Span struct {
	Start int
	End   int
}

// SpanOf returns the span of a node; the zero Span for an invalid node.
func SpanOf(n syntax.Node) Span {
	if !n.Valid() {
		return Span{}
	}
	return Span{Start: n.Start(), End: n.End()}
}

// Contains reports whether offset falls inside s.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

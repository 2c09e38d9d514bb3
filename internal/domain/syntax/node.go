package syntax

import (
	"strings"

	"github.com/corey/pddl/internal/ports"
)

// scopeKeywords are the operators that declare parameters.
var scopeKeywords = map[string]bool{
	":action":          true,
	":durative-action": true,
	":process":         true,
	":event":           true,
	":derived":         true,
	"forall":           true,
	"exists":           true,
}

// Node is a handle into a Tree. The zero Node is invalid; check Valid
// before using the result of a lookup that may fail.
type Node struct {
	tree *Tree
	id   NodeID
}

func (n Node) data() *nodeData { return &n.tree.nodes[n.id] }

// Valid reports whether n refers to a node.
func (n Node) Valid() bool { return n.tree != nil && n.id >= 0 }

// ID returns the arena index of n.
func (n Node) ID() NodeID { return n.id }

// Tree returns the tree n belongs to.
func (n Node) Tree() *Tree { return n.tree }

// Token returns the token n wraps. The root wraps a Document token.
func (n Node) Token() Token { return n.data().tok }

// Kind returns the token kind of n.
func (n Node) Kind() TokenKind { return n.data().tok.Kind }

// Keyword returns the lower-cased operator keyword, or "".
func (n Node) Keyword() string { return n.data().tok.Keyword() }

// IsBracket reports whether n is an open bracket (plain or operator).
func (n Node) IsBracket() bool { return n.data().tok.IsOpen() }

// IsRoot reports whether n is the document node.
func (n Node) IsRoot() bool { return n.id == 0 }

// Closed reports whether a bracket node found its close bracket.
func (n Node) Closed() bool { return n.data().closed }

// Start returns the offset of the first byte of n.
func (n Node) Start() int { return n.data().tok.Start }

// End returns the exclusive end offset of n, close bracket included.
func (n Node) End() int { return n.data().end }

// Text returns the source text n spans.
func (n Node) Text() string { return n.tree.text[n.Start():n.End()] }

// Parent returns the enclosing node; the root's parent is invalid.
func (n Node) Parent() Node {
	p := n.data().parent
	if p == noNode {
		return Node{}
	}
	return Node{tree: n.tree, id: p}
}

// Children returns all direct children, whitespace and comments included.
func (n Node) Children() []Node {
	ids := n.data().children
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{tree: n.tree, id: id}
	}
	return out
}

// Elements returns the children that carry meaning: everything except
// whitespace and comments.
func (n Node) Elements() []Node {
	var out []Node
	for _, id := range n.data().children {
		switch n.tree.nodes[id].tok.Kind {
		case Whitespace, Comment:
			continue
		}
		out = append(out, Node{tree: n.tree, id: id})
	}
	return out
}

// NonWhitespaceChildren returns the direct children except whitespace.
// Comments are kept.
func (n Node) NonWhitespaceChildren() []Node {
	var out []Node
	for _, id := range n.data().children {
		if n.tree.nodes[id].tok.Kind != Whitespace {
			out = append(out, Node{tree: n.tree, id: id})
		}
	}
	return out
}

// Range converts the span of n to start and end positions.
func (n Node) Range(pos ports.PositionResolver) (start, end ports.Position) {
	return pos.PositionAt(n.Start()), pos.PositionAt(n.End())
}

// ChildrenOfKind returns the direct children with the given kind.
func (n Node) ChildrenOfKind(kind TokenKind) []Node {
	var out []Node
	for _, id := range n.data().children {
		if n.tree.nodes[id].tok.Kind == kind {
			out = append(out, Node{tree: n.tree, id: id})
		}
	}
	return out
}

// NextElement returns the next sibling that is not whitespace or a comment.
func (n Node) NextElement() Node {
	p := n.Parent()
	if !p.Valid() {
		return Node{}
	}
	siblings := p.data().children
	for i := n.data().index + 1; i < len(siblings); i++ {
		switch n.tree.nodes[siblings[i]].tok.Kind {
		case Whitespace, Comment:
			continue
		}
		return Node{tree: n.tree, id: siblings[i]}
	}
	return Node{}
}

// FirstOpenBracket returns the first child operator bracket whose keyword
// equals keyword (case-insensitive).
func (n Node) FirstOpenBracket(keyword string) Node {
	keyword = strings.ToLower(keyword)
	for _, id := range n.data().children {
		if n.tree.nodes[id].tok.Keyword() == keyword {
			return Node{tree: n.tree, id: id}
		}
	}
	return Node{}
}

// NestedText returns the text between a bracket's own token and its close
// bracket. For a leaf it returns the token text.
func (n Node) NestedText() string {
	d := n.data()
	if !d.tok.IsOpen() && !n.IsRoot() {
		return d.tok.Text
	}
	var b strings.Builder
	for _, c := range n.Children() {
		b.WriteString(c.Text())
	}
	return b.String()
}

// NestedNonCommentText is NestedText with every comment removed at any depth.
func (n Node) NestedNonCommentText() string {
	d := n.data()
	if !d.tok.IsOpen() && !n.IsRoot() {
		if d.tok.Kind == Comment {
			return ""
		}
		return d.tok.Text
	}
	var b strings.Builder
	for _, c := range n.Children() {
		c.writeNonComment(&b)
	}
	return b.String()
}

// NonCommentText returns the text of n, own brackets included, with
// comments removed.
func (n Node) NonCommentText() string {
	var b strings.Builder
	n.writeNonComment(&b)
	return b.String()
}

func (n Node) writeNonComment(b *strings.Builder) {
	d := n.data()
	switch {
	case d.tok.Kind == Comment:
		return
	case !d.tok.IsOpen() && !n.IsRoot():
		b.WriteString(d.tok.Text)
		return
	}
	b.WriteString(d.tok.Text)
	for _, c := range n.Children() {
		c.writeNonComment(b)
	}
	if d.closed {
		b.WriteString(")")
	}
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the visited node.
func (n Node) Walk(fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// Ancestor returns the nearest enclosing operator bracket whose keyword is
// one of keywords. n itself is not considered.
func (n Node) Ancestor(keywords ...string) Node {
	for p := n.Parent(); p.Valid(); p = p.Parent() {
		kw := p.Keyword()
		if kw == "" {
			continue
		}
		for _, k := range keywords {
			if kw == k {
				return p
			}
		}
	}
	return Node{}
}

// IsParametrizableScope reports whether n declares parameters.
func (n Node) IsParametrizableScope() bool {
	return scopeKeywords[n.Keyword()]
}

// FindParametrizableScope returns the innermost scope enclosing n (n
// included) that declares the parameter. The name may carry the "?" prefix.
func (n Node) FindParametrizableScope(param string) Node {
	name := "?" + strings.ToLower(strings.TrimPrefix(param, "?"))
	for s := n; s.Valid(); s = s.Parent() {
		if !s.IsParametrizableScope() {
			continue
		}
		defs := s.ParameterDefinitions()
		if !defs.Valid() {
			continue
		}
		for _, p := range defs.ChildrenOfKind(Parameter) {
			if strings.ToLower(p.Token().Text) == name {
				return s
			}
		}
	}
	return Node{}
}

// ParameterDefinitions returns the bracket holding the parameter list of a
// scope: the bracket after ":parameters" for actions, processes and events,
// the first bracket for ":derived", "forall" and "exists".
func (n Node) ParameterDefinitions() Node {
	switch n.Keyword() {
	case ":action", ":durative-action", ":process", ":event":
		for _, c := range n.Elements() {
			if c.Kind() == Other && strings.EqualFold(c.Token().Text, ":parameters") {
				if next := c.NextElement(); next.Valid() && next.IsBracket() {
					return next
				}
				return Node{}
			}
		}
	case ":derived", "forall", "exists":
		for _, c := range n.Elements() {
			if c.IsBracket() {
				return c
			}
		}
	}
	return Node{}
}

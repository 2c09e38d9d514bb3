package syntax

import (
	"iter"
	"sort"
	"strings"
)

// NodeID indexes a node in its tree's arena.
type NodeID int32

const noNode NodeID = -1

type nodeData struct {
	tok      Token
	parent   NodeID
	index    int // position among the parent's children
	children []NodeID
	end      int // exclusive; includes the close bracket when closed
	closed   bool
}

// Tree is an immutable syntax tree. Node 0 is the document root and spans
// the whole text. Tokens that could not be placed structurally are kept in
// Offending, ordered by position.
type Tree struct {
	text      string
	nodes     []nodeData
	offending []Token
}

// Parse tokenizes text and builds its tree.
func Parse(text string) *Tree {
	return Build(Tokens(text))
}

// Build assembles a tree from a token stream in one left-to-right pass.
// Extra close brackets and brackets still open at the end of input are
// recorded as offending tokens; Build never fails.
func Build(tokens iter.Seq[Token]) *Tree {
	t := &Tree{nodes: []nodeData{{tok: Token{Kind: Document}, parent: noNode}}}
	var text strings.Builder
	stack := []NodeID{0}

	for tok := range tokens {
		text.WriteString(tok.Text)
		top := stack[len(stack)-1]
		switch {
		case tok.IsOpen():
			stack = append(stack, t.add(tok, top))
		case tok.Kind == CloseBracket:
			if top == 0 {
				t.offending = append(t.offending, tok)
				continue
			}
			t.nodes[top].end = tok.End
			t.nodes[top].closed = true
			stack = stack[:len(stack)-1]
		default:
			t.add(tok, top)
		}
	}

	// Unclosed brackets end where their last descendant ends.
	for i := len(stack) - 1; i > 0; i-- {
		n := &t.nodes[stack[i]]
		if k := len(n.children); k > 0 {
			n.end = max(n.end, t.nodes[n.children[k-1]].end)
		}
		t.offending = append(t.offending, n.tok)
	}
	sort.SliceStable(t.offending, func(i, j int) bool {
		return t.offending[i].Start < t.offending[j].Start
	})

	t.text = text.String()
	t.nodes[0].end = len(t.text)
	return t
}

func (t *Tree) add(tok Token, parent NodeID) NodeID {
	id := NodeID(len(t.nodes))
	p := &t.nodes[parent]
	t.nodes = append(t.nodes, nodeData{
		tok:    tok,
		parent: parent,
		index:  len(p.children),
		end:    tok.End,
	})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// Root returns the document node.
func (t *Tree) Root() Node { return Node{tree: t, id: 0} }

// Text returns the full source text.
func (t *Tree) Text() string { return t.text }

// Offending returns the tokens the builder could not place.
func (t *Tree) Offending() []Token { return t.offending }

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) Node { return Node{tree: t, id: id} }

// NodeAt returns the most specific node whose span contains offset.
// Whitespace expands to its enclosing node so callers always land on
// something meaningful. Offsets outside the text return the root.
func (t *Tree) NodeAt(offset int) Node {
	n := t.Root()
	if offset < 0 || offset > len(t.text) {
		return n
	}
	for {
		children := t.nodes[n.id].children
		i := sort.Search(len(children), func(i int) bool {
			return t.nodes[children[i]].end > offset
		})
		if i == len(children) || t.nodes[children[i]].tok.Start > offset {
			break
		}
		n = Node{tree: t, id: children[i]}
	}
	if n.Kind() == Whitespace {
		return n.Parent()
	}
	return n
}

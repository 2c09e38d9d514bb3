package model

import (
	"sort"
	"sync"
)

// Inheritance is a parent -> ordered children mapping as declared in
// ":types", ":constants" or ":objects". Names are lower case. Cycles are
// tolerated: closures stop at the first revisit.
type Inheritance struct {
	Root string

	names    []string
	known    map[string]bool
	children map[string][]string
	parents  map[string][]string

	mu          sync.Mutex
	descendants map[string][]string
}

// NewInheritance creates an empty hierarchy rooted at root.
func NewInheritance(root string) *Inheritance {
	return &Inheritance{
		Root:     root,
		known:    map[string]bool{root: true},
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// Add records child as a child of parent. Repeated edges are ignored.
func (h *Inheritance) Add(child, parent string) {
	h.declare(child)
	h.declare(parent)
	for _, c := range h.children[parent] {
		if c == child {
			return
		}
	}
	h.children[parent] = append(h.children[parent], child)
	h.parents[child] = append(h.parents[child], parent)

	h.mu.Lock()
	h.descendants = nil
	h.mu.Unlock()
}

func (h *Inheritance) declare(name string) {
	if h.known[name] {
		return
	}
	h.known[name] = true
	h.names = append(h.names, name)
}

// Names returns every declared name except the root, in declaration order.
func (h *Inheritance) Names() []string {
	return append([]string(nil), h.names...)
}

// Has reports whether name is declared (the root always is).
func (h *Inheritance) Has(name string) bool { return h.known[name] }

// Children returns the direct children of parent in declaration order.
func (h *Inheritance) Children(parent string) []string {
	return append([]string(nil), h.children[parent]...)
}

// Parents returns the direct parents of child.
func (h *Inheritance) Parents(child string) []string {
	return append([]string(nil), h.parents[child]...)
}

// Parent returns the first declared parent of child.
func (h *Inheritance) Parent(child string) (string, bool) {
	ps := h.parents[child]
	if len(ps) == 0 {
		return "", false
	}
	return ps[0], true
}

// Descendants returns every transitive child of name, never name itself.
// The result is memoized.
func (h *Inheritance) Descendants(name string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d, ok := h.descendants[name]; ok {
		return append([]string(nil), d...)
	}
	d := closure(name, h.children)
	if h.descendants == nil {
		h.descendants = make(map[string][]string)
	}
	h.descendants[name] = d
	return append([]string(nil), d...)
}

// Ancestors returns every transitive parent of name.
func (h *Inheritance) Ancestors(name string) []string {
	return closure(name, h.parents)
}

// IsA reports whether name equals typ or descends from it.
func (h *Inheritance) IsA(name, typ string) bool {
	if name == typ {
		return true
	}
	for _, a := range h.Ancestors(name) {
		if a == typ {
			return true
		}
	}
	return false
}

// closure walks edges breadth-first from start. A node seen twice ends
// that branch.
func closure(start string, edges map[string][]string) []string {
	visited := map[string]bool{start: true}
	var out []string
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range edges[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	return out
}

// ObjectTypes maps object names to their declared type, keeping
// declaration order.
type ObjectTypes struct {
	objects []string
	types   map[string]string
}

// NewObjectTypes creates an empty map.
func NewObjectTypes() *ObjectTypes {
	return &ObjectTypes{types: make(map[string]string)}
}

// Set assigns typ to obj. The first assignment wins.
func (m *ObjectTypes) Set(obj, typ string) {
	if _, ok := m.types[obj]; ok {
		return
	}
	m.objects = append(m.objects, obj)
	m.types[obj] = typ
}

// Type returns the declared type of obj.
func (m *ObjectTypes) Type(obj string) (string, bool) {
	t, ok := m.types[obj]
	return t, ok
}

// Objects returns all object names in declaration order.
func (m *ObjectTypes) Objects() []string {
	return append([]string(nil), m.objects...)
}

// Len returns the number of objects.
func (m *ObjectTypes) Len() int { return len(m.objects) }

// ObjectsOfType returns the objects whose type is typ or a descendant of
// typ in types. A nil hierarchy matches typ exactly.
func (m *ObjectTypes) ObjectsOfType(typ string, types *Inheritance) []string {
	var out []string
	for _, obj := range m.objects {
		t := m.types[obj]
		if t == typ || (types != nil && types.IsA(t, typ)) {
			out = append(out, obj)
		}
	}
	return out
}

// TypeNames returns the distinct types used, sorted.
func (m *ObjectTypes) TypeNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range m.types {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

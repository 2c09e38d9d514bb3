package model

import (
	"sort"
	"strings"

	"github.com/corey/pddl/internal/domain/syntax"
)

// ActionKind distinguishes the action-like constructs of a domain.
type ActionKind int

const (
	InstantAction ActionKind = iota
	DurativeAction
	Process
	Event
)

// String returns the PDDL keyword of the construct.
func (k ActionKind) String() string {
	switch k {
	case DurativeAction:
		return ":durative-action"
	case Process:
		return ":process"
	case Event:
		return ":event"
	default:
		return ":action"
	}
}

// Action is an action, durative action, process or event schema. Node
// handles that were not declared are invalid.
type Action struct {
	Kind         ActionKind
	Name         string
	Parameters   []Parameter
	Span         Span
	Precondition syntax.Node // ":precondition"
	Condition    syntax.Node // ":condition" of durative actions
	Duration     syntax.Node // ":duration" of durative actions
	Effect       syntax.Node
}

// DerivedPredicate is a ":derived" rule.
type DerivedPredicate struct {
	Variable
	Body syntax.Node
}

// DomainInfo is the semantic model of a domain file.
type DomainInfo struct {
	FileBase

	Name         string
	Requirements []string // lower case, declaration order
	Types        *Inheritance
	Constants    *ObjectTypes
	Predicates   []Variable
	Functions    []Variable
	Derived      []DerivedPredicate
	Constraints  []Constraint
	Actions      []Action
}

// NewDomainInfo creates an empty domain model.
func NewDomainInfo(name string) *DomainInfo {
	return &DomainInfo{
		Name:      strings.ToLower(name),
		Types:     NewInheritance(DefaultType),
		Constants: NewObjectTypes(),
	}
}

// Kind implements FileInfo.
func (*DomainInfo) Kind() Kind { return KindDomain }
func (*DomainInfo) isFileInfo() {}

// HasRequirement reports whether the domain declares req (":typing" or
// "typing").
func (d *DomainInfo) HasRequirement(req string) bool {
	req = strings.ToLower(req)
	if !strings.HasPrefix(req, ":") {
		req = ":" + req
	}
	for _, r := range d.Requirements {
		if r == req {
			return true
		}
	}
	return false
}

// Predicate looks up a predicate by name.
func (d *DomainInfo) Predicate(name string) (Variable, bool) {
	return findVariable(d.Predicates, name)
}

// Function looks up a function by name.
func (d *DomainInfo) Function(name string) (Variable, bool) {
	return findVariable(d.Functions, name)
}

// IsFunction reports whether name is a declared function rather than a
// predicate or derived predicate.
func (d *DomainInfo) IsFunction(name string) bool {
	_, ok := d.Function(name)
	return ok
}

// Action looks up an action-like construct by name.
func (d *DomainInfo) Action(name string) (Action, bool) {
	for _, a := range d.Actions {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return Action{}, false
}

// TypeNames returns the declared types, root excluded, sorted.
func (d *DomainInfo) TypeNames() []string {
	names := d.Types.Names()
	sort.Strings(names)
	return names
}

func findVariable(vars []Variable, name string) (Variable, bool) {
	for _, v := range vars {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return Variable{}, false
}

package model

import (
	"strconv"
	"strings"

	"github.com/corey/pddl/internal/domain/syntax"
)

// ValueKind classifies a VariableValue.
type ValueKind int

const (
	ValueBool ValueKind = iota
	ValueNumber
	ValueUnsupported
)

// VariableValue is the value an initial fact assigns: a boolean, a number,
// or an expression kept verbatim because it is not evaluated here.
type VariableValue struct {
	kind     ValueKind
	b        bool
	n        float64
	verbatim string
}

// BoolValue returns a boolean value.
func BoolValue(b bool) VariableValue { return VariableValue{kind: ValueBool, b: b} }

// NumberValue returns a numeric value.
func NumberValue(n float64) VariableValue { return VariableValue{kind: ValueNumber, n: n} }

// UnsupportedValue keeps text verbatim.
func UnsupportedValue(text string) VariableValue {
	return VariableValue{kind: ValueUnsupported, verbatim: text}
}

// Kind returns the value kind.
func (v VariableValue) Kind() ValueKind { return v.kind }

// Bool returns the boolean and whether v is boolean.
func (v VariableValue) Bool() (bool, bool) { return v.b, v.kind == ValueBool }

// Number returns the number and whether v is numeric.
func (v VariableValue) Number() (float64, bool) { return v.n, v.kind == ValueNumber }

// Verbatim returns the kept text of an unsupported value.
func (v VariableValue) Verbatim() string { return v.verbatim }

// IsSupported reports whether v is boolean or numeric.
func (v VariableValue) IsSupported() bool { return v.kind != ValueUnsupported }

// Negate flips a boolean value. Other kinds are returned unchanged with
// false.
func (v VariableValue) Negate() (VariableValue, bool) {
	if v.kind != ValueBool {
		return v, false
	}
	return BoolValue(!v.b), true
}

// String renders the value.
func (v VariableValue) String() string {
	switch v.kind {
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	default:
		return v.verbatim
	}
}

// TimedVariableValue is one initial fact. Untimed facts have Time 0.
type TimedVariableValue struct {
	Time         float64
	VariableName string // lower case "name arg..."
	Value        VariableValue
	Span         Span
}

// SupplyDemand is a "(supply-demand NAME ...)" directive of ":init".
type SupplyDemand struct {
	Name string
	Span Span
	Node syntax.Node
}

// PreParsing is a ";;!pre-parsing:" directive.
type PreParsing struct {
	Type    string   `json:"type"`
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// ProblemInfo is the semantic model of a problem file.
type ProblemInfo struct {
	FileBase

	Name          string
	DomainName    string
	Objects       *ObjectTypes
	Init          []TimedVariableValue
	SupplyDemands []SupplyDemand
	Constraints   []Constraint
	Goal          syntax.Node
	Metric        string
	PreParsing    *PreParsing
}

// NewProblemInfo creates an empty problem model.
func NewProblemInfo(name, domainName string) *ProblemInfo {
	return &ProblemInfo{
		Name:       strings.ToLower(name),
		DomainName: strings.ToLower(domainName),
		Objects:    NewObjectTypes(),
	}
}

// Kind implements FileInfo.
func (*ProblemInfo) Kind() Kind { return KindProblem }
func (*ProblemInfo) isFileInfo() {}

// InitialState returns the facts that hold at time 0.
func (p *ProblemInfo) InitialState() []TimedVariableValue {
	var out []TimedVariableValue
	for _, v := range p.Init {
		if v.Time == 0 {
			out = append(out, v)
		}
	}
	return out
}

// TimedInitialLiterals returns the facts scheduled after time 0.
func (p *ProblemInfo) TimedInitialLiterals() []TimedVariableValue {
	var out []TimedVariableValue
	for _, v := range p.Init {
		if v.Time > 0 {
			out = append(out, v)
		}
	}
	return out
}

// Unsupported returns the facts whose value was kept verbatim.
func (p *ProblemInfo) Unsupported() []TimedVariableValue {
	var out []TimedVariableValue
	for _, v := range p.Init {
		if !v.Value.IsSupported() {
			out = append(out, v)
		}
	}
	return out
}

// AllObjects merges domain constants with problem objects; problem objects
// win on conflict. domain may be nil.
func (p *ProblemInfo) AllObjects(domain *DomainInfo) *ObjectTypes {
	m := NewObjectTypes()
	for _, o := range p.Objects.Objects() {
		t, _ := p.Objects.Type(o)
		m.Set(o, t)
	}
	if domain != nil {
		for _, o := range domain.Constants.Objects() {
			t, _ := domain.Constants.Type(o)
			m.Set(o, t)
		}
	}
	return m
}

package model

import "github.com/corey/pddl/internal/domain/syntax"

// ConstraintKind classifies a trajectory constraint.
type ConstraintKind int

const (
	ConstraintUnrecognized ConstraintKind = iota
	ConstraintAlways
	ConstraintSometime
	ConstraintWithin
	ConstraintAtMostOnce
	ConstraintSometimeAfter
	ConstraintSometimeBefore
	ConstraintAlwaysWithin
	ConstraintHoldDuring
	ConstraintHoldAfter
	ConstraintAtEnd
	ConstraintPreference
	ConstraintNamedCondition
	ConstraintAfter
	ConstraintStrictlyAfter
)

var constraintNames = map[ConstraintKind]string{
	ConstraintUnrecognized:   "unrecognized",
	ConstraintAlways:         "always",
	ConstraintSometime:       "sometime",
	ConstraintWithin:         "within",
	ConstraintAtMostOnce:     "at-most-once",
	ConstraintSometimeAfter:  "sometime-after",
	ConstraintSometimeBefore: "sometime-before",
	ConstraintAlwaysWithin:   "always-within",
	ConstraintHoldDuring:     "hold-during",
	ConstraintHoldAfter:      "hold-after",
	ConstraintAtEnd:          "at end",
	ConstraintPreference:     "preference",
	ConstraintNamedCondition: "named-condition",
	ConstraintAfter:          "after",
	ConstraintStrictlyAfter:  "strictly-after",
}

// String returns the PDDL name of the combinator.
func (k ConstraintKind) String() string { return constraintNames[k] }

// Constraint is one parsed trajectory constraint.
type Constraint struct {
	Kind ConstraintKind

	// Name of a preference or named condition; for a reference inside
	// after/strictly-after only Name is set.
	Name string

	// Bounds holds the numbers of within, always-within, hold-during and
	// hold-after, in source order.
	Bounds []float64

	// Goals holds the goal descriptors in source order.
	Goals []syntax.Node

	// Body is the constrained formula of a preference.
	Body *Constraint

	// Predecessor and Successor of after / strictly-after.
	Predecessor *Constraint
	Successor   *Constraint

	Node syntax.Node
}

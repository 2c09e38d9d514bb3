// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// AssociationKind names one of the two explicit override maps the workspace
// keeps: problem -> domain and plan (or happenings) -> problem.
type AssociationKind string

const (
	// ProblemToDomain maps a problem file URI to the domain file URI it uses.
	ProblemToDomain AssociationKind = "problem_domain"

	// PlanToProblem maps a plan or happenings file URI to its problem file URI.
	PlanToProblem AssociationKind = "plan_problem"
)

// AssociationStore persists explicit file associations so they survive a
// restart. The backing store (bbolt) keeps one bucket per AssociationKind.
// Writes are transactional.
type AssociationStore interface {
	// SaveAssociation records from -> to, replacing any existing target for from.
	SaveAssociation(kind AssociationKind, from, to string) error

	// DeleteAssociation removes the association keyed by from.
	// Idempotent: deleting a missing key is not an error.
	DeleteAssociation(kind AssociationKind, from string) error

	// LoadAssociations returns every association of the given kind.
	// Returns an empty map (not nil) when nothing was stored.
	LoadAssociations(kind AssociationKind) (map[string]string, error)
}

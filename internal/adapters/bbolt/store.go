// Package bbolt implements ports.AssociationStore using bbolt (embedded B+ tree).
// Each workspace root gets its own top-level bucket. Within that bucket, one
// sub-bucket per association kind maps a file URI to the URI it is associated
// with. Writes are transactional; a crash mid-write cannot corrupt previously
// committed data.
package bbolt

import (
	"errors"
	"fmt"
	"time"

	"github.com/corey/pddl/internal/ports"
	bolt "go.etcd.io/bbolt"
)

// Store is a bbolt database holding the associations of any number of
// workspaces.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Associations returns the association store of one workspace. id is
// usually the workspace root path.
func (s *Store) Associations(id string) *Associations {
	return &Associations{db: s.db, root: []byte(id)}
}

// Workspaces lists the ids that have stored associations.
func (s *Store) Workspaces() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			out = append(out, string(name))
			return nil
		})
	})
	return out, err
}

// DeleteWorkspace removes every association of a workspace.
// Idempotent: deleting a nonexistent workspace is not an error.
func (s *Store) DeleteWorkspace(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(id)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		return nil
	})
}

// Associations implements ports.AssociationStore for one workspace.
type Associations struct {
	db   *bolt.DB
	root []byte
}

var _ ports.AssociationStore = (*Associations)(nil)

// SaveAssociation records from -> to, replacing any previous target.
func (a *Associations) SaveAssociation(kind ports.AssociationKind, from, to string) error {
	if from == "" || to == "" {
		return fmt.Errorf("save %s association: empty uri", kind)
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(a.root)
		if err != nil {
			return err
		}
		b, err := root.CreateBucketIfNotExists([]byte(kind))
		if err != nil {
			return err
		}
		return b.Put([]byte(from), []byte(to))
	})
}

// DeleteAssociation removes the association keyed by from.
func (a *Associations) DeleteAssociation(kind ports.AssociationKind, from string) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		b := a.bucket(tx, kind)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(from))
	})
}

// LoadAssociations returns every association of kind.
func (a *Associations) LoadAssociations(kind ports.AssociationKind) (map[string]string, error) {
	out := make(map[string]string)
	err := a.db.View(func(tx *bolt.Tx) error {
		b := a.bucket(tx, kind)
		if b == nil {
			return nil
		}
		// string conversion copies; bbolt slices are only valid within tx
		return b.ForEach(func(k, v []byte) error {
			out[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load %s associations: %w", kind, err)
	}
	return out, nil
}

func (a *Associations) bucket(tx *bolt.Tx, kind ports.AssociationKind) *bolt.Bucket {
	root := tx.Bucket(a.root)
	if root == nil {
		return nil
	}
	return root.Bucket([]byte(kind))
}

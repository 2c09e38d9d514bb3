package bbolt

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/pddl/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// bbolt association store: explicit problem -> domain and plan -> problem
// overrides survive a restart, scoped per workspace root.
// =============================================================================

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestAssociations_SaveLoad(t *testing.T) {
	store, _ := newTestStore(t)
	a := store.Associations("/work/blocks")

	require.NoError(t, a.SaveAssociation(ports.ProblemToDomain, "file:///w/p1.pddl", "file:///w/domain.pddl"))
	require.NoError(t, a.SaveAssociation(ports.ProblemToDomain, "file:///w/p2.pddl", "file:///w/domain.pddl"))
	require.NoError(t, a.SaveAssociation(ports.PlanToProblem, "file:///w/p1.plan", "file:///w/p1.pddl"))

	problems, err := a.LoadAssociations(ports.ProblemToDomain)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"file:///w/p1.pddl": "file:///w/domain.pddl",
		"file:///w/p2.pddl": "file:///w/domain.pddl",
	}, problems)

	plans, err := a.LoadAssociations(ports.PlanToProblem)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"file:///w/p1.plan": "file:///w/p1.pddl"}, plans)
}

func TestAssociations_SaveReplaces(t *testing.T) {
	store, _ := newTestStore(t)
	a := store.Associations("ws")

	require.NoError(t, a.SaveAssociation(ports.ProblemToDomain, "p", "d1"))
	require.NoError(t, a.SaveAssociation(ports.ProblemToDomain, "p", "d2"))

	got, err := a.LoadAssociations(ports.ProblemToDomain)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"p": "d2"}, got)
}

func TestAssociations_EmptyURIRejected(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Associations("ws").SaveAssociation(ports.ProblemToDomain, "", "d"))
}

func TestAssociations_LoadEmptyIsNotNil(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.Associations("fresh").LoadAssociations(ports.PlanToProblem)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAssociations_DeleteIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	a := store.Associations("ws")

	assert.NoError(t, a.DeleteAssociation(ports.ProblemToDomain, "missing"), "no bucket yet")

	require.NoError(t, a.SaveAssociation(ports.ProblemToDomain, "p", "d"))
	require.NoError(t, a.DeleteAssociation(ports.ProblemToDomain, "p"))
	require.NoError(t, a.DeleteAssociation(ports.ProblemToDomain, "p"))

	got, err := a.LoadAssociations(ports.ProblemToDomain)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_WorkspaceScoped(t *testing.T) {
	// Two workspaces in the same bbolt file use separate buckets.
	store, _ := newTestStore(t)
	require.NoError(t, store.Associations("A").SaveAssociation(ports.ProblemToDomain, "p", "dA"))
	require.NoError(t, store.Associations("B").SaveAssociation(ports.ProblemToDomain, "p", "dB"))

	got, err := store.Associations("A").LoadAssociations(ports.ProblemToDomain)
	require.NoError(t, err)
	assert.Equal(t, "dA", got["p"])

	ids, err := store.Workspaces()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, ids)

	require.NoError(t, store.DeleteWorkspace("A"))
	require.NoError(t, store.DeleteWorkspace("A"), "idempotent")

	got, err = store.Associations("A").LoadAssociations(ports.ProblemToDomain)
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = store.Associations("B").LoadAssociations(ports.ProblemToDomain)
	require.NoError(t, err)
	assert.Equal(t, "dB", got["p"])
}

func TestStore_SurvivesRestart(t *testing.T) {
	// Save, close, reopen, load. Simulates a process restart.
	dir := t.TempDir()
	path := filepath.Join(dir, "restart.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.Associations("ws").SaveAssociation(ports.PlanToProblem, "plan", "problem"))
	require.NoError(t, store1.Close())

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	got, err := store2.Associations("ws").LoadAssociations(ports.PlanToProblem)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"plan": "problem"}, got)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	// bbolt supports concurrent readers and a single writer.
	store, _ := newTestStore(t)
	a := store.Associations("ws")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := a.SaveAssociation(ports.ProblemToDomain, fmt.Sprintf("p%d", i), "d"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := a.LoadAssociations(ports.ProblemToDomain); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent access error: %v", err)
	}

	got, err := a.LoadAssociations(ports.ProblemToDomain)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

// =============================================================================
// Lock contention: the 1s timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_ErrorMessage(t *testing.T) {
	// A second open of a locked database times out with a wrapped error.
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Nil(t, store2)
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout")
	assert.Less(t, elapsed, 3*time.Second, "should not hang")
}

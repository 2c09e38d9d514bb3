package workspace

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Workspace: file state machine, debounced batches, cascade invalidation,
// event ordering and suppression, associations and removal.
// =============================================================================

const (
	domainURI  = "file:///w/domain.pddl"
	problemURI = "file:///w/p1.pddl"
	planURI    = "file:///w/p1.plan"
)

func TestUpsert_NewFileParsedImmediately(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	rec := &recorder{}
	w.Subscribe(rec.listen)

	info := upsert(t, w, domainURI, 1, domainText("d1", "(p)"))

	require.IsType(t, &model.DomainInfo{}, info)
	assert.Equal(t, model.Parsed, info.Base().Status())
	assert.Equal(t, []EventKind{Inserted, Updated}, rec.kinds())

	got, ok := w.GetFileInfo(domainURI)
	require.True(t, ok)
	assert.Same(t, info, got)
	assert.Equal(t, []string{"file:///w"}, w.Folders())
}

func TestUpsert_VersionRules(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	upsert(t, w, domainURI, 2, domainText("d1", "(p)"))

	same := upsert(t, w, domainURI, 2, domainText("d1", "(q)"))
	assert.False(t, same.Base().IsDirty(), "same version is a no-op")
	older := upsert(t, w, domainURI, 1, domainText("d1", "(q)"))
	assert.False(t, older.Base().IsDirty(), "older version is a no-op")

	newer := upsert(t, w, domainURI, 3, domainText("d1", "(q)"))
	assert.True(t, newer.Base().IsDirty())
	assert.Equal(t, 3, newer.Base().Version())
}

func TestUpsertFile_ForceReparsesNow(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	upsert(t, w, domainURI, 1, domainText("d1", "(p)"))

	info, err := w.UpsertFile(context.Background(), domainURI, model.LanguagePDDL, 1, domainText("d1", "(p)", "(q)"), true)
	require.NoError(t, err)
	require.False(t, info.Base().IsDirty())
	assert.Len(t, info.(*model.DomainInfo).Predicates, 2)
}

func TestScheduleParsing_Debounces(t *testing.T) {
	w := newTestWorkspace(t, Options{Delay: 200 * time.Millisecond})
	rec := &recorder{}
	upsert(t, w, domainURI, 1, domainText("d1", "(p)"))
	w.Subscribe(rec.listen)

	for v := 2; v <= 5; v++ {
		upsert(t, w, domainURI, v, domainText("d1", "(p)"))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(rec.of(Updated, domainURI)) > 0
	}, 2*time.Second, 10*time.Millisecond)
	f, _ := w.GetFileInfo(domainURI)
	assert.False(t, f.Base().IsDirty())

	updates := rec.of(Updated, domainURI)
	require.Len(t, updates, 1, "one batch for a burst of edits")
	assert.Equal(t, 5, updates[0].Version)
}

func TestParseAllDirty_CascadesToProblems(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	upsert(t, w, domainURI, 1, domainText("d1", "(p)"))
	upsert(t, w, problemURI, 1, problemText("p1", "d1"))
	upsert(t, w, "file:///w/p2.pddl", 1, problemText("p2", "D1"))
	upsert(t, w, "file:///w/other.pddl", 1, problemText("p3", "d2"))
	upsert(t, w, "file:///elsewhere/p4.pddl", 1, problemText("p4", "d1"))
	upsert(t, w, planURI, 1, ";;!problem: p1\n0: (a)\n")

	_, err := w.UpsertFile(context.Background(), domainURI, model.LanguagePDDL, 2, domainText("d1", "(p)", "(q)"), true)
	require.NoError(t, err)

	dirty := func(uri string) bool {
		f, ok := w.GetFileInfo(uri)
		require.True(t, ok, uri)
		return f.Base().IsDirty()
	}
	assert.True(t, dirty(problemURI))
	assert.True(t, dirty("file:///w/p2.pddl"), "domain names match case-insensitively")
	assert.False(t, dirty("file:///w/other.pddl"))
	assert.False(t, dirty("file:///elsewhere/p4.pddl"), "other folders are not affected")
	assert.False(t, dirty(planURI), "plans wait for their problem")

	w.ParseAllDirty(context.Background())

	for _, f := range w.Files() {
		assert.False(t, f.Base().IsDirty(), f.Base().URI)
	}
}

func TestParseAllDirty_DomainsFirst(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	upsert(t, w, "file:///w/a-problem.pddl", 1, problemText("p1", "d1"))
	upsert(t, w, "file:///w/z-domain.pddl", 1, domainText("d1", "(p)"))

	var order []string
	w.Subscribe(func(e Event) {
		if e.Kind == Updated {
			order = append(order, e.URI)
		}
	})
	upsert(t, w, "file:///w/a-problem.pddl", 2, problemText("p1", "d1"))
	upsert(t, w, "file:///w/z-domain.pddl", 2, domainText("d1", "(p)"))
	w.ParseAllDirty(context.Background())

	assert.Equal(t, []string{"file:///w/z-domain.pddl", "file:///w/a-problem.pddl"}, order)
}

func TestReparse_LeavesDependentsDirty(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	upsert(t, w, domainURI, 1, domainText("d1", "(p)"))
	upsert(t, w, problemURI, 1, problemText("p1", "d1"))

	_, err := w.Reparse(context.Background(), domainURI)
	require.NoError(t, err)
	p, _ := w.GetFileInfo(problemURI)
	assert.True(t, p.Base().IsDirty())

	_, err = w.Reparse(context.Background(), "file:///w/missing.pddl")
	assert.ErrorIs(t, err, ErrUnknownFile)
}

func TestUpdated_SuppressedForSameVersion(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	rec := &recorder{}
	w.Subscribe(rec.listen)
	upsert(t, w, domainURI, 1, domainText("d1", "(p)"))

	_, err := w.Reparse(context.Background(), domainURI)
	require.NoError(t, err)
	_, err = w.UpsertFile(context.Background(), domainURI, model.LanguagePDDL, 1, domainText("d1", "(p)"), true)
	require.NoError(t, err)
	assert.Len(t, rec.of(Updated, domainURI), 1, "version 1 reported once")

	_, err = w.UpsertFile(context.Background(), domainURI, model.LanguagePDDL, 2, domainText("d1", "(q)"), true)
	require.NoError(t, err)
	updates := rec.of(Updated, domainURI)
	require.Len(t, updates, 2)
	assert.Equal(t, 2, updates[1].Version)
	assert.Len(t, rec.of(Inserted, domainURI), 1)
}

func TestUpdated_AfterSuppressedVersion(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	rec := &recorder{}
	upsert(t, w, domainURI, 1, domainText("d1", "(p)"))
	upsert(t, w, problemURI, 1, problemText("p1", "d1"))
	w.Subscribe(rec.listen)

	// the cascade re-parses the problem at its unchanged version 1
	_, err := w.UpsertFile(context.Background(), domainURI, model.LanguagePDDL, 2, domainText("d1", "(q)"), true)
	require.NoError(t, err)
	w.ParseAllDirty(context.Background())
	assert.Empty(t, rec.of(Updated, problemURI))

	upsert(t, w, problemURI, 2, problemText("p1", "d1"))
	w.ParseAllDirty(context.Background())
	updates := rec.of(Updated, problemURI)
	require.Len(t, updates, 1)
	assert.Equal(t, 2, updates[0].Version)
}

func TestListener_MayCallBack(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	var seen atomic.Int32
	w.Subscribe(func(e Event) {
		if _, ok := w.GetFileInfo(e.URI); ok {
			seen.Add(1)
		}
		if e.Kind == Inserted {
			upsert(t, w, "file:///w/from-listener.pddl", 1, domainText("x"))
		}
	})
	upsert(t, w, domainURI, 1, domainText("d1"))

	_, ok := w.GetFileInfo("file:///w/from-listener.pddl")
	assert.True(t, ok)
	assert.Positive(t, seen.Load())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	rec := &recorder{}
	unsubscribe := w.Subscribe(rec.listen)
	upsert(t, w, domainURI, 1, domainText("d1"))
	unsubscribe()
	upsert(t, w, problemURI, 1, problemText("p1", "d1"))

	assert.Len(t, rec.kinds(), 2)
}

func TestUpsert_ExcludedScheme(t *testing.T) {
	w := newTestWorkspace(t, Options{ExcludedSchemes: []string{"git"}})
	_, err := w.Upsert(context.Background(), "git:///w/domain.pddl", model.LanguagePDDL, 1, domainText("d1"))
	assert.ErrorIs(t, err, ErrExcludedScheme)
	assert.Empty(t, w.Files())
}

func TestUpsert_PreParsing(t *testing.T) {
	pre := &templatePreprocessor{}
	w := newTestWorkspace(t, Options{Preprocessor: pre})
	source := ";;!pre-parsing:{\"type\": \"command\", \"command\": \"expand\"}\n" +
		"(define (problem p1) (:domain d1) (:objects {{objects}}))"

	info := upsert(t, w, problemURI, 1, source)
	p, ok := info.(*model.ProblemInfo)
	require.True(t, ok)
	assert.Equal(t, 1, pre.calls)
	assert.Equal(t, 3, p.Objects.Len())
	assert.Equal(t, source, p.Text())

	pre.err = errors.New("boom")
	info, err := w.UpsertFile(context.Background(), problemURI, model.LanguagePDDL, 2, source, true)
	require.NoError(t, err)
	var messages []string
	for _, p := range info.Base().Problems() {
		messages = append(messages, p.Message)
	}
	assert.Contains(t, messages, "pre-parsing failed: boom")
}

func TestDomainFileFor(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	upsert(t, w, domainURI, 1, domainText("d1"))
	p := upsert(t, w, problemURI, 1, problemText("p1", "d1")).(*model.ProblemInfo)

	d, ok := w.DomainFileFor(p)
	require.True(t, ok)
	assert.Equal(t, domainURI, d.URI)

	upsert(t, w, "file:///w/copy.pddl", 1, domainText("D1"))
	_, ok = w.DomainFileFor(p)
	assert.False(t, ok, "ambiguous domains resolve to none")
	assert.Len(t, w.DomainFilesFor(p), 2)

	require.NoError(t, w.AssociateProblemToDomain(problemURI, "file:///w/copy.pddl"))
	d, ok = w.DomainFileFor(p)
	require.True(t, ok)
	assert.Equal(t, "file:///w/copy.pddl", d.URI)

	copyDomain, _ := w.GetFileInfo("file:///w/copy.pddl")
	assert.Len(t, w.ProblemFilesFor(copyDomain.(*model.DomainInfo)), 1)
	original, _ := w.GetFileInfo(domainURI)
	assert.Empty(t, w.ProblemFilesFor(original.(*model.DomainInfo)), "explicit association wins over the name")
}

func TestProblemFileFor_Plan(t *testing.T) {
	w := newTestWorkspace(t, Options{})
	p := upsert(t, w, problemURI, 1, problemText("p1", "d1")).(*model.ProblemInfo)
	plan := upsert(t, w, planURI, 1, ";;!problem: p1\n0: (a)\n")
	trace := upsert(t, w, "file:///w/p1.happenings", 1, ";;!problem: P1\n0: (a)\n")

	got, ok := w.ProblemFileFor(plan)
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Len(t, w.ProblemFilesForPlan(trace), 1)
	assert.Len(t, w.PlanFilesFor(p), 2)

	assert.ErrorIs(t, w.AssociatePlanToProblem(planURI, "file:///w/nope.pddl"), ErrUnknownFile)
}

func TestAssociations_Persisted(t *testing.T) {
	store := newMemStore()
	w := newTestWorkspace(t, Options{Store: store})
	upsert(t, w, domainURI, 1, domainText("d1"))
	upsert(t, w, problemURI, 1, problemText("p1", "other"))
	require.NoError(t, w.AssociateProblemToDomain(problemURI, domainURI))

	saved, err := store.LoadAssociations(ports.ProblemToDomain)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{problemURI: domainURI}, saved)

	reopened := newTestWorkspace(t, Options{Store: store})
	assert.Equal(t, saved, reopened.Associations(ports.ProblemToDomain))

	store.fail = errors.New("disk full")
	assert.Error(t, w.AssociateProblemToDomain(problemURI, domainURI))
}

func TestRemoveFile(t *testing.T) {
	store := newMemStore()
	w := newTestWorkspace(t, Options{Store: store})
	rec := &recorder{}
	upsert(t, w, domainURI, 1, domainText("d1"))
	upsert(t, w, problemURI, 1, problemText("p1", "d1"))
	require.NoError(t, w.AssociateProblemToDomain(problemURI, domainURI))

	var presentDuringRemoving bool
	w.Subscribe(func(e Event) {
		if e.Kind == Removing {
			_, presentDuringRemoving = w.GetFileInfo(e.URI)
		}
	})
	w.Subscribe(rec.listen)

	err := w.RemoveFile(domainURI, RemoveOptions{})
	require.ErrorIs(t, err, ErrHasAssociations)
	_, ok := w.GetFileInfo(domainURI)
	assert.True(t, ok, "refused removal keeps the file")
	assert.Empty(t, rec.kinds())

	require.NoError(t, w.RemoveFile(domainURI, RemoveOptions{RemoveAllReferences: true}))
	_, ok = w.GetFileInfo(domainURI)
	assert.False(t, ok)
	assert.True(t, presentDuringRemoving)
	assert.Equal(t, []EventKind{Removing}, rec.kinds())
	assert.Empty(t, w.Associations(ports.ProblemToDomain))

	saved, _ := store.LoadAssociations(ports.ProblemToDomain)
	assert.Empty(t, saved)

	assert.ErrorIs(t, w.RemoveFile(domainURI, RemoveOptions{}), ErrUnknownFile)

	// re-adding a removed URI is a fresh insert
	upsert(t, w, domainURI, 1, domainText("d1"))
	assert.Len(t, rec.of(Inserted, domainURI), 1)
}

func TestClose_StopsTimer(t *testing.T) {
	w := newTestWorkspace(t, Options{Delay: 20 * time.Millisecond})
	upsert(t, w, domainURI, 1, domainText("d1"))
	upsert(t, w, domainURI, 2, domainText("d1", "(p)"))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	time.Sleep(60 * time.Millisecond)
	f, _ := w.GetFileInfo(domainURI)
	assert.True(t, f.Base().IsDirty())
}

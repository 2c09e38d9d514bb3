package workspace

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/ports"
	"github.com/stretchr/testify/require"
)

// newTestWorkspace creates a workspace whose timer only fires when a test
// wants it to.
func newTestWorkspace(t *testing.T, opts Options) *Workspace {
	t.Helper()
	if opts.Delay == 0 {
		opts.Delay = time.Hour
	}
	w, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

// recorder collects events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) of(kind EventKind, uri string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind && e.URI == uri {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

// memStore is an in-memory ports.AssociationStore.
type memStore struct {
	mu   sync.Mutex
	data map[ports.AssociationKind]map[string]string
	fail error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[ports.AssociationKind]map[string]string)}
}

func (s *memStore) SaveAssociation(kind ports.AssociationKind, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	if s.data[kind] == nil {
		s.data[kind] = make(map[string]string)
	}
	s.data[kind][from] = to
	return nil
}

func (s *memStore) DeleteAssociation(kind ports.AssociationKind, from string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[kind], from)
	return nil
}

func (s *memStore) LoadAssociations(kind ports.AssociationKind) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	for k, v := range s.data[kind] {
		out[k] = v
	}
	return out, nil
}

// templatePreprocessor replaces "{{objects}}" with a fixed object list.
type templatePreprocessor struct {
	calls int
	err   error
}

func (p *templatePreprocessor) Transform(_ context.Context, command string, _ []string, input string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	if command != "expand" {
		return "", errors.New("unknown command " + command)
	}
	return strings.ReplaceAll(input, "{{objects}}", "a b c"), nil
}

func domainText(name string, predicates ...string) string {
	return "(define (domain " + name + ") (:predicates " + strings.Join(predicates, " ") + "))"
}

func problemText(name, domain string) string {
	return "(define (problem " + name + ") (:domain " + domain + ") (:init) (:goal (and)))"
}

func upsert(t *testing.T, w *Workspace, uri string, version int, text string) model.FileInfo {
	t.Helper()
	lang := model.LanguagePDDL
	switch {
	case strings.HasSuffix(uri, ".plan"):
		lang = model.LanguagePlan
	case strings.HasSuffix(uri, ".happenings"):
		lang = model.LanguageHappenings
	}
	info, err := w.Upsert(context.Background(), uri, lang, version, text)
	require.NoError(t, err)
	return info
}

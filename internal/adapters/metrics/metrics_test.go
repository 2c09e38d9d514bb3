package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corey/pddl/internal/domain/extract"
	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/workspace"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsed(t *testing.T, uri, text string) model.FileInfo {
	t.Helper()
	return extract.NewParser().ParseFile(model.FileMeta{URI: uri, Language: model.LanguagePDDL, Version: 1}, text)
}

func TestCollector_TracksFilesAndProblems(t *testing.T) {
	c := New()
	domain := parsed(t, "file:///w/d.pddl", "(define (domain d))")
	broken := parsed(t, "file:///w/p.pddl", "(define (problem p) (:domain d) (:goal (g)))\n)")

	c.OnEvent(workspace.Event{Kind: workspace.Inserted, URI: "file:///w/d.pddl", Version: 1, File: domain})
	c.OnEvent(workspace.Event{Kind: workspace.Inserted, URI: "file:///w/p.pddl", Version: 1, File: broken})
	c.OnEvent(workspace.Event{Kind: workspace.Updated, URI: "file:///w/p.pddl", Version: 2, File: broken})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.files.WithLabelValues("domain")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.files.WithLabelValues("problem")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.problems.WithLabelValues("error")), "updates replace, not add")
	assert.Equal(t, 2.0, testutil.ToFloat64(c.events.WithLabelValues("inserted")))

	c.OnEvent(workspace.Event{Kind: workspace.Removing, URI: "file:///w/p.pddl", Version: 2, File: broken})
	assert.Equal(t, 0.0, testutil.ToFloat64(c.files.WithLabelValues("problem")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.problems.WithLabelValues("error")))
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.OnEvent(workspace.Event{Kind: workspace.Inserted, URI: "file:///w/d.pddl", Version: 1, File: parsed(t, "file:///w/d.pddl", "(define (domain d))")})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `pddl_workspace_files{kind="domain"} 1`), body)
	assert.Contains(t, body, `pddl_workspace_events_total{event="inserted"} 1`)
}

// Package metrics exports workspace state as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/workspace"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// fileState is what the collector remembers of one URI.
type fileState struct {
	kind     string
	errors   int
	warnings int
}

// Collector follows workspace events. Register OnEvent as a listener.
type Collector struct {
	reg      *prometheus.Registry
	events   *prometheus.CounterVec
	files    *prometheus.GaugeVec
	problems *prometheus.GaugeVec

	mu    sync.Mutex
	state map[string]fileState
}

// New creates a collector with its own registry.
func New() *Collector {
	c := &Collector{
		reg:   prometheus.NewRegistry(),
		state: make(map[string]fileState),
	}
	c.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pddl",
		Name:      "workspace_events_total",
		Help:      "Workspace file events by kind.",
	}, []string{"event"})
	c.files = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pddl",
		Name:      "workspace_files",
		Help:      "Tracked files by file kind.",
	}, []string{"kind"})
	c.problems = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pddl",
		Name:      "workspace_problems",
		Help:      "Parsing problems across tracked files by severity.",
	}, []string{"severity"})
	c.reg.MustRegister(c.events, c.files, c.problems)
	return c
}

// OnEvent updates the metrics from one workspace event.
func (c *Collector) OnEvent(ev workspace.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events.WithLabelValues(ev.Kind.String()).Inc()
	if ev.Kind == workspace.Removing {
		delete(c.state, ev.URI)
	} else {
		st := fileState{kind: ev.File.Kind().String()}
		for _, p := range ev.File.Base().Problems() {
			switch p.Severity {
			case model.SeverityError:
				st.errors++
			case model.SeverityWarning:
				st.warnings++
			}
		}
		c.state[ev.URI] = st
	}
	c.recompute()
}

func (c *Collector) recompute() {
	c.files.Reset()
	for _, k := range []model.Kind{model.KindDomain, model.KindProblem, model.KindPlan, model.KindHappenings, model.KindUnknown} {
		c.files.WithLabelValues(k.String()).Set(0)
	}
	var errs, warns int
	for _, st := range c.state {
		c.files.WithLabelValues(st.kind).Inc()
		errs += st.errors
		warns += st.warnings
	}
	c.problems.WithLabelValues(model.SeverityError.String()).Set(float64(errs))
	c.problems.WithLabelValues(model.SeverityWarning.String()).Set(float64(warns))
}

// Registry returns the registry the metrics live in.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

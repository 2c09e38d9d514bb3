package workspace

import (
	"fmt"
	"strings"

	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/ports"
)

// DomainFilesFor returns every domain that problem may belong to: the
// explicitly associated one, or else the domains of the same folder whose
// name matches problem.DomainName.
func (w *Workspace) DomainFilesFor(problem *model.ProblemInfo) []*model.DomainInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.domainFilesForLocked(problem)
}

// DomainFileFor returns the domain of problem when exactly one candidate
// exists. Several same-named domains in one folder resolve to none.
func (w *Workspace) DomainFileFor(problem *model.ProblemInfo) (*model.DomainInfo, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ds := w.domainFilesForLocked(problem)
	if len(ds) != 1 {
		if len(ds) > 1 {
			w.log.Debug("ambiguous domain", "problem", problem.URI, "domain", problem.DomainName, "candidates", len(ds))
		}
		return nil, false
	}
	return ds[0], true
}

func (w *Workspace) domainFilesForLocked(problem *model.ProblemInfo) []*model.DomainInfo {
	if to, ok := w.assoc[ports.ProblemToDomain][problem.URI]; ok {
		if d, ok := w.fileLocked(to).(*model.DomainInfo); ok {
			return []*model.DomainInfo{d}
		}
	}
	var out []*model.DomainInfo
	for _, f := range w.siblingsLocked(problem.URI) {
		if d, ok := f.(*model.DomainInfo); ok && strings.EqualFold(d.Name, problem.DomainName) {
			out = append(out, d)
		}
	}
	sortByURI(out)
	return out
}

// ProblemFilesFor returns the problems that resolve to domain: those
// explicitly associated with it, and same-folder problems without an
// explicit association naming it by name.
func (w *Workspace) ProblemFilesFor(domain *model.DomainInfo) []*model.ProblemInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.problemFilesForLocked(domain)
}

func (w *Workspace) problemFilesForLocked(domain *model.DomainInfo) []*model.ProblemInfo {
	explicit := w.assoc[ports.ProblemToDomain]
	var out []*model.ProblemInfo
	for _, fo := range w.folders {
		for uri, f := range fo.files {
			p, ok := f.(*model.ProblemInfo)
			if !ok {
				continue
			}
			to, has := explicit[uri]
			switch {
			case has && to == domain.URI:
				out = append(out, p)
			case !has && fo.uri == folderOf(domain.URI) && strings.EqualFold(p.DomainName, domain.Name):
				out = append(out, p)
			}
		}
	}
	sortByURI(out)
	return out
}

// ProblemFilesForPlan returns every problem a plan or happenings file may
// belong to, resolved like DomainFilesFor.
func (w *Workspace) ProblemFilesForPlan(plan model.FileInfo) []*model.ProblemInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.problemFilesForPlanLocked(plan)
}

// ProblemFileFor returns the problem of a plan or happenings file when
// exactly one candidate exists.
func (w *Workspace) ProblemFileFor(plan model.FileInfo) (*model.ProblemInfo, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ps := w.problemFilesForPlanLocked(plan)
	if len(ps) != 1 {
		if len(ps) > 1 {
			w.log.Debug("ambiguous problem", "plan", plan.Base().URI, "candidates", len(ps))
		}
		return nil, false
	}
	return ps[0], true
}

func planProblemName(f model.FileInfo) (string, bool) {
	switch v := f.(type) {
	case *model.PlanInfo:
		return v.ProblemName, true
	case *model.HappeningsInfo:
		return v.ProblemName, true
	}
	return "", false
}

func (w *Workspace) problemFilesForPlanLocked(plan model.FileInfo) []*model.ProblemInfo {
	uri := plan.Base().URI
	if to, ok := w.assoc[ports.PlanToProblem][uri]; ok {
		if p, ok := w.fileLocked(to).(*model.ProblemInfo); ok {
			return []*model.ProblemInfo{p}
		}
	}
	name, ok := planProblemName(plan)
	if !ok || name == "" {
		return nil
	}
	var out []*model.ProblemInfo
	for _, f := range w.siblingsLocked(uri) {
		if p, ok := f.(*model.ProblemInfo); ok && strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	sortByURI(out)
	return out
}

// PlanFilesFor returns the plans and happenings that resolve to problem.
func (w *Workspace) PlanFilesFor(problem *model.ProblemInfo) []model.FileInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.planFilesForLocked(problem)
}

func (w *Workspace) planFilesForLocked(problem *model.ProblemInfo) []model.FileInfo {
	explicit := w.assoc[ports.PlanToProblem]
	var out []model.FileInfo
	for _, fo := range w.folders {
		for uri, f := range fo.files {
			name, ok := planProblemName(f)
			if !ok {
				continue
			}
			to, has := explicit[uri]
			switch {
			case has && to == problem.URI:
				out = append(out, f)
			case !has && fo.uri == folderOf(problem.URI) && name != "" && strings.EqualFold(name, problem.Name):
				out = append(out, f)
			}
		}
	}
	sortByURI(out)
	return out
}

func (w *Workspace) siblingsLocked(uri string) map[string]model.FileInfo {
	if fo, ok := w.folders[folderOf(uri)]; ok {
		return fo.files
	}
	return nil
}

// AssociateProblemToDomain makes problemURI resolve to domainURI regardless
// of names and persists the override when a store is configured.
func (w *Workspace) AssociateProblemToDomain(problemURI, domainURI string) error {
	return w.associate(ports.ProblemToDomain, problemURI, domainURI)
}

// AssociatePlanToProblem makes planURI resolve to problemURI.
func (w *Workspace) AssociatePlanToProblem(planURI, problemURI string) error {
	return w.associate(ports.PlanToProblem, planURI, problemURI)
}

func (w *Workspace) associate(kind ports.AssociationKind, from, to string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fileLocked(from) == nil {
		return fmt.Errorf("associate %s: %w", from, ErrUnknownFile)
	}
	if w.fileLocked(to) == nil {
		return fmt.Errorf("associate %s: %w", to, ErrUnknownFile)
	}
	if w.opts.Store != nil {
		if err := w.opts.Store.SaveAssociation(kind, from, to); err != nil {
			return fmt.Errorf("associate %s: %w", from, err)
		}
	}
	w.assoc[kind][from] = to
	return nil
}

// Associations returns a copy of the explicit overrides of kind.
func (w *Workspace) Associations(kind ports.AssociationKind) map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.assoc[kind]))
	for k, v := range w.assoc[kind] {
		out[k] = v
	}
	return out
}

func (w *Workspace) hasAssociationsLocked(uri string) bool {
	for _, m := range w.assoc {
		if _, ok := m[uri]; ok {
			return true
		}
		for _, to := range m {
			if to == uri {
				return true
			}
		}
	}
	return false
}

// dropAssociationsLocked forgets every override naming uri. Store failures
// are logged; the in-memory state is dropped regardless.
func (w *Workspace) dropAssociationsLocked(uri string) {
	for kind, m := range w.assoc {
		for from, to := range m {
			if from != uri && to != uri {
				continue
			}
			delete(m, from)
			if w.opts.Store == nil {
				continue
			}
			if err := w.opts.Store.DeleteAssociation(kind, from); err != nil {
				w.log.Warn("delete association", "kind", kind, "from", from, "error", err)
			}
		}
	}
}

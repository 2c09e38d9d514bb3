// Package workspace tracks the PDDL files of one or more folders, re-parses
// them in debounced batches, resolves problem/domain and plan/problem
// associations and notifies listeners of file lifecycle transitions.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/corey/pddl/internal/domain/extract"
	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/ports"
)

// DefaultDelay is the debounce delay of batch re-parsing.
const DefaultDelay = time.Second

var (
	// ErrHasAssociations is returned by RemoveFile when the file takes part
	// in an explicit association and the caller did not opt in to dropping
	// references.
	ErrHasAssociations = errors.New("file has explicit associations")
	// ErrUnknownFile is returned for URIs the workspace does not hold.
	ErrUnknownFile = errors.New("unknown file")
	// ErrExcludedScheme is returned for URIs whose scheme is excluded.
	ErrExcludedScheme = errors.New("excluded uri scheme")
)

// Options configures a Workspace. The zero value is usable.
type Options struct {
	// Delay between the last edit and the batch re-parse. Zero means
	// DefaultDelay.
	Delay time.Duration
	// Positions builds the position resolver of each parsed text.
	Positions func(text string) ports.PositionResolver
	Logger    *slog.Logger
	// Store persists explicit associations. Optional.
	Store ports.AssociationStore
	// Preprocessor runs ";;!pre-parsing:" commands. Optional; without it
	// directives are ignored.
	Preprocessor ports.Preprocessor
	// ExcludedSchemes lists URI schemes that are never tracked, e.g. "git".
	ExcludedSchemes []string
}

// folder holds the files sharing one parent URI.
type folder struct {
	uri   string
	files map[string]model.FileInfo
}

// Workspace is safe for concurrent use. All state changes happen under one
// lock; events are delivered after it is released.
type Workspace struct {
	opts   Options
	log    *slog.Logger
	parser *extract.Parser

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	folders     map[string]*folder
	inserted    map[string]bool
	lastUpdated map[string]int
	assoc       map[ports.AssociationKind]map[string]string
	timer       *time.Timer
	timerGen    int
	closed      bool

	listeners    []subscription
	nextListener int
	pending      []Event
	dispatching  bool
}

// New creates a workspace and loads persisted associations from
// opts.Store.
func New(opts Options) (*Workspace, error) {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Workspace{
		opts:        opts,
		log:         log,
		parser:      &extract.Parser{Positions: opts.Positions},
		ctx:         ctx,
		cancel:      cancel,
		folders:     make(map[string]*folder),
		inserted:    make(map[string]bool),
		lastUpdated: make(map[string]int),
		assoc: map[ports.AssociationKind]map[string]string{
			ports.ProblemToDomain: {},
			ports.PlanToProblem:   {},
		},
	}
	if opts.Store != nil {
		for kind := range w.assoc {
			m, err := opts.Store.LoadAssociations(kind)
			if err != nil {
				cancel()
				return nil, fmt.Errorf("load %s associations: %w", kind, err)
			}
			for from, to := range m {
				w.assoc[kind][from] = to
			}
		}
	}
	return w, nil
}

// Close stops the debounce timer and cancels running pre-parsing commands.
// Pending dirty files stay dirty.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.cancel()
	return nil
}

func folderOf(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[:i]
	}
	return ""
}

func (w *Workspace) excluded(uri string) bool {
	scheme, _, ok := strings.Cut(uri, ":")
	if !ok {
		return false
	}
	for _, s := range w.opts.ExcludedSchemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

func (w *Workspace) fileLocked(uri string) model.FileInfo {
	if f, ok := w.folders[folderOf(uri)]; ok {
		return f.files[uri]
	}
	return nil
}

func (w *Workspace) storeLocked(info model.FileInfo) {
	uri := info.Base().URI
	key := folderOf(uri)
	f, ok := w.folders[key]
	if !ok {
		f = &folder{uri: key, files: make(map[string]model.FileInfo)}
		w.folders[key] = f
	}
	f.files[uri] = info
}

// Upsert adds or updates a document. See UpsertFile.
func (w *Workspace) Upsert(ctx context.Context, uri, language string, version int, text string) (model.FileInfo, error) {
	return w.UpsertFile(ctx, uri, language, version, text, false)
}

// UpsertFile adds a new document, parsing it immediately, or updates a known
// one. An update with a strictly greater version marks the file dirty and
// schedules a batch re-parse; force re-parses at once regardless of the
// version. Updates with an old version change nothing.
func (w *Workspace) UpsertFile(ctx context.Context, uri, language string, version int, text string, force bool) (model.FileInfo, error) {
	if w.excluded(uri) {
		return nil, fmt.Errorf("%s: %w", uri, ErrExcludedScheme)
	}
	defer w.flush()
	w.mu.Lock()
	defer w.mu.Unlock()

	existing := w.fileLocked(uri)
	if existing == nil {
		info := w.parseLocked(ctx, model.FileMeta{URI: uri, Language: language, Version: version}, text)
		w.storeLocked(info)
		w.emitParsedLocked(info)
		if w.invalidateDependentsLocked(info) > 0 {
			w.scheduleLocked()
		}
		return info, nil
	}

	if !existing.Base().Update(version, text, force) {
		return existing, nil
	}
	if force {
		info := w.reparseLocked(ctx, existing)
		if w.invalidateDependentsLocked(info) > 0 {
			w.scheduleLocked()
		}
		return info, nil
	}
	w.scheduleLocked()
	return existing, nil
}

// parseLocked runs the pre-parsing command, if any, and the parser.
func (w *Workspace) parseLocked(ctx context.Context, meta model.FileMeta, source string) model.FileInfo {
	text := source
	var ppErr error
	if w.opts.Preprocessor != nil && strings.EqualFold(meta.Language, model.LanguagePDDL) {
		if pp, err := extract.PreParsingDirective(source); err == nil && pp != nil {
			out, err := w.opts.Preprocessor.Transform(ctx, pp.Command, pp.Args, source)
			if err != nil {
				ppErr = err
				w.log.Warn("pre-parsing failed", "uri", meta.URI, "command", pp.Command, "error", err)
			} else {
				text = out
			}
		}
	}
	info := w.parser.ParseTransformed(meta, source, text)
	if ppErr != nil {
		info.Base().AddProblem(0, model.SeverityWarning, "pre-parsing failed: %v", ppErr)
	}
	return info
}

// reparseLocked replaces old with a fresh parse of its current text. The
// kind may change, e.g. a domain edited into a problem.
func (w *Workspace) reparseLocked(ctx context.Context, old model.FileInfo) model.FileInfo {
	b := old.Base()
	info := w.parseLocked(ctx, model.FileMeta{URI: b.URI, Language: b.Language, Version: b.Version()}, b.Text())
	w.storeLocked(info)
	w.emitParsedLocked(info)
	return info
}

// ScheduleParsing (re)starts the debounce timer. A pending timer is
// cancelled first, so only the last call within Delay fires.
func (w *Workspace) ScheduleParsing() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduleLocked()
}

func (w *Workspace) scheduleLocked() {
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timerGen++
	gen := w.timerGen
	w.timer = time.AfterFunc(w.opts.Delay, func() { w.onTimer(gen) })
}

func (w *Workspace) onTimer(gen int) {
	w.mu.Lock()
	if w.closed || gen != w.timerGen {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.parseAllDirtyLocked(w.ctx)
	w.mu.Unlock()
	w.flush()
}

// ParseAllDirty re-parses every dirty file now: domains, then problems,
// then everything else. Files invalidated by a domain or problem re-parse
// are picked up in the same batch.
func (w *Workspace) ParseAllDirty(ctx context.Context) {
	defer w.flush()
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
		w.timerGen++
	}
	w.parseAllDirtyLocked(ctx)
}

func (w *Workspace) parseAllDirtyLocked(ctx context.Context) {
	start := time.Now()
	parsed := 0
	// a file is re-marked at most once per domain or problem parse
	limit := 3*w.countLocked() + 1
	for ; parsed < limit; parsed++ {
		if ctx.Err() != nil {
			break
		}
		f := w.nextDirtyLocked()
		if f == nil {
			break
		}
		info := w.reparseLocked(ctx, f)
		w.invalidateDependentsLocked(info)
	}
	if parsed > 0 {
		w.log.Debug("batch parse", "files", parsed, "elapsed", time.Since(start))
	}
}

// phase orders a batch: domains, problems, the rest.
func phase(f model.FileInfo) int {
	switch f.Kind() {
	case model.KindDomain:
		return 0
	case model.KindProblem:
		return 1
	default:
		return 2
	}
}

// nextDirtyLocked returns the dirty file of the lowest phase, ties broken
// by URI.
func (w *Workspace) nextDirtyLocked() model.FileInfo {
	var next model.FileInfo
	for _, fo := range w.folders {
		for _, f := range fo.files {
			if !f.Base().IsDirty() {
				continue
			}
			if next == nil || phase(f) < phase(next) ||
				(phase(f) == phase(next) && f.Base().URI < next.Base().URI) {
				next = f
			}
		}
	}
	return next
}

func (w *Workspace) countLocked() int {
	n := 0
	for _, fo := range w.folders {
		n += len(fo.files)
	}
	return n
}

// Reparse re-parses one file now. Its dependents are marked dirty and wait
// for the next batch.
func (w *Workspace) Reparse(ctx context.Context, uri string) (model.FileInfo, error) {
	defer w.flush()
	w.mu.Lock()
	defer w.mu.Unlock()
	f := w.fileLocked(uri)
	if f == nil {
		return nil, fmt.Errorf("reparse %s: %w", uri, ErrUnknownFile)
	}
	info := w.reparseLocked(ctx, f)
	if w.invalidateDependentsLocked(info) > 0 {
		w.scheduleLocked()
	}
	return info, nil
}

// invalidateDependentsLocked marks dirty the problems of a domain, or the
// plans and happenings of a problem. It returns how many were marked.
func (w *Workspace) invalidateDependentsLocked(info model.FileInfo) int {
	var deps []model.FileInfo
	switch v := info.(type) {
	case *model.DomainInfo:
		for _, p := range w.problemFilesForLocked(v) {
			deps = append(deps, p)
		}
	case *model.ProblemInfo:
		deps = w.planFilesForLocked(v)
	}
	n := 0
	for _, d := range deps {
		if !d.Base().IsDirty() {
			d.Base().Invalidate()
			n++
		}
	}
	return n
}

// RemoveOptions controls RemoveFile.
type RemoveOptions struct {
	// RemoveAllReferences drops explicit associations naming the file
	// instead of refusing the removal.
	RemoveAllReferences bool
}

// RemoveFile removes uri. Listeners get Removing while the file is still
// held. A file named by an explicit association is only removed with
// RemoveAllReferences, otherwise ErrHasAssociations is returned.
func (w *Workspace) RemoveFile(uri string, opts RemoveOptions) error {
	w.mu.Lock()
	f := w.fileLocked(uri)
	if f == nil {
		w.mu.Unlock()
		return fmt.Errorf("remove %s: %w", uri, ErrUnknownFile)
	}
	if w.hasAssociationsLocked(uri) && !opts.RemoveAllReferences {
		w.mu.Unlock()
		return fmt.Errorf("remove %s: %w", uri, ErrHasAssociations)
	}
	w.emitLocked(Removing, f)
	w.mu.Unlock()
	w.flush()

	w.mu.Lock()
	defer w.mu.Unlock()
	key := folderOf(uri)
	if fo, ok := w.folders[key]; ok {
		delete(fo.files, uri)
		if len(fo.files) == 0 {
			delete(w.folders, key)
		}
	}
	delete(w.inserted, uri)
	delete(w.lastUpdated, uri)
	w.dropAssociationsLocked(uri)
	return nil
}

// GetFileInfo returns the current model of uri.
func (w *Workspace) GetFileInfo(uri string) (model.FileInfo, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f := w.fileLocked(uri)
	return f, f != nil
}

// Files returns every file, sorted by URI.
func (w *Workspace) Files() []model.FileInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []model.FileInfo
	for _, fo := range w.folders {
		for _, f := range fo.files {
			out = append(out, f)
		}
	}
	sortByURI(out)
	return out
}

// Folders returns the folder URIs holding at least one file, sorted.
func (w *Workspace) Folders() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.folders))
	for k := range w.folders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DomainFiles returns every parsed domain, sorted by URI.
func (w *Workspace) DomainFiles() []*model.DomainInfo {
	return filesOf[*model.DomainInfo](w.Files())
}

// ProblemFiles returns every parsed problem, sorted by URI.
func (w *Workspace) ProblemFiles() []*model.ProblemInfo {
	return filesOf[*model.ProblemInfo](w.Files())
}

func filesOf[T model.FileInfo](files []model.FileInfo) []T {
	var out []T
	for _, f := range files {
		if v, ok := f.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func sortByURI[T model.FileInfo](files []T) {
	sort.Slice(files, func(i, j int) bool { return files[i].Base().URI < files[j].Base().URI })
}

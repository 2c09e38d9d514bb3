// Package app wires together all adapters and domain logic.
// It provides lifecycle management for a watched PDDL workspace: create,
// start, stop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corey/pddl/internal/adapters/bbolt"
	"github.com/corey/pddl/internal/adapters/command"
	fsw "github.com/corey/pddl/internal/adapters/fsnotify"
	"github.com/corey/pddl/internal/adapters/metrics"
	"github.com/corey/pddl/internal/config"
	"github.com/corey/pddl/internal/domain/model"
	"github.com/corey/pddl/internal/domain/workspace"
	"github.com/corey/pddl/internal/ports"
)

// maxFileSize skips files the scan or watcher would otherwise read whole.
const maxFileSize = 8 << 20

// App is the top-level container wiring all components together.
type App struct {
	Root      string
	Config    *config.Config
	Paths     *Paths
	Store     *bbolt.Store // nil when store.path is empty
	Filter    *fsw.Filter
	Watcher   *fsw.Watcher
	Workspace *workspace.Workspace
	Metrics   *metrics.Collector // nil when metrics.addr is empty

	log           *slog.Logger
	mu            sync.Mutex     // guards versions
	versions      map[string]int // next caller version per URI
	unsubscribe   []func()
	metricsServer *http.Server
	metricsAddr   string
	started       time.Time
}

// New creates an App with all dependencies wired. Does not start watching.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	root := cfg.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("project root: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("project root: %w", err)
	}
	cfg.Root = root

	filter, err := fsw.NewFilter(cfg.Watch.Include, cfg.Watch.IgnoreDirs)
	if err != nil {
		return nil, fmt.Errorf("watch filter: %w", err)
	}

	paths := NewPaths(cfg)
	opts := workspace.Options{
		Delay:           cfg.Workspace.ParseDelay,
		Logger:          log,
		ExcludedSchemes: cfg.Workspace.ExcludedSchemes,
	}

	var store *bbolt.Store
	if paths.DB != "" {
		if err := paths.EnsureDirs(); err != nil {
			return nil, fmt.Errorf("create %s: %w", paths.Dir, err)
		}
		store, err = bbolt.NewStore(paths.DB)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		opts.Store = store.Associations(root)
	}
	if cfg.Preprocess.Enabled {
		opts.Preprocessor = command.New(root, cfg.Preprocess.Timeout)
	}

	ws, err := workspace.New(opts)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	a := &App{
		Root:      root,
		Config:    cfg,
		Paths:     paths,
		Store:     store,
		Filter:    filter,
		Workspace: ws,
		log:       log,
		versions:  make(map[string]int),
	}
	a.unsubscribe = append(a.unsubscribe, ws.Subscribe(a.onEvent))
	if cfg.Metrics.Addr != "" {
		a.Metrics = metrics.New()
		a.unsubscribe = append(a.unsubscribe, ws.Subscribe(a.Metrics.OnEvent))
	}
	return a, nil
}

// Load scans the root, applies the configured association overrides and
// parses everything. It returns the number of files loaded.
func (a *App) Load(ctx context.Context) (int, error) {
	paths, err := a.Filter.Scan(a.Root)
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", a.Root, err)
	}
	n := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if a.loadFile(ctx, path) {
			n++
		}
	}
	a.ApplyAssociations()
	a.Workspace.ParseAllDirty(ctx)
	a.log.Info("Loaded workspace", slog.String("root", a.Root), slog.Int("files", n))
	return n, nil
}

// Start loads the workspace, serves metrics when configured and begins
// watching the root.
func (a *App) Start(ctx context.Context) error {
	a.started = time.Now()
	if _, err := a.Load(ctx); err != nil {
		return err
	}
	if a.Metrics != nil {
		if err := a.serveMetrics(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}
	watcher, err := fsw.NewWatcher(a.Filter, a.log)
	if err != nil {
		a.log.Warn("File watcher unavailable", slog.String("error", err.Error()))
		return nil
	}
	if err := watcher.Watch(a.Root, a.onFileChanged); err != nil {
		watcher.Stop()
		a.log.Warn("File watcher unavailable", slog.String("error", err.Error()))
		return nil
	}
	a.Watcher = watcher
	return nil
}

// Stop shuts down the watcher, the workspace and the store.
func (a *App) Stop() error {
	var errs []error
	if a.Watcher != nil {
		errs = append(errs, a.Watcher.Stop())
	}
	errs = append(errs, a.stopMetrics())
	for _, unsubscribe := range a.unsubscribe {
		unsubscribe()
	}
	errs = append(errs, a.Workspace.Close())
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if !a.started.IsZero() {
		a.log.Debug("Stopped", slog.Duration("uptime", time.Since(a.started)))
	}
	return errors.Join(errs...)
}

// ApplyAssociations applies associations.problems and associations.plans
// from the config. Entries naming files that were not loaded are skipped
// with a warning.
func (a *App) ApplyAssociations() {
	apply := func(kind ports.AssociationKind, m map[string]string, fn func(from, to string) error) {
		for from, to := range m {
			fromURI, toURI := a.URIFor(from), a.URIFor(to)
			if err := fn(fromURI, toURI); err != nil {
				a.log.Warn("Skipping configured association",
					slog.String("kind", string(kind)),
					slog.String("from", from),
					slog.String("to", to),
					slog.String("error", err.Error()))
			}
		}
	}
	apply(ports.ProblemToDomain, a.Config.Associations.Problems, a.Workspace.AssociateProblemToDomain)
	apply(ports.PlanToProblem, a.Config.Associations.Plans, a.Workspace.AssociatePlanToProblem)
}

// File returns the model of a path relative to the root, or absolute.
func (a *App) File(path string) (model.FileInfo, bool) {
	return a.Workspace.GetFileInfo(a.URIFor(path))
}

// loadFile reads path and upserts it with the next version. It reports
// whether the file is now tracked.
func (a *App) loadFile(ctx context.Context, path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() > maxFileSize {
		return false
	}
	text, err := os.ReadFile(path)
	if err != nil {
		a.log.Debug("Read failed", slog.String("path", path), slog.String("error", err.Error()))
		return false
	}
	uri := a.URIFor(path)
	if _, err := a.Workspace.Upsert(ctx, uri, LanguageFor(path), a.nextVersion(uri), string(text)); err != nil {
		a.log.Debug("Upsert failed", slog.String("uri", uri), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (a *App) nextVersion(uri string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.versions[uri]++
	return a.versions[uri]
}

func (a *App) forget(uri string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.versions, uri)
}

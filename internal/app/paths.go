package app

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/pddl/internal/config"
	"github.com/corey/pddl/internal/domain/model"
)

// Paths holds the resolved filesystem paths of the project state directory.
type Paths struct {
	Dir string // .pddl/ (parent of DB)
	DB  string // .pddl/workspace.db, "" when persistence is disabled
}

// NewPaths resolves paths from a loaded config.
func NewPaths(cfg *config.Config) *Paths {
	db := cfg.StorePath()
	dir := filepath.Join(cfg.Root, ".pddl")
	if db != "" {
		dir = filepath.Dir(db)
	}
	return &Paths{Dir: dir, DB: db}
}

// EnsureDirs creates the state directory. Idempotent.
func (p *Paths) EnsureDirs() error {
	return os.MkdirAll(p.Dir, 0755)
}

// URIFor returns the file:// URI of a path. Relative paths resolve against
// the root.
func (a *App) URIFor(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.Root, path)
	}
	return FileURI(path)
}

// FileURI returns the file:// URI of an absolute path.
func FileURI(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Clean(path))}
	return u.String()
}

// PathFor returns the filesystem path of a file:// URI, or "" for other
// schemes.
func PathFor(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return filepath.FromSlash(u.Path)
}

// RelPath returns uri relative to the root when possible.
func (a *App) RelPath(uri string) string {
	path := PathFor(uri)
	if path == "" {
		return uri
	}
	if rel, err := filepath.Rel(a.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// LanguageFor maps a file extension to a language tag.
func LanguageFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".plan":
		return model.LanguagePlan
	case ".happenings":
		return model.LanguageHappenings
	default:
		return model.LanguagePDDL
	}
}

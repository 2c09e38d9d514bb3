package fsnotify

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude matches the file kinds the workspace understands.
var DefaultInclude = []string{"**/*.pddl", "**/*.plan", "**/*.happenings"}

// DefaultIgnoreDirs are directory names never descended into.
var DefaultIgnoreDirs = []string{".git", "node_modules", ".venv", "vendor", ".idea", ".vscode", ".pddl"}

// Filter decides which paths below a root are of interest. Patterns use
// doublestar syntax and are matched against slash-separated paths relative
// to the root.
type Filter struct {
	include    []string
	ignoreDirs map[string]bool
}

// NewFilter returns a filter. Empty lists fall back to the defaults.
func NewFilter(include, ignoreDirs []string) (*Filter, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	if len(ignoreDirs) == 0 {
		ignoreDirs = DefaultIgnoreDirs
	}
	for _, p := range include {
		if !doublestar.ValidatePattern(p) {
			return nil, &InvalidPatternError{Pattern: p}
		}
	}
	f := &Filter{include: include, ignoreDirs: make(map[string]bool, len(ignoreDirs))}
	for _, d := range ignoreDirs {
		f.ignoreDirs[d] = true
	}
	return f, nil
}

// InvalidPatternError reports an include glob doublestar cannot parse.
type InvalidPatternError struct {
	Pattern string
}

func (e *InvalidPatternError) Error() string {
	return "invalid include pattern " + e.Pattern
}

// IgnoreDir reports whether a directory name is skipped.
func (f *Filter) IgnoreDir(name string) bool { return f.ignoreDirs[name] }

// Match reports whether rel, relative to the root, is included and not
// below an ignored directory.
func (f *Filter) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if f.ignoreDirs[dir] {
			return false
		}
	}
	for _, p := range f.include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Scan returns the absolute paths of every included file below root, sorted.
func (f *Filter) Scan(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	fsys := os.DirFS(abs)
	for _, p := range f.include {
		err := doublestar.GlobWalk(fsys, p, func(rel string, d fs.DirEntry) error {
			if d.IsDir() || seen[rel] || !f.Match(rel) {
				return nil
			}
			seen[rel] = true
			out = append(out, filepath.Join(abs, filepath.FromSlash(rel)))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}

// Package model holds the semantic model extracted from PDDL files: the
// FileInfo variants (domain, problem, plan, happenings, unknown) and the
// values they carry.
package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/corey/pddl/internal/domain/syntax"
	"github.com/corey/pddl/internal/ports"
)

// Language tags accepted from callers.
const (
	LanguagePDDL       = "pddl"
	LanguagePlan       = "plan"
	LanguageHappenings = "happenings"
)

// ErrNoSectionType is returned when a caller asks for the semantic kind of
// a file whose kind could not be determined.
var ErrNoSectionType = errors.New("file kind could not be determined")

// Kind is the semantic classification of a file, decided once per parse.
type Kind int

const (
	KindUnknown Kind = iota
	KindDomain
	KindProblem
	KindPlan
	KindHappenings
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDomain:
		return "domain"
	case KindProblem:
		return "problem"
	case KindPlan:
		return "plan"
	case KindHappenings:
		return "happenings"
	default:
		return "unknown"
	}
}

// Status is the parse state of a file.
type Status int

const (
	Dirty Status = iota
	Parsed
)

// String returns the status name.
func (s Status) String() string {
	if s == Parsed {
		return "parsed"
	}
	return "dirty"
}

// Severity of a ParsingProblem.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "error"
	}
}

// ParsingProblem is a diagnostic attached to a file. Line and Column are
// zero-based.
type ParsingProblem struct {
	Message  string
	Line     int
	Column   int
	Severity Severity
}

// String formats the problem the way compilers do, one-based.
func (p ParsingProblem) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", p.Line+1, p.Column+1, p.Severity, p.Message)
}

// FileInfo is implemented by *DomainInfo, *ProblemInfo, *PlanInfo,
// *HappeningsInfo and *UnknownInfo. The set is closed.
type FileInfo interface {
	Base() *FileBase
	Kind() Kind
	isFileInfo()
}

// FileMeta identifies a document version handed in by a caller.
type FileMeta struct {
	URI      string
	Language string
	Version  int
}

// FileBase holds what every file kind shares. Identity is URI. Text,
// Version and Status change when the workspace marks the file dirty; a
// re-parse replaces the whole FileInfo.
type FileBase struct {
	URI      string
	Language string

	mu       sync.RWMutex
	version  int
	status   Status
	text     string
	tree     *syntax.Tree
	problems []ParsingProblem
	pos      ports.PositionResolver
}

// Load fills a fresh base with a parsed text and its tree.
func (b *FileBase) Load(meta FileMeta, text string, tree *syntax.Tree, pos ports.PositionResolver) {
	b.URI = meta.URI
	b.Language = meta.Language
	b.version = meta.Version
	b.status = Parsed
	b.text = text
	b.tree = tree
	b.pos = pos
}

// Base returns b itself so embedding types satisfy FileInfo.
func (b *FileBase) Base() *FileBase { return b }

// Version returns the caller-supplied edit counter.
func (b *FileBase) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Status returns Dirty or Parsed.
func (b *FileBase) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// Text returns the latest text, which is newer than Tree while Dirty.
func (b *FileBase) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// Tree returns the tree from the last parse.
func (b *FileBase) Tree() *syntax.Tree {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tree
}

// Positions returns the resolver for the parsed text.
func (b *FileBase) Positions() ports.PositionResolver {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pos
}

// Problems returns the diagnostics of the last parse.
func (b *FileBase) Problems() []ParsingProblem {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]ParsingProblem(nil), b.problems...)
}

// IsDirty reports whether the file waits for a re-parse.
func (b *FileBase) IsDirty() bool { return b.Status() == Dirty }

// Update stores newer text and marks the file dirty. It returns false and
// changes nothing unless version is strictly greater than the stored one.
func (b *FileBase) Update(version int, text string, force bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if version <= b.version && !force {
		return false
	}
	b.version = max(b.version, version)
	b.text = text
	b.status = Dirty
	return true
}

// Invalidate marks the file dirty, keeping its text.
func (b *FileBase) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = Dirty
}

// AddProblem records a diagnostic at offset.
func (b *FileBase) AddProblem(offset int, severity Severity, format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var p ports.Position
	if b.pos != nil {
		p = b.pos.PositionAt(offset)
	}
	b.problems = append(b.problems, ParsingProblem{
		Message:  fmt.Sprintf(format, args...),
		Line:     p.Line,
		Column:   p.Character,
		Severity: severity,
	})
}

// ParsedKind returns the kind of f, or ErrNoSectionType for unknown files.
func ParsedKind(f FileInfo) (Kind, error) {
	if f == nil || f.Kind() == KindUnknown {
		return KindUnknown, ErrNoSectionType
	}
	return f.Kind(), nil
}

// UnknownInfo is a file that is neither domain, problem, plan nor
// happenings. Its text is kept; it has no semantic fields.
type UnknownInfo struct {
	FileBase
}

// Kind implements FileInfo.
func (*UnknownInfo) Kind() Kind { return KindUnknown }
func (*UnknownInfo) isFileInfo() {}

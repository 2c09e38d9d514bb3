package syntax

import (
	"sort"

	"github.com/corey/pddl/internal/ports"
)

// LineIndex is the default ports.PositionResolver. It records the start
// offset of every line; "\n" ends a line and a preceding "\r" belongs to
// the line terminator.
type LineIndex struct {
	text   string
	starts []int
}

var _ ports.PositionResolver = (*LineIndex)(nil)

// NewLineIndex indexes text.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// PositionAt implements ports.PositionResolver.
func (l *LineIndex) PositionAt(offset int) ports.Position {
	offset = min(max(offset, 0), len(l.text))
	line := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	return ports.Position{Line: line, Character: offset - l.starts[line]}
}

// OffsetAt implements ports.PositionResolver.
func (l *LineIndex) OffsetAt(pos ports.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(l.starts) {
		return len(l.text)
	}
	start := l.starts[pos.Line]
	end := len(l.text)
	if pos.Line+1 < len(l.starts) {
		end = l.starts[pos.Line+1] - 1
		if end > start && l.text[end-1] == '\r' {
			end--
		}
	}
	return start + min(max(pos.Character, 0), end-start)
}

// LineCount returns the number of lines.
func (l *LineIndex) LineCount() int { return len(l.starts) }

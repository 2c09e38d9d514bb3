package ports

// Position is a zero-based line/character location in a document.
type Position struct {
	Line      int
	Character int
}

// PositionResolver translates byte offsets of a document to positions and
// back. It depends on the line-ending convention of the text, so callers
// supply it; syntax.LineIndex is the default implementation.
type PositionResolver interface {
	// PositionAt returns the position of offset. Offsets past the end of the
	// text resolve to the end of the last line.
	PositionAt(offset int) Position

	// OffsetAt returns the byte offset of pos, clamped to the text.
	OffsetAt(pos Position) int
}

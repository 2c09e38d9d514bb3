package syntax

import (
	"testing"

	"github.com/corey/pddl/internal/ports"
	"github.com/stretchr/testify/assert"
)

func TestLineIndex_PositionAt(t *testing.T) {
	li := NewLineIndex("ab\r\ncd\nef")
	assert.Equal(t, 3, li.LineCount())
	assert.Equal(t, ports.Position{Line: 0, Character: 0}, li.PositionAt(0))
	assert.Equal(t, ports.Position{Line: 1, Character: 1}, li.PositionAt(5))
	assert.Equal(t, ports.Position{Line: 2, Character: 0}, li.PositionAt(7))
	assert.Equal(t, ports.Position{Line: 2, Character: 2}, li.PositionAt(100))
}

func TestLineIndex_OffsetAt(t *testing.T) {
	li := NewLineIndex("ab\r\ncd\nef")
	assert.Equal(t, 5, li.OffsetAt(ports.Position{Line: 1, Character: 1}))
	// clamps to the line end, before "\r\n"
	assert.Equal(t, 2, li.OffsetAt(ports.Position{Line: 0, Character: 10}))
	assert.Equal(t, 9, li.OffsetAt(ports.Position{Line: 7}))
	assert.Equal(t, 0, li.OffsetAt(ports.Position{Line: -1}))
}

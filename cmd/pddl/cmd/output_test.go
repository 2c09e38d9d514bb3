package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/corey/pddl/internal/domain/extract"
	"github.com/corey/pddl/internal/domain/model"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brokenDomain = `(define (domain d)
  (:predicates (p)))
)
`

func TestFormatProblems(t *testing.T) {
	useColor = false
	info := extract.NewParser().ParseFile(model.FileMeta{URI: "file:///d.pddl", Language: "pddl", Version: 1}, brokenDomain)

	out := formatProblems("d.pddl", info)
	assert.Contains(t, out, "✗ d.pddl  domain  1 error\n")
	assert.Contains(t, out, "d.pddl:3:1: error: unexpected closing bracket")
}

func TestFormatProblemsClean(t *testing.T) {
	useColor = false
	info := extract.NewParser().ParseFile(model.FileMeta{URI: "file:///d.pddl", Language: "pddl", Version: 1}, "(define (domain d))")
	assert.Equal(t, "✓ d.pddl  domain\n", formatProblems("d.pddl", info))
}

func TestPaint(t *testing.T) {
	useColor = true
	assert.Equal(t, colorRed+"x"+colorReset, paint(colorRed, "x"))
	useColor = false
	assert.Equal(t, "x", paint(colorRed, "x"))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "1 error", plural(1, "error"))
	assert.Equal(t, "3 warnings", plural(3, "warning"))
	assert.Equal(t, "1.5", formatSeconds(1.5))
	assert.Equal(t, "2", formatSeconds(2))
	assert.Equal(t, "0.001", formatSeconds(0.001))

	objs := model.NewObjectTypes()
	objs.Set("b", "block")
	objs.Set("t", "table")
	objs.Set("a", "block")
	assert.Equal(t, []string{"block: b a", "table: t"}, objectLines(objs))

	assert.Empty(t, section("Empty", nil))
	useColor = false
	assert.Equal(t, "  Types (1)\n    x\n", section("Types", []string{"x"}))
}

func TestRunParse(t *testing.T) {
	useColor = false
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pddl")
	bad := filepath.Join(dir, "bad.pddl")
	require.NoError(t, os.WriteFile(good, []byte("(define (domain d))"), 0644))
	require.NoError(t, os.WriteFile(bad, []byte(brokenDomain), 0644))

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	require.NoError(t, runParse(cmd, []string{good}))
	assert.Contains(t, buf.String(), "✓")

	err := runParse(cmd, []string{good, bad})
	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 2, ee.code)
	assert.Equal(t, 2, ExitCode(err))
}

// Package command implements ports.Preprocessor by running the command named
// in a ";;!pre-parsing:" directive with the document text on stdin.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/corey/pddl/internal/ports"
)

// DefaultTimeout bounds one command run.
const DefaultTimeout = 10 * time.Second

// Preprocessor runs directive commands in Dir.
type Preprocessor struct {
	// Dir is the working directory of the command, usually the workspace
	// root.
	Dir     string
	Timeout time.Duration
}

var _ ports.Preprocessor = (*Preprocessor)(nil)

// New returns a preprocessor running commands in dir.
func New(dir string, timeout time.Duration) *Preprocessor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Preprocessor{Dir: dir, Timeout: timeout}
}

// Transform pipes input through command and returns its stdout. A non-zero
// exit, a timeout or ctx cancellation is an error carrying stderr.
func (p *Preprocessor) Transform(ctx context.Context, command string, args []string, input string) (string, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = p.Dir
	cmd.Stdin = strings.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children holding the pipes open must not outlive a kill by long
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", command, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%s exited with %d: %s", command, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%s: %w", command, err)
	}
	return stdout.String(), nil
}

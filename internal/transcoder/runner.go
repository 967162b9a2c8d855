package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner executes an external command and returns its standard output.
// A non-zero exit is reported as an error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec. Stderr is captured for error
// reporting and, when Tee is set, copied there as it is produced.
type ExecRunner struct {
	Tee io.Writer
}

// NewExecRunner creates a runner that mirrors tool stderr to tee
func NewExecRunner(tee io.Writer) *ExecRunner {
	return &ExecRunner{Tee: tee}
}

// Run executes name with args and blocks until it exits
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.Tee != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Tee)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s failed: %w, stderr: %s",
			filepath.Base(name), err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

package remote

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/seqlab/biolapse/internal/debug"
)

// Runner executes the push command. Seam for tests.
type Runner func(name string, args ...string) error

// ExecRunner runs the command for real.
func ExecRunner(name string, args ...string) error {
	debug.Exec(name, args)
	cmd := exec.Command(name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w (stderr: %s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Pusher hands captured files to an external sync tool by pushing the
// directory that contains them (the tool is expected to skip files it has
// already transferred). Dispatch is strictly best-effort: the image is
// already safe on local disk, so push failures are logged and swallowed.
type Pusher struct {
	command string
	args    []string
	run     Runner
}

// NewPusher creates a dispatcher around the configured push command.
// A nil runner uses ExecRunner.
func NewPusher(command string, args []string, run Runner) *Pusher {
	if run == nil {
		run = ExecRunner
	}
	return &Pusher{
		command: command,
		args:    args,
		run:     run,
	}
}

// Dispatch pushes the directory containing path.
func (p *Pusher) Dispatch(path string) {
	dir := filepath.Dir(path)
	args := append(append([]string{}, p.args...), dir)

	debug.Live("Dispatching %s to remote sync", path)
	if err := p.run(p.command, args...); err != nil {
		debug.Info("Remote sync failed (file kept locally): %v", err)
	}
}

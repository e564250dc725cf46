package sched

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/seqlab/biolapse/internal/debug"
)

// Runner executes an external command with the given stdin and returns
// its stdout. It exists so tests can script crontab(1).
type Runner func(name, stdin string, args ...string) (string, error)

// ExecRunner runs the command for real.
func ExecRunner(name, stdin string, args ...string) (string, error) {
	debug.Exec(name, args)
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w (stderr: %s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Crontab manages the recurring invocation of this program through the
// user crontab. Entries owned by this program are recognized by the
// executable path appearing in the command field; Schedule and Clear only
// ever touch owned entries.
type Crontab struct {
	executable string // absolute path of the binary to re-invoke
	workDir    string // directory the cron invocation must run in
	run        Runner
}

// NewCrontab creates a crontab-backed scheduler. A nil runner uses
// ExecRunner.
func NewCrontab(executable, workDir string, run Runner) *Crontab {
	if run == nil {
		run = ExecRunner
	}
	return &Crontab{
		executable: executable,
		workDir:    workDir,
		run:        run,
	}
}

// Line renders the crontab entry for the given interval, anchored to the
// minute-of-hour the time course started. An hourly course anchors on the
// bare minute; shorter intervals step from the anchor to the end of the
// hour (A-59/N).
func (c *Crontab) Line(intervalMinutes, anchorMinute int) string {
	var spec string
	if intervalMinutes >= 60 {
		spec = fmt.Sprintf("%d * * * *", anchorMinute)
	} else {
		spec = fmt.Sprintf("%d-59/%d * * * *", anchorMinute, intervalMinutes)
	}
	return fmt.Sprintf("%s cd %s && %s", spec, c.workDir, c.executable)
}

// owned reports whether a crontab line was written by this program.
func (c *Crontab) owned(line string) bool {
	return strings.Contains(line, c.executable)
}

// Schedule installs the recurring entry, replacing any prior entry for
// this program so repeated calls never accumulate duplicates.
func (c *Crontab) Schedule(intervalMinutes, anchorMinute int) error {
	lines, err := c.list()
	if err != nil {
		return err
	}

	kept := lines[:0]
	for _, l := range lines {
		if !c.owned(l) {
			kept = append(kept, l)
		}
	}

	entry := c.Line(intervalMinutes, anchorMinute)
	kept = append(kept, entry)
	debug.Cron("install", entry)

	return c.write(kept)
}

// Clear removes all entries for this program. Safe to call when none
// exist, including when the user has no crontab at all.
func (c *Crontab) Clear() error {
	lines, err := c.list()
	if err != nil {
		return err
	}

	kept := lines[:0]
	removed := 0
	for _, l := range lines {
		if c.owned(l) {
			removed++
			continue
		}
		kept = append(kept, l)
	}

	if removed == 0 {
		debug.Cron("clear", "no entries")
		return nil
	}
	debug.Cron("clear", fmt.Sprintf("%d entries removed", removed))

	return c.write(kept)
}

// list returns the current crontab lines. A missing crontab reads as empty.
func (c *Crontab) list() ([]string, error) {
	out, err := c.run("crontab", "", "-l")
	if err != nil {
		// "no crontab for <user>" is not an error, just an empty table.
		if strings.Contains(err.Error(), "no crontab") {
			return nil, nil
		}
		return nil, fmt.Errorf("read crontab: %w", err)
	}

	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

// write replaces the whole crontab with the given lines.
func (c *Crontab) write(lines []string) error {
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if _, err := c.run("crontab", content, "-"); err != nil {
		return fmt.Errorf("write crontab: %w", err)
	}
	return nil
}

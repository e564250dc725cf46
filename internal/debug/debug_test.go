package debug

import (
	"io"
	"os"
	"strings"
	"testing"
)

// captureOutput rebinds the logger to a pipe at the given level, runs fn
// and returns everything it printed.
func captureOutput(t *testing.T, level int, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	Init(level)

	fn()

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestSummary_PrintsAtInfo(t *testing.T) {
	out := captureOutput(t, LevelInfo, func() {
		Summary("Session plate42 initialized")
	})
	if !strings.Contains(out, "Session plate42 initialized") {
		t.Errorf("summary missing from output: %q", out)
	}
}

func TestSummary_SilentWhenOff(t *testing.T) {
	out := captureOutput(t, LevelInfo, func() {
		// Re-init at level 0: the stale logger must stay quiet.
		Init(LevelOff)
		Summary("should not appear")
	})
	if out != "" {
		t.Errorf("summary printed with debug off: %q", out)
	}
}

func TestStep_IsVerboseOnly(t *testing.T) {
	out := captureOutput(t, LevelLive, func() {
		Step(1, "Create session directory")
	})
	if out != "" {
		t.Errorf("step printed below verbose: %q", out)
	}

	out = captureOutput(t, LevelVerbose, func() {
		Step(1, "Create session directory")
	})
	if !strings.Contains(out, "Step 1") {
		t.Errorf("step missing at verbose: %q", out)
	}
}

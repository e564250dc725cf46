package cli

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/seqlab/biolapse/internal/config"
	"github.com/seqlab/biolapse/internal/store"
)

// chdir switches the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// testConfig runs the rig entirely on mock hardware.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Defaults.MockGPIO = true
	cfg.Camera.Type = "mock"
	cfg.Sync.Disabled = true
	return cfg
}

func TestOpenRig_UninitializedCaptureWritesNothing(t *testing.T) {
	chdir(t, t.TempDir())

	r, err := openRig(testConfig())
	if err != nil {
		t.Fatalf("openRig: %v", err)
	}
	defer r.Close()

	if _, err := r.machine.Capture(context.Background()); !errors.Is(err, store.ErrNotInitialized) {
		t.Fatalf("Capture err = %v, want ErrNotInitialized", err)
	}

	// A capture that never happened must leave the directory untouched:
	// no state file, no journal database, no images.
	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		t.Errorf("unexpected file created: %s", e.Name())
	}
}

func TestOpenRig_CorruptJournalDoesNotBlockCaptures(t *testing.T) {
	chdir(t, t.TempDir())
	if err := os.WriteFile("captures.db", []byte("not a database"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := openRig(testConfig())
	if err != nil {
		t.Fatalf("openRig: %v", err)
	}
	defer r.Close()

	if err := r.machine.Initialize(context.Background(), "plate7"); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	path, err := r.machine.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("captured image missing: %v", err)
	}
}

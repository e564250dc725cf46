package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/seqlab/biolapse/internal/hw/camera"
)

func testState() State {
	return State{
		Profile: camera.Profile{
			ISO:            100,
			ShutterSpeedUs: 1000000,
			GainRed:        1.5,
			GainBlue:       1.5,
		},
		Session: Session{
			Name:      "plate42",
			OutputDir: "/data/plate42",
			StartedAt: time.Date(2026, 8, 23, 14, 37, 5, 0, time.UTC),
		},
	}
}

func TestLoad_NotInitialized(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "biolapse-state.yaml"))

	_, err := s.Load()
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biolapse-state.yaml")
	want := testState()

	if err := New(path).Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A fresh Store stands in for a fresh process: no in-memory continuity.
	got, err := New(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Profile != want.Profile {
		t.Errorf("profile = %+v, want %+v", got.Profile, want.Profile)
	}
	if got.Session.Name != want.Session.Name || got.Session.OutputDir != want.Session.OutputDir {
		t.Errorf("session = %+v, want %+v", got.Session, want.Session)
	}
	if !got.Session.StartedAt.Equal(want.Session.StartedAt) {
		t.Errorf("started_at = %v, want %v", got.Session.StartedAt, want.Session.StartedAt)
	}
}

func TestSave_OverwritesPreviousState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biolapse-state.yaml")
	s := New(path)

	first := testState()
	if err := s.Save(first); err != nil {
		t.Fatal(err)
	}

	second := first
	second.Profile.GainRed = 1.8
	second.Session.Name = "plate43"
	if err := s.Save(second); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Profile.GainRed != 1.8 || got.Session.Name != "plate43" {
		t.Errorf("Load returned stale state: %+v", got)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "biolapse-state.yaml"))

	if err := s.Save(testState()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("dir entries = %d, want just the state file", len(entries))
	}
}

func TestExists(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "biolapse-state.yaml"))
	if s.Exists() {
		t.Error("Exists before Save")
	}
	if err := s.Save(testState()); err != nil {
		t.Fatal(err)
	}
	if !s.Exists() {
		t.Error("!Exists after Save")
	}
}

func TestLoad_RejectsStateWithoutOutputDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biolapse-state.yaml")
	if err := os.WriteFile(path, []byte("profile:\n  iso: 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path).Load(); err == nil {
		t.Fatal("Load accepted state with no output directory")
	}
}

func TestSaveLoad_RoundTripProperty(t *testing.T) {
	dir := t.TempDir()

	rapid.Check(t, func(t *rapid.T) {
		want := State{
			Profile: camera.Profile{
				ISO:            rapid.IntRange(25, 6400).Draw(t, "iso"),
				ShutterSpeedUs: rapid.IntRange(1, 10000000).Draw(t, "shutter"),
				GainRed:        rapid.Float64Range(0.1, 8).Draw(t, "gain_red"),
				GainBlue:       rapid.Float64Range(0.1, 8).Draw(t, "gain_blue"),
			},
			Session: Session{
				Name:      rapid.StringMatching(`[a-zA-Z0-9_-]{1,32}`).Draw(t, "name"),
				OutputDir: "/data/" + rapid.StringMatching(`[a-zA-Z0-9_-]{1,32}`).Draw(t, "dir"),
				StartedAt: time.Unix(rapid.Int64Range(0, 4102444800).Draw(t, "started"), 0).UTC(),
			},
		}

		path := filepath.Join(dir, "state.yaml")
		if err := New(path).Save(want); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := New(path).Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		if got.Profile != want.Profile {
			t.Fatalf("profile round-trip: got %+v, want %+v", got.Profile, want.Profile)
		}
		if got.Session.Name != want.Session.Name || got.Session.OutputDir != want.Session.OutputDir {
			t.Fatalf("session round-trip: got %+v, want %+v", got.Session, want.Session)
		}
		if !got.Session.StartedAt.Equal(want.Session.StartedAt) {
			t.Fatalf("started_at round-trip: got %v, want %v", got.Session.StartedAt, want.Session.StartedAt)
		}
	})
}

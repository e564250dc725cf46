package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seqlab/biolapse/internal/debug"
	"github.com/seqlab/biolapse/internal/hw/camera"
)

// ErrNotInitialized is returned by Load when no session state has ever
// been saved in this working directory.
var ErrNotInitialized = errors.New("no session state found (run Initialize first)")

// Session identifies one Initialize-to-End lifespan.
type Session struct {
	Name      string    `yaml:"name"`       // directory name given to Initialize
	OutputDir string    `yaml:"output_dir"` // absolute path images are written to
	StartedAt time.Time `yaml:"started_at"`
}

// State is everything that must survive between process invocations:
// the frozen calibration profile and the session it belongs to.
type State struct {
	Profile camera.Profile `yaml:"profile"`
	Session Session        `yaml:"session"`
}

// Store persists State to a single YAML file. Saves go through a temp
// file in the same directory followed by a rename, so an interrupted
// write can never leave a half-written state behind.
type Store struct {
	path string
}

// New returns a Store backed by the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a prior Save has occurred.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save persists the state atomically.
func (s *Store) Save(st State) error {
	data, err := yaml.Marshal(&st)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}

	debug.Verbose("Session state saved to %s", s.path)
	return nil
}

// Load returns the most recently saved state. It fails with
// ErrNotInitialized when no Save has ever happened.
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, ErrNotInitialized
		}
		return State{}, fmt.Errorf("read state file: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("unmarshal state file: %w", err)
	}
	if st.Session.OutputDir == "" {
		return State{}, fmt.Errorf("state file %s has no output directory", s.path)
	}

	return st, nil
}

package course

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seqlab/biolapse/internal/debug"
	"github.com/seqlab/biolapse/internal/hw/camera"
	"github.com/seqlab/biolapse/internal/store"
)

// Error taxonomy for the session transitions. Underlying causes are
// attached with %w so callers can unwrap both the class and the cause.
var (
	ErrDirectoryCreate = errors.New("could not create session directory")
	ErrDevice          = errors.New("camera device failure")
	ErrScheduler       = errors.New("scheduler update failed")
)

// SentinelName is the fixed filename of the very first image of a session,
// distinct from the timestamp naming scheme of every later capture.
const SentinelName = "Initial.png"

// timestampLayout names recurring captures by wall clock at second resolution.
const timestampLayout = "2006_01_02_150405"

// Light switches the illumination panel.
type Light interface {
	Set(on bool) error
}

// Scheduler manages the recurring external invocation of this program.
// Schedule replaces any prior entry; Clear removes all entries and is safe
// to call when none exist.
type Scheduler interface {
	Schedule(intervalMinutes, anchorMinute int) error
	Clear() error
}

// Syncer hands a completed file to the remote transfer mechanism.
// Dispatch is fire-and-forget: implementations log failures and never
// report them back, because the image is already safe on local disk.
type Syncer interface {
	Dispatch(path string)
}

// Capture is one journal record of a captured image.
type Capture struct {
	Session   string
	Filename  string
	Path      string
	Kind      string // KindInitial or KindTimecourse
	TakenAt   time.Time
	SizeBytes int64
}

// Capture kinds.
const (
	KindInitial    = "initial"
	KindTimecourse = "timecourse"
)

// Recorder appends a capture to the journal. Recording is best-effort:
// the machine logs failures and carries on.
type Recorder interface {
	Record(rec Capture) error
}

// Deps are the collaborators a Machine drives. Journal and Syncer may be
// nil; Now defaults to time.Now.
type Deps struct {
	Store     *store.Store
	Light     Light
	Camera    camera.Camera
	Scheduler Scheduler
	Syncer    Syncer
	Journal   Recorder
	Now       func() time.Time
	WorkDir   string
}

// Machine is the session state machine. It holds no cross-invocation
// state: a fresh Machine is built on every process run, and the session's
// real state lives in the store file and the crontab.
type Machine struct {
	store   *store.Store
	light   Light
	camera  camera.Camera
	sched   Scheduler
	syncer  Syncer
	journal Recorder
	now     func() time.Time
	workDir string
}

// NewMachine builds a Machine from its collaborators.
func NewMachine(d Deps) *Machine {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Machine{
		store:   d.Store,
		light:   d.Light,
		camera:  d.Camera,
		sched:   d.Scheduler,
		syncer:  d.Syncer,
		journal: d.Journal,
		now:     now,
		workDir: d.WorkDir,
	}
}

// Initialize creates the session directory, converges and freezes the
// calibration, captures the sentinel image under illumination, persists
// the session state and dispatches the sentinel to the remote sync.
// Re-running with an existing directory is allowed; it starts the session
// over with a fresh calibration.
func (m *Machine) Initialize(ctx context.Context, name string) error {
	debug.Section("Initialize")

	debug.Step(1, "Create session directory")
	outDir := filepath.Join(m.workDir, name)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrDirectoryCreate, outDir, err)
	}
	debug.Value("Session directory", outDir)

	startedAt := m.now()

	debug.Step(2, "Calibrate and capture the sentinel image")
	var (
		profile camera.Profile
		img     []byte
	)
	err := m.withLight(func() error {
		p, err := m.camera.Calibrate(ctx)
		if err != nil {
			return fmt.Errorf("%w: calibrate: %w", ErrDevice, err)
		}
		profile = p

		img, err = m.camera.Capture(ctx, profile)
		if err != nil {
			return fmt.Errorf("%w: sentinel capture: %w", ErrDevice, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	path := filepath.Join(outDir, SentinelName)
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("write sentinel image: %w", err)
	}
	debug.Shot(SentinelName)

	debug.Step(3, "Persist session state")
	st := store.State{
		Profile: profile,
		Session: store.Session{
			Name:      name,
			OutputDir: outDir,
			StartedAt: startedAt,
		},
	}
	if err := m.store.Save(st); err != nil {
		return err
	}

	m.record(Capture{
		Session:   name,
		Filename:  SentinelName,
		Path:      path,
		Kind:      KindInitial,
		TakenAt:   startedAt,
		SizeBytes: int64(len(img)),
	})
	m.dispatch(path)
	debug.Summary("Session " + name + " initialized")
	return nil
}

// StartTimeCourse registers the recurring invocation anchored to the
// current minute-of-hour, then performs one capture. Requires a prior
// Initialize.
func (m *Machine) StartTimeCourse(ctx context.Context, intervalMinutes int) (string, error) {
	debug.Section("StartTimeCourse")

	if intervalMinutes < 1 || intervalMinutes > 60 {
		return "", fmt.Errorf("interval must be between 1 and 60 minutes, got %d", intervalMinutes)
	}

	// Refuse to touch the crontab before the session exists.
	if _, err := m.store.Load(); err != nil {
		return "", err
	}

	anchor := m.now().Minute()
	if err := m.sched.Schedule(intervalMinutes, anchor); err != nil {
		return "", fmt.Errorf("%w: %w", ErrScheduler, err)
	}
	debug.Info("Time course scheduled: every %d min, anchored at minute %d", intervalMinutes, anchor)

	return m.Capture(ctx)
}

// Capture takes one photo with the frozen profile, names it by the current
// wall clock at second resolution and moves it into the session directory.
// It never alters the schedule and never overwrites an existing file.
func (m *Machine) Capture(ctx context.Context) (string, error) {
	st, err := m.store.Load()
	if err != nil {
		return "", err
	}

	takenAt := m.now()

	var img []byte
	err = m.withLight(func() error {
		b, cerr := m.camera.Capture(ctx, st.Profile)
		if cerr != nil {
			return fmt.Errorf("%w: capture: %w", ErrDevice, cerr)
		}
		img = b
		return nil
	})
	if err != nil {
		return "", err
	}

	path, filename, err := writeUnique(st.Session.OutputDir, takenAt.Format(timestampLayout), img)
	if err != nil {
		return "", err
	}
	debug.Shot(filename)

	m.record(Capture{
		Session:   st.Session.Name,
		Filename:  filename,
		Path:      path,
		Kind:      KindTimecourse,
		TakenAt:   takenAt,
		SizeBytes: int64(len(img)),
	})
	m.dispatch(path)
	return path, nil
}

// End removes every recurring entry for this program. Calibration and
// session state stay untouched, so a later plain Capture still works.
func (m *Machine) End(ctx context.Context) error {
	debug.Section("End")
	if err := m.sched.Clear(); err != nil {
		return fmt.Errorf("%w: %w", ErrScheduler, err)
	}
	return nil
}

// withLight runs fn with the panel lit and guarantees the panel is dark
// again on every exit path, including fn failures.
func (m *Machine) withLight(fn func() error) (err error) {
	if lerr := m.light.Set(true); lerr != nil {
		return fmt.Errorf("illumination on: %w", lerr)
	}
	defer func() {
		if lerr := m.light.Set(false); lerr != nil && err == nil {
			err = fmt.Errorf("illumination off: %w", lerr)
		}
	}()
	return fn()
}

func (m *Machine) record(rec Capture) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Record(rec); err != nil {
		debug.Error(fmt.Errorf("journal record: %w", err))
	}
}

func (m *Machine) dispatch(path string) {
	if m.syncer == nil {
		return
	}
	m.syncer.Dispatch(path)
}

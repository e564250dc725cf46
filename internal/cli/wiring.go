package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/seqlab/biolapse/internal/config"
	"github.com/seqlab/biolapse/internal/debug"
	"github.com/seqlab/biolapse/internal/hw/camera"
	"github.com/seqlab/biolapse/internal/hw/gpio"
	"github.com/seqlab/biolapse/internal/hw/light"
	"github.com/seqlab/biolapse/internal/journal"
	"github.com/seqlab/biolapse/internal/logic/course"
	"github.com/seqlab/biolapse/internal/remote"
	"github.com/seqlab/biolapse/internal/sched"
	"github.com/seqlab/biolapse/internal/store"
)

// rig bundles the live collaborators behind one session state machine.
type rig struct {
	store   *store.Store
	journal *journal.Lazy
	driver  gpio.Driver
	machine *course.Machine
}

// openRig acquires the hardware and builds the state machine. Everything
// is scoped to one invocation; Close releases the GPIO (restoring safe pin
// state) and the journal handle.
//
// The journal is deliberately lazy: recording is best-effort, so a corrupt
// or locked database must never block a scheduled capture tick, and an
// invocation that captures nothing must not create the database file.
func openRig(cfg *config.Config) (*rig, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	stateStore := store.New(filepath.Join(workDir, cfg.Store.StateFile))
	j := journal.NewLazy(filepath.Join(workDir, cfg.Journal.Path))

	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	driver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		return nil, fmt.Errorf("init GPIO: %w", err)
	}

	panel := light.NewPanel(driver, cfg.Light.Pin)

	cam, err := newCamera(cfg)
	if err != nil {
		driver.Close()
		return nil, err
	}

	cron, err := newScheduler(workDir)
	if err != nil {
		driver.Close()
		return nil, err
	}

	var syncer course.Syncer
	if !cfg.Sync.Disabled {
		syncer = remote.NewPusher(cfg.Sync.Command, cfg.Sync.Args, nil)
	}

	machine := course.NewMachine(course.Deps{
		Store:     stateStore,
		Light:     panel,
		Camera:    cam,
		Scheduler: cron,
		Syncer:    syncer,
		Journal:   j,
		WorkDir:   workDir,
	})

	return &rig{
		store:   stateStore,
		journal: j,
		driver:  driver,
		machine: machine,
	}, nil
}

// Close releases the hardware and the journal.
func (r *rig) Close() {
	if err := r.driver.Close(); err != nil {
		debug.Error(fmt.Errorf("closing GPIO driver: %w", err))
	}
	if err := r.journal.Close(); err != nil {
		debug.Error(fmt.Errorf("closing journal: %w", err))
	}
}

// newCamera selects a camera implementation based on configuration.
func newCamera(cfg *config.Config) (camera.Camera, error) {
	switch cfg.Camera.Type {
	case "rpicam":
		return camera.NewRpicam(camera.RpicamOptions{
			Binary:         cfg.Camera.Binary,
			WidthPx:        cfg.Camera.WidthPx,
			HeightPx:       cfg.Camera.HeightPx,
			ISO:            cfg.Camera.ISO,
			ShutterSpeedUs: cfg.Camera.ShutterSpeedUs,
			SettleInterval: cfg.SettleInterval(),
			SettleTimeout:  cfg.SettleTimeout(),
		}, nil), nil
	case "mock":
		return camera.Mock{}, nil
	default:
		return nil, fmt.Errorf("unsupported camera type: %s", cfg.Camera.Type)
	}
}

// newScheduler builds the crontab manager around this executable.
func newScheduler(workDir string) (*sched.Crontab, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolve executable path: %w", err)
	}
	exe, err = filepath.Abs(exe)
	if err != nil {
		return nil, fmt.Errorf("resolve executable path: %w", err)
	}
	return sched.NewCrontab(exe, workDir, nil), nil
}

// openReadOnly builds just the store and journal for commands that never
// touch the hardware (status, serve).
func openReadOnly(cfg *config.Config) (*store.Store, *journal.Journal, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve working directory: %w", err)
	}

	stateStore := store.New(filepath.Join(workDir, cfg.Store.StateFile))
	j, err := journal.Open(filepath.Join(workDir, cfg.Journal.Path))
	if err != nil {
		return nil, nil, err
	}
	return stateStore, j, nil
}

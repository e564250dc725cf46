package camera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/seqlab/biolapse/internal/debug"
)

// Runner executes an external command and returns its stdout.
// It exists so tests can script the capture binary.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command for real, capturing stderr into the error.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	debug.Exec(name, args)
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w (stderr: %s)", name, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// RpicamOptions configures the rpicam-still backed camera.
type RpicamOptions struct {
	Binary         string // e.g., "rpicam-still"
	WidthPx        int
	HeightPx       int
	ISO            int           // fixed sensitivity for the session
	ShutterSpeedUs int           // fixed exposure duration (µs)
	SettleInterval time.Duration // delay between gain polls
	SettleTimeout  time.Duration // bound on gain convergence
}

// Rpicam is a Camera implementation shelling out to the libcamera still
// tool. Calibration polls capture metadata until the gain indicators settle
// at the stable reference, then freezes the reported white-balance gains
// together with the configured sensitivity and exposure.
type Rpicam struct {
	opts RpicamOptions
	run  Runner
}

// NewRpicam creates an rpicam-still backed camera. A nil runner uses
// ExecRunner.
func NewRpicam(opts RpicamOptions, run Runner) *Rpicam {
	if run == nil {
		run = ExecRunner
	}
	return &Rpicam{opts: opts, run: run}
}

// metadata mirrors the fields of interest in rpicam-still's JSON metadata.
type metadata struct {
	AnalogueGain float64    `json:"AnalogueGain"`
	DigitalGain  float64    `json:"DigitalGain"`
	ColourGains  [2]float64 `json:"ColourGains"`
}

// readMetadata runs one throwaway frame and parses the reported metadata.
func (c *Rpicam) readMetadata(ctx context.Context) (metadata, error) {
	out, err := c.run(ctx, c.opts.Binary,
		"--nopreview",
		"--immediate",
		"--metadata", "-",
		"--metadata-format", "json",
		"--shutter", fmt.Sprint(c.opts.ShutterSpeedUs),
		"-o", "/dev/null",
	)
	if err != nil {
		return metadata{}, err
	}

	var md metadata
	if err := json.Unmarshal(out, &md); err != nil {
		return metadata{}, fmt.Errorf("parse capture metadata: %w", err)
	}
	return md, nil
}

// ReadGains implements GainReader over capture metadata.
func (c *Rpicam) ReadGains(ctx context.Context) (Gains, error) {
	md, err := c.readMetadata(ctx)
	if err != nil {
		return Gains{}, err
	}
	return Gains{Analog: md.AnalogueGain, Digital: md.DigitalGain}, nil
}

// Calibrate waits for the gain indicators to settle, then freezes the
// measured white-balance gains into a profile.
func (c *Rpicam) Calibrate(ctx context.Context) (Profile, error) {
	debug.Verbose("Camera: waiting for gains to settle (interval=%v, timeout=%v)",
		c.opts.SettleInterval, c.opts.SettleTimeout)

	if err := WaitForSettle(ctx, c, c.opts.SettleInterval, c.opts.SettleTimeout); err != nil {
		return Profile{}, err
	}

	md, err := c.readMetadata(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("read settled gains: %w", err)
	}

	p := Profile{
		ISO:            c.opts.ISO,
		ShutterSpeedUs: c.opts.ShutterSpeedUs,
		GainRed:        md.ColourGains[0],
		GainBlue:       md.ColourGains[1],
	}
	debug.Profile(p.ISO, p.ShutterSpeedUs, p.GainRed, p.GainBlue)
	return p, nil
}

// Capture produces one PNG still with the frozen profile applied.
func (c *Rpicam) Capture(ctx context.Context, p Profile) ([]byte, error) {
	gain := float64(p.ISO) / 100.0

	out, err := c.run(ctx, c.opts.Binary,
		"--nopreview",
		"--immediate",
		"--width", fmt.Sprint(c.opts.WidthPx),
		"--height", fmt.Sprint(c.opts.HeightPx),
		"--shutter", fmt.Sprint(p.ShutterSpeedUs),
		"--gain", fmt.Sprintf("%.2f", gain),
		"--awbgains", fmt.Sprintf("%.3f,%.3f", p.GainRed, p.GainBlue),
		"--encoding", "png",
		"-o", "-",
	)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s produced no image data", c.opts.Binary)
	}
	return out, nil
}

package camera

import (
	"context"
	"errors"
)

// Profile is the frozen acquisition calibration for a session. It is
// produced exactly once, by Calibrate, and every later capture must use
// it unmodified so all images share identical optical conditions.
type Profile struct {
	ISO            int     `yaml:"iso"`              // sensitivity
	ShutterSpeedUs int     `yaml:"shutter_speed_us"` // exposure duration (µs)
	GainRed        float64 `yaml:"gain_red"`         // white-balance red gain
	GainBlue       float64 `yaml:"gain_blue"`        // white-balance blue gain
}

// ErrSettleTimeout is returned when the sensor gains fail to converge
// within the configured bound.
var ErrSettleTimeout = errors.New("camera gains did not settle in time")

// Camera is the high-level interface used by the rest of the application.
// It represents an abstract "camera", regardless of how it's controlled
// (libcamera shell-out, mock, etc.).
type Camera interface {
	// Calibrate blocks until the auto-exposure/auto-white-balance gains
	// converge, then returns the frozen profile.
	Calibrate(ctx context.Context) (Profile, error)

	// Capture produces one still image using the given profile and
	// returns the raw encoded bytes.
	Capture(ctx context.Context, p Profile) ([]byte, error)
}

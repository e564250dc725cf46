package camera

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/seqlab/biolapse/internal/debug"
)

// Mock is a Camera for development on PC. Calibrate returns a canned
// profile matching the reference rig; Capture returns a small valid PNG.
type Mock struct{}

func (Mock) Calibrate(ctx context.Context) (Profile, error) {
	debug.Info("Using MOCK camera (development mode)")
	return Profile{
		ISO:            100,
		ShutterSpeedUs: 1000000,
		GainRed:        1.5,
		GainBlue:       1.5,
	}, nil
}

func (Mock) Capture(ctx context.Context, p Profile) ([]byte, error) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

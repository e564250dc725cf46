package camera

import (
	"context"
	"fmt"
	"time"

	"github.com/seqlab/biolapse/internal/debug"
)

// stableGain is the reference value both gain indicators must report
// before the exposure and white balance are considered settled.
const stableGain = 1.0

// Gains is one device-reported gain reading.
type Gains struct {
	Analog  float64
	Digital float64
}

// GainReader reports the current sensor gains. The real camera reads them
// from capture metadata; tests supply scripted sequences.
type GainReader interface {
	ReadGains(ctx context.Context) (Gains, error)
}

// WaitForSettle polls the reader until both analog and digital gain equal
// the stable reference, sleeping interval between polls. The wait is bounded
// by timeout; expiry returns an error wrapping ErrSettleTimeout.
func WaitForSettle(ctx context.Context, r GainReader, interval, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		g, err := r.ReadGains(ctx)
		if err != nil {
			return fmt.Errorf("read gains: %w", err)
		}
		debug.Gain(g.Analog, g.Digital)

		if g.Analog == stableGain && g.Digital == stableGain {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: analog=%.3f digital=%.3f after %v",
				ErrSettleTimeout, g.Analog, g.Digital, timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

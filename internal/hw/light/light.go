package light

import (
	"github.com/seqlab/biolapse/internal/debug"
	"github.com/seqlab/biolapse/internal/hw/gpio"
)

// Panel drives the transilluminator LED panel through a single GPIO line:
// - GND: connected to Raspberry Pi ground
// - SIGNAL: HIGH lights the panel, LOW darkens it
//
// The panel carries no state of its own beyond the pin level. It must be
// dark whenever no capture is in progress, so the constructor drives the
// pin LOW before returning.
type Panel struct {
	gpio gpio.Driver
	pin  int
}

// NewPanel creates a GPIO-controlled LED panel on the given pin (BCM).
func NewPanel(g gpio.Driver, pin int) *Panel {
	// Configure the pin as output, dark by default
	_ = g.SetupOutput(pin)
	_ = g.WritePin(pin, gpio.Low)

	return &Panel{
		gpio: g,
		pin:  pin,
	}
}

// Set switches the panel on or off.
func (p *Panel) Set(on bool) error {
	debug.Light(on)
	level := gpio.Low
	if on {
		level = gpio.High
	}
	return p.gpio.WritePin(p.pin, level)
}

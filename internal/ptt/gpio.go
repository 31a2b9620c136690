package ptt

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOLine drives PTT through a Linux GPIO character-device line
// (spec.md §6's "GPIO"), grounded on the teacher's gpiod_probe/
// export_gpio sysfs-era code, reimplemented over the newer gpiocdev
// ABI the teacher already depends on.
type GPIOLine struct {
	line   *gpiocdev.Line
	invert bool
}

// NewGPIOLine requests exclusive output control of offset on chip
// (e.g. "gpiochip0").
func NewGPIOLine(chip string, offset int, invert bool) (*GPIOLine, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("ptt: requesting %s:%d: %w", chip, offset, err)
	}
	return &GPIOLine{line: l, invert: invert}, nil
}

func (g *GPIOLine) Set(_ OutputType, _ int, on bool) error {
	if g.invert {
		on = !on
	}
	v := 0
	if on {
		v = 1
	}
	return g.line.SetValue(v)
}

func (g *GPIOLine) Close() error {
	return g.line.Close()
}

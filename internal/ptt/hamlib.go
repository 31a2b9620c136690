package ptt

import (
	"fmt"

	hamlib "github.com/xylo04/goHamlib"
)

// Hamlib drives PTT through a rig's CAT interface via the hamlib
// bindings (spec.md §6's "a hamlib CAT command"). hamlib itself is
// explicitly out of core (spec.md §1: "hamlib/CM108 PTT device
// drivers (treated as external)") — this is only the thin adapter
// satisfying the Line interface.
type Hamlib struct {
	rig *hamlib.Rig
}

// NewHamlib opens a rig of the given hamlib model number on device,
// e.g. model 1035 (Kenwood TS-2000) on "/dev/ttyUSB0".
func NewHamlib(model int, device string) (*Hamlib, error) {
	rig := hamlib.RigInit(model)
	if rig == nil {
		return nil, fmt.Errorf("ptt: hamlib model %d not recognized", model)
	}
	rig.SetConf("rig_pathname", device)
	if err := rig.Open(); err != nil {
		return nil, fmt.Errorf("ptt: hamlib open %s: %w", device, err)
	}
	return &Hamlib{rig: rig}, nil
}

func (h *Hamlib) Set(ot OutputType, _ int, on bool) error {
	if ot != PTT {
		return nil // hamlib only models the transmit-enable line
	}
	return h.rig.SetPTT(hamlib.VFOCurrent, on)
}

func (h *Hamlib) Close() error {
	return h.rig.Close()
}

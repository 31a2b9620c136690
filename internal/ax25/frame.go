package ax25

import (
	"fmt"

	"github.com/n7dwg/direwolf-go/internal/fcs"
)

// Frame-length bounds from spec.md §3: total octets excluding FCS.
const (
	MinFrameLen = 15
	MaxFrameLen = 330
)

// Flavor classifies a frame for XmitScheduler bundling decisions
// (spec.md §4.6).
type Flavor int

const (
	FlavorOther Flavor = iota
	FlavorAPRSNew
	FlavorAPRSDigi
)

// FECType records which forward-error-correction wrapper, if any,
// delivered a received frame (spec.md §3 DlqItem).
type FECType int

const (
	FECNone FECType = iota
	FECFX25
)

const uiControl = 0x03
const pidNoLayer3 = 0xF0 // APRS convention; "no layer 3 protocol"

// Frame is an immutable AX.25 packet: 2..10 addresses, a control octet,
// an optional PID, and an information field. It is created by a client
// or by the receive decoder and destroyed (garbage collected) once
// consumed by delivery or transmission.
type Frame struct {
	Dest    Address
	Source  Address
	Digis   []Address // 0..8 repeater addresses, in path order
	Control byte
	HasPID  bool
	PID     byte
	Info    []byte
}

// IsUI reports whether Control names an unnumbered-information frame,
// the only type APRS uses.
func (f Frame) IsUI() bool {
	return f.Control == uiControl
}

// Flavor implements spec.md §4.6's frame_flavor: APRS_DIGI frames (UI,
// PID 0xF0, at least one repeater, first repeater marked used) transmit
// alone; APRS_NEW (UI, PID 0xF0, otherwise) and OTHER frames may bundle.
func (f Frame) Flavor() Flavor {
	if !f.IsUI() || !f.HasPID || f.PID != pidNoLayer3 {
		return FlavorOther
	}
	if len(f.Digis) > 0 && f.Digis[0].Repeated {
		return FlavorAPRSDigi
	}
	return FlavorAPRSNew
}

// Pack serializes the frame to its AX.25 wire bytes, excluding FCS.
func (f Frame) Pack() ([]byte, error) {
	addrs := append([]Address{f.Dest, f.Source}, f.Digis...)
	if len(addrs) < 2 || len(addrs) > 10 {
		return nil, fmt.Errorf("ax25: %d addresses out of range 2..10", len(addrs))
	}
	buf := make([]byte, 0, 7*len(addrs)+2+len(f.Info))
	for i, a := range addrs {
		enc, err := EncodeAddress(a, i == len(addrs)-1)
		if err != nil {
			return nil, err
		}
		buf = append(buf, enc[:]...)
	}
	buf = append(buf, f.Control)
	if f.HasPID {
		buf = append(buf, f.PID)
	}
	buf = append(buf, f.Info...)
	if len(buf) < MinFrameLen || len(buf) > MaxFrameLen {
		return nil, fmt.Errorf("ax25: packed frame length %d out of range %d..%d", len(buf), MinFrameLen, MaxFrameLen)
	}
	return buf, nil
}

// Unpack parses wire bytes (as produced by Pack, FCS already stripped)
// back into a Frame.
func Unpack(data []byte) (Frame, error) {
	if len(data) < MinFrameLen || len(data) > MaxFrameLen {
		return Frame{}, fmt.Errorf("ax25: frame length %d out of range %d..%d", len(data), MinFrameLen, MaxFrameLen)
	}
	var addrs []Address
	off := 0
	for {
		if off+7 > len(data) {
			return Frame{}, fmt.Errorf("ax25: truncated address field at offset %d", off)
		}
		var raw [7]byte
		copy(raw[:], data[off:off+7])
		addr, last := DecodeAddress(raw)
		addrs = append(addrs, addr)
		off += 7
		if last {
			break
		}
		if len(addrs) > 10 {
			return Frame{}, fmt.Errorf("ax25: more than 10 addresses without extension bit")
		}
	}
	if len(addrs) < 2 || off >= len(data) {
		return Frame{}, fmt.Errorf("ax25: malformed address field")
	}
	f := Frame{Dest: addrs[0], Source: addrs[1], Digis: addrs[2:]}
	f.Control = data[off]
	off++
	if f.Control == uiControl && off < len(data) {
		f.HasPID = true
		f.PID = data[off]
		off++
	}
	f.Info = append([]byte{}, data[off:]...)
	return f, nil
}

// FCS returns the two FCS bytes (low, high) for this frame's packed form.
func (f Frame) FCS() ([2]byte, error) {
	packed, err := f.Pack()
	if err != nil {
		return [2]byte{}, err
	}
	return fcs.Bytes(packed), nil
}

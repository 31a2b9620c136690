package hdlc

import "github.com/n7dwg/direwolf-go/internal/fcs"

// Frame length bounds, duplicated from ax25 to avoid an import cycle
// (hdlc is lower-level than ax25: it frames bytes, it does not parse
// AX.25 addressing).
const (
	MinFrameLen = 15
	MaxFrameLen = 330
)

// FixBits selects how hard the decoder tries to recover a frame whose
// FCS does not validate as received (spec.md §3 ChannelConfig.fix_bits).
type FixBits int

const (
	FixNone FixBits = iota
	FixSingle
)

// DecodedFrame is one candidate frame recovered from the bit stream,
// with the FCS already verified (possibly after correction).
type DecodedFrame struct {
	Payload   []byte // frame bytes, FCS stripped
	Corrected bool   // true if FixSingle flipped a bit to pass FCS
}

// Decoder is one (channel, subchannel, slicer) HDLC bit-detector slot,
// per spec.md §4.3. It is not safe for concurrent use; RecvDispatcher
// owns one Decoder per demodulator slot.
type Decoder struct {
	fixBits FixBits

	prevRaw int  // last raw bit, for NRZI
	patDet  byte // shift register of the last 8 decoded bits

	oacc byte // bit accumulator for the current octet
	olen int  // bits in oacc; -1 means "not in a frame"

	frameBuf [MaxFrameLen]byte
	frameLen int

	// onFrame is invoked once per candidate frame that clears the
	// minimum length and (after optional correction) passes FCS.
	onFrame func(DecodedFrame)

	// OnActivity, if set, is invoked on every flag byte seen — the
	// cheapest available DCD proxy; cmd/direwolfd wires it to a
	// recv.DCDTracker that drives xmit.Scheduler's channel-busy check.
	OnActivity func()
}

// NewDecoder returns a Decoder that reports completed, FCS-valid
// frames to onFrame.
func NewDecoder(fixBits FixBits, onFrame func(DecodedFrame)) *Decoder {
	d := &Decoder{fixBits: fixBits, onFrame: onFrame}
	d.olen = -1
	return d
}

// ReceiveBit processes one raw (pre-NRZI-decode) bit from the
// demodulator, per spec.md §4.3 steps 1–7.
func (d *Decoder) ReceiveBit(raw int) {
	raw &= 1
	dbit := boolToInt(raw == d.prevRaw)
	d.prevRaw = raw

	d.patDet = (d.patDet >> 1) | byte(dbit<<7)

	switch {
	case d.patDet == 0x7E:
		d.onFlag()
	case d.patDet == 0xFE:
		d.onAbort()
	case d.patDet&0xFC == 0x7C:
		// Five 1s followed by a 0: a stuffed zero, drop it.
	default:
		d.accumulate(dbit)
	}
}

func (d *Decoder) onFlag() {
	if d.OnActivity != nil {
		d.OnActivity()
	}
	if d.olen == 7 && d.frameLen >= MinFrameLen {
		d.deliver()
	}
	d.olen = 0
	d.frameLen = 0
}

func (d *Decoder) onAbort() {
	d.olen = -1
	d.frameLen = 0
}

func (d *Decoder) accumulate(dbit int) {
	if d.olen < 0 {
		return
	}
	d.oacc = (d.oacc >> 1) | byte(dbit<<7)
	d.olen++
	if d.olen == 8 {
		d.olen = 0
		if d.frameLen < MaxFrameLen {
			d.frameBuf[d.frameLen] = d.oacc
			d.frameLen++
		}
	}
}

func (d *Decoder) deliver() {
	raw := append([]byte{}, d.frameBuf[:d.frameLen]...)
	if fcs.Valid(raw) {
		d.onFrame(DecodedFrame{Payload: raw[:len(raw)-2]})
		return
	}
	if d.fixBits == FixSingle {
		if fixed, ok := correctSingleBit(raw); ok {
			d.onFrame(DecodedFrame{Payload: fixed[:len(fixed)-2], Corrected: true})
		}
	}
}

// correctSingleBit tries flipping each bit of frame in turn until one
// flip makes the FCS validate, in ascending bit-index order — the
// "first FCS-valid candidate in a deterministic traversal order" spec.md
// §4.9's open question calls for, specialized here to a single slot
// instead of a cross-slicer search. This module runs one slot per
// channel, so there is no vote between slots.
func correctSingleBit(frame []byte) ([]byte, bool) {
	trial := append([]byte{}, frame...)
	for byteIdx := range trial {
		for bit := 0; bit < 8; bit++ {
			trial[byteIdx] ^= 1 << bit
			if fcs.Valid(trial) {
				return trial, true
			}
			trial[byteIdx] ^= 1 << bit
		}
	}
	return nil, false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

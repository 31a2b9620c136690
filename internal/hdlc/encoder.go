// Package hdlc implements HDLC framing for AX.25: NRZI encoding, bit
// stuffing, flag delimiting, and the receive bit-detector state machine
// that recovers frames from a raw bit stream (spec.md §4.2–4.3).
package hdlc

import "github.com/n7dwg/direwolf-go/internal/fcs"

const flagByte = 0x7E

// BitSink receives one NRZI line bit at a time, destined for a tone
// generator (spec.md §4.4) or a test harness.
type BitSink interface {
	PutBit(bit int)
}

// Encoder turns AX.25 frames into an NRZI bit stream with flags, bit
// stuffing, and FCS. NRZI state (the last line level) and the bit-stuff
// counter persist across calls within one transmission burst — the
// caller must reuse one Encoder for a whole PTT-up/PTT-down bundle and
// not reset it between frames, per spec.md §4.2.
type Encoder struct {
	sink      BitSink
	line      int // current NRZI line level, 0 or 1
	onesRun   int // consecutive data-1 bits since the last data-0 or stuff
	bitsSent  int
}

// NewEncoder returns an Encoder that writes NRZI bits to sink.
func NewEncoder(sink BitSink) *Encoder {
	return &Encoder{sink: sink}
}

// sendBitNRZI sends one data bit after NRZI encoding: a data 0 toggles
// the line, a data 1 leaves it unchanged.
func (e *Encoder) sendBitNRZI(bit int) {
	if bit == 0 {
		e.line = 1 - e.line
	}
	e.sink.PutBit(e.line)
	e.bitsSent++
}

// sendFlagNRZI sends one 0x7E byte, LSB first, NRZI encoded, without
// bit stuffing, and resets the stuff counter.
func (e *Encoder) sendFlagNRZI(b byte) {
	for i := 0; i < 8; i++ {
		e.sendBitNRZI(int(b & 1))
		b >>= 1
	}
	e.onesRun = 0
}

// sendDataByteNRZI sends one data byte LSB first, NRZI encoded, with
// bit stuffing: after five consecutive data-1 bits, a data-0 is
// inserted (and itself NRZI-encoded and emitted, but does not count
// toward the next run).
func (e *Encoder) sendDataByteNRZI(b byte) {
	for i := 0; i < 8; i++ {
		bit := int(b & 1)
		e.sendBitNRZI(bit)
		if bit == 1 {
			e.onesRun++
			if e.onesRun == 5 {
				e.sendBitNRZI(0)
				e.onesRun = 0
			}
		} else {
			e.onesRun = 0
		}
		b >>= 1
	}
}

// SendFrame emits one complete framed packet: start flag, bit-stuffed
// payload, FCS (or its bitwise complement if badFCS is set, for negative
// testing), end flag. It returns the number of bits emitted, including
// flags and stuff bits.
func (e *Encoder) SendFrame(payload []byte, badFCS bool) int {
	start := e.bitsSent
	e.sendFlagNRZI(flagByte)

	for _, b := range payload {
		e.sendDataByteNRZI(b)
	}

	sum := fcs.Bytes(payload)
	if badFCS {
		sum[0] = ^sum[0]
		sum[1] = ^sum[1]
	}
	e.sendDataByteNRZI(sum[0])
	e.sendDataByteNRZI(sum[1])

	e.sendFlagNRZI(flagByte)
	return e.bitsSent - start
}

// SendFlags emits n copies of the flag byte with NRZI but no stuffing —
// used for TXDELAY preamble and TXTAIL postamble (spec.md §4.2). It
// returns the number of bits emitted, always 8*n.
func (e *Encoder) SendFlags(n int) int {
	start := e.bitsSent
	for i := 0; i < n; i++ {
		e.sendFlagNRZI(flagByte)
	}
	return e.bitsSent - start
}

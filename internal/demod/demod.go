// Package demod implements the AFSK correlator/slicer collaborator
// spec.md §4 calls the demodulator: it turns a PCM sample stream back
// into the bit stream hdlc.Decoder expects, the receive-side mirror of
// tone.Generator. Grounded on the teacher's demod_afsk.c/demod.c design
// (quadrature mark/space correlators feeding a PLL-timed slicer); the
// teacher runs several parallel slicers per channel for fading margin,
// which this package simplifies to one slicer (see DESIGN.md).
package demod

import "math"

// BitSink receives one raw line bit (1 = mark tone, 0 = space tone) per
// slicer decision; NRZI decoding is left to the receiver of the bits.
type BitSink interface {
	ReceiveBit(bit int)
}

// Demodulator is a per-channel AFSK demodulator: two single-pole IIR
// band-pass correlators tuned to the mark/space tones, a discriminator
// comparing their envelope, and a software PLL that samples the
// discriminator output once per bit cell.
type Demodulator struct {
	sink BitSink

	sampleRate int
	baud       int

	markPhaseStep, spacePhaseStep uint32
	markPhase, spacePhase         uint32

	markI, markQ   float64
	spaceI, spaceQ float64
	decay          float64 // correlator low-pass pole, derived from baud

	pllPhase uint32 // 32-bit PLL accumulator, wraps once per bit cell
	pllStep  uint32
}

// NewDemodulator builds a demodulator for the given sample rate, baud
// rate and tone pair (matching the ToneGen the far end used to encode).
func NewDemodulator(sink BitSink, sampleRate, baud, markFreq, spaceFreq int) *Demodulator {
	d := &Demodulator{
		sink:          sink,
		sampleRate:    sampleRate,
		baud:          baud,
		markPhaseStep: freqStep(markFreq, sampleRate),
		spacePhaseStep: freqStep(spaceFreq, sampleRate),
		pllStep:        uint32((uint64(baud) << 32) / uint64(sampleRate)),
	}
	// Pole chosen so the correlator's time constant is about one bit
	// cell, matching the teacher's BPF time constant heuristic.
	d.decay = math.Exp(-2 * math.Pi * float64(baud) / float64(sampleRate))
	return d
}

func freqStep(freq, sampleRate int) uint32 {
	return uint32((uint64(freq) << 32) / uint64(sampleRate))
}

// PutSample feeds one PCM sample (in [-1, 1]) through both tone
// correlators and the bit-cell PLL.
func (d *Demodulator) PutSample(sample float64) {
	mc, ms := sincos(d.markPhase)
	sc, ss := sincos(d.spacePhase)

	d.markI = d.decay*d.markI + (1-d.decay)*sample*mc
	d.markQ = d.decay*d.markQ + (1-d.decay)*sample*ms
	d.spaceI = d.decay*d.spaceI + (1-d.decay)*sample*sc
	d.spaceQ = d.decay*d.spaceQ + (1-d.decay)*sample*ss

	d.markPhase += d.markPhaseStep
	d.spacePhase += d.spacePhaseStep

	markEnergy := d.markI*d.markI + d.markQ*d.markQ
	spaceEnergy := d.spaceI*d.spaceI + d.spaceQ*d.spaceQ
	discriminator := markEnergy - spaceEnergy

	prevPhase := d.pllPhase
	d.pllPhase += d.pllStep
	if d.pllPhase < prevPhase {
		// PLL wrapped: this sample is the bit-cell centre, slice now.
		d.slice(discriminator)
	}
}

func (d *Demodulator) slice(discriminator float64) {
	raw := 1
	if discriminator < 0 {
		raw = 0
	}
	// Pass the line level on unchanged: hdlc.Decoder.ReceiveBit takes
	// raw (pre-NRZI-decode) bits and undoes NRZI itself.
	d.sink.ReceiveBit(raw)
}

func sincos(phase uint32) (sin, cos float64) {
	const scale = 2 * math.Pi / 4294967296.0
	rad := float64(phase) * scale
	return math.Sin(rad), math.Cos(rad)
}

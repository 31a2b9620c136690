// Package tone implements direct digital synthesis of AFSK mark/space
// tones from a bit stream, per spec.md §4.4.
package tone

import "math"

const sineTableSize = 256

var sineTable [sineTableSize]float64

func init() {
	for i := range sineTable {
		sineTable[i] = math.Sin(2 * math.Pi * float64(i) / float64(sineTableSize))
	}
}

// Sink receives synthesized PCM samples, one at a time, in the range
// [-1, 1]. An AudioIo implementation adapts this to the device's
// sample format.
type Sink interface {
	PutSample(s float64)
}

// Generator is one channel's AFSK DDS tone source: a phase accumulator
// advanced by a per-sample "tick" count, sampled through a 256-entry
// sine table and scaled by amplitude.
type Generator struct {
	sink       Sink
	amplitude  float64
	sampleRate int
	baud       int

	phase      uint32
	bitLenAcc  uint32
	ticksPerSample uint32
	ticksPerBit    uint32
	markStep       uint32
	spaceStep      uint32
}

// NewGenerator builds a Generator for one channel's mark/space tones.
// amplitude is in [0, 1].
func NewGenerator(sink Sink, sampleRate, baud, markFreq, spaceFreq int, amplitude float64) *Generator {
	g := &Generator{
		sink:       sink,
		amplitude:  amplitude,
		sampleRate: sampleRate,
		baud:       baud,
	}
	g.ticksPerSample = uint32((uint64(1) << 32) / uint64(sampleRate))
	g.ticksPerBit = uint32((uint64(1) << 32) / uint64(baud))
	g.markStep = freqStep(markFreq, sampleRate)
	g.spaceStep = freqStep(spaceFreq, sampleRate)
	return g
}

func freqStep(freq, sampleRate int) uint32 {
	return uint32((uint64(freq) << 32) / uint64(sampleRate))
}

// PutBit advances the phase accumulator and emits samples until one bit
// period has elapsed, as spec.md §4.4 describes. bit == -1 is the
// special "half-bit nudge" used to perturb timing for PLL testing: it
// consumes half a bit period without advancing the phase.
func (g *Generator) PutBit(bit int) {
	if bit == -1 {
		for g.bitLenAcc < g.ticksPerBit/2 {
			g.emitSample(g.phase)
			g.bitLenAcc += g.ticksPerSample
		}
		g.bitLenAcc -= g.ticksPerBit / 2
		return
	}

	step := g.spaceStep
	if bit != 0 {
		step = g.markStep
	}
	for g.bitLenAcc < g.ticksPerBit {
		g.phase += step
		g.emitSample(g.phase)
		g.bitLenAcc += g.ticksPerSample
	}
	g.bitLenAcc -= g.ticksPerBit
}

func (g *Generator) emitSample(phase uint32) {
	idx := phase >> 24
	g.sink.PutSample(sineTable[idx] * g.amplitude)
}

// PutQuietMS emits ms milliseconds of silence, then resets phase to 0
// so the next tone resumes without a discontinuity.
func (g *Generator) PutQuietMS(ms int) {
	n := ms * g.sampleRate / 1000
	for i := 0; i < n; i++ {
		g.sink.PutSample(0)
	}
	g.phase = 0
	g.bitLenAcc = 0
}

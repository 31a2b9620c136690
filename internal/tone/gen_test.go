package tone_test

import (
	"testing"

	"github.com/n7dwg/direwolf-go/internal/tone"
	"github.com/stretchr/testify/assert"
)

type recordingSink struct {
	samples []float64
}

func (s *recordingSink) PutSample(v float64) { s.samples = append(s.samples, v) }

func TestPutBitEmitsExpectedSampleCount(t *testing.T) {
	sink := &recordingSink{}
	g := tone.NewGenerator(sink, 9600, 1200, 1200, 2200, 1.0)

	g.PutBit(1)
	g.PutBit(0)

	// Roughly sampleRate/baud samples per bit; allow the off-by-one the
	// accumulator's rounding can introduce.
	expectedPerBit := 9600 / 1200
	assert.InDelta(t, 2*expectedPerBit, len(sink.samples), 2)
}

func TestAmplitudeScalesSamples(t *testing.T) {
	sink := &recordingSink{}
	g := tone.NewGenerator(sink, 9600, 1200, 1200, 2200, 0.5)
	g.PutBit(1)
	for _, s := range sink.samples {
		assert.LessOrEqual(t, s, 0.5)
		assert.GreaterOrEqual(t, s, -0.5)
	}
}

func TestPutQuietMSEmitsSilence(t *testing.T) {
	sink := &recordingSink{}
	g := tone.NewGenerator(sink, 8000, 1200, 1200, 2200, 1.0)
	g.PutQuietMS(10)
	assert.Len(t, sink.samples, 80)
	for _, s := range sink.samples {
		assert.Equal(t, 0.0, s)
	}
}

func TestHalfBitNudgeDoesNotAdvancePhase(t *testing.T) {
	sink := &recordingSink{}
	g := tone.NewGenerator(sink, 9600, 1200, 1200, 2200, 1.0)
	g.PutBit(1)
	before := len(sink.samples)
	held := sink.samples[before-1]
	g.PutBit(-1)
	assert.Greater(t, len(sink.samples), before)
	for _, s := range sink.samples[before:] {
		assert.Equal(t, held, s)
	}
}

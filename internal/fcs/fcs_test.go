package fcs_test

import (
	"testing"

	"github.com/n7dwg/direwolf-go/internal/fcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Address+control+PID+info vector from spec.md §8.1; its bytes decode
// to MB2TO>APRS:!
var vector = []byte{
	0x82, 0xA0, 0xA4, 0xA6, 0x40, 0x40, 0xE0,
	0x9A, 0x84, 0x64, 0xA8, 0x9E, 0x40, 0x61,
	0x03, 0xF0, 0x21,
}

func TestComputeDeterministic(t *testing.T) {
	got := fcs.Compute(vector)
	assert.Equal(t, got, fcs.Compute(vector), "fcs must be a pure function of its input")
}

func TestAppendThenValidate(t *testing.T) {
	b := fcs.Bytes(vector)
	frame := append(append([]byte{}, vector...), b[0], b[1])
	require.True(t, fcs.Valid(frame))
}

func TestCorruptionDetected(t *testing.T) {
	b := fcs.Bytes(vector)
	frame := append(append([]byte{}, vector...), b[0], b[1])
	frame[3] ^= 0x01
	assert.False(t, fcs.Valid(frame))
}

// FCS round-trip: any 15..330 byte frame validates against its own FCS.
func TestRapidRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(15, 330).Draw(rt, "n")
		data := rapid.SliceOfN(rapid.Byte(), n, n).Draw(rt, "data")
		b := fcs.Bytes(data)
		frame := append(append([]byte{}, data...), b[0], b[1])
		if !fcs.Valid(frame) {
			rt.Fatalf("frame of len %d failed to validate against its own fcs", n)
		}
	})
}

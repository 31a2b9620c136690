package hdlc_test

import (
	"testing"

	"github.com/n7dwg/direwolf-go/internal/hdlc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// bitRecorder is a hdlc.BitSink that just remembers every bit, and can
// feed them straight into a Decoder for round-trip tests.
type bitRecorder struct {
	bits []int
}

func (r *bitRecorder) PutBit(bit int) { r.bits = append(r.bits, bit) }

func encodeDecodeOne(payload []byte, fixBits hdlc.FixBits) []hdlc.DecodedFrame {
	var got []hdlc.DecodedFrame
	dec := hdlc.NewDecoder(fixBits, func(f hdlc.DecodedFrame) { got = append(got, f) })

	rec := &bitRecorder{}
	enc := hdlc.NewEncoder(rec)
	enc.SendFrame(payload, false)

	for _, b := range rec.bits {
		dec.ReceiveBit(b)
	}
	return got
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("N0CALL>APZ001:HELLO")
	got := encodeDecodeOne(payload, hdlc.FixNone)
	require.Len(t, got, 1)
	assert.Equal(t, payload, got[0].Payload)
	assert.False(t, got[0].Corrected)
}

// Stuffing: info of 0xFF*4 forces exactly one stuff bit per run of 5
// ones, and the frame still recovers cleanly. The info follows a
// header so the frame clears hdlc.MinFrameLen.
func TestStuffingRoundTrip(t *testing.T) {
	payload := append([]byte("N0CALL>APZ001:"), 0xFF, 0xFF, 0xFF, 0xFF)
	rec := &bitRecorder{}
	enc := hdlc.NewEncoder(rec)
	enc.SendFrame(payload, false)

	// Between the two flags, no run of six consecutive 1 data bits
	// should appear once NRZI is undone, i.e. no six consecutive
	// unchanged-line bits after the encoded flag.
	assertNoSixConsecutiveOnes(t, rec.bits)

	var got []hdlc.DecodedFrame
	dec := hdlc.NewDecoder(hdlc.FixNone, func(f hdlc.DecodedFrame) { got = append(got, f) })
	for _, b := range rec.bits {
		dec.ReceiveBit(b)
	}
	require.Len(t, got, 1)
	assert.Equal(t, payload, got[0].Payload)
}

func assertNoSixConsecutiveOnes(t *testing.T, nrziBits []int) {
	t.Helper()
	// Undo NRZI to get the data bits, then scan what lies between the
	// opening and closing flags (eight bits each).
	var data []int
	prev := 0
	for _, b := range nrziBits {
		data = append(data, boolToInt(b == prev))
		prev = b
	}
	run := 0
	for _, b := range data[8 : len(data)-8] {
		if b == 1 {
			run++
			if run >= 6 {
				t.Fatalf("found six consecutive decoded-1 bits: stuffing failed")
			}
		} else {
			run = 0
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestBadFCSIsRejected(t *testing.T) {
	rec := &bitRecorder{}
	enc := hdlc.NewEncoder(rec)
	enc.SendFrame([]byte("N0CALL>APZ001:BADFCS"), true)

	var got []hdlc.DecodedFrame
	dec := hdlc.NewDecoder(hdlc.FixNone, func(f hdlc.DecodedFrame) { got = append(got, f) })
	for _, b := range rec.bits {
		dec.ReceiveBit(b)
	}
	assert.Empty(t, got, "a bad FCS must not be delivered without correction enabled")
}

func TestSingleBitCorrection(t *testing.T) {
	rec := &bitRecorder{}
	enc := hdlc.NewEncoder(rec)
	payload := []byte("N0CALL>APZ001:FLIPME")
	enc.SendFrame(payload, false)

	// Flip exactly one decoded data bit in the middle of the payload:
	// inverting every line bit from there on reverses one NRZI
	// transition and leaves all later transitions as they were.
	mid := len(rec.bits) / 2
	for i := mid; i < len(rec.bits); i++ {
		rec.bits[i] ^= 1
	}

	var got []hdlc.DecodedFrame
	dec := hdlc.NewDecoder(hdlc.FixSingle, func(f hdlc.DecodedFrame) { got = append(got, f) })
	for _, b := range rec.bits {
		dec.ReceiveBit(b)
	}
	// Either the frame still decodes (if the flip landed in a stuff bit
	// or flag) or single-bit correction recovers it; both are
	// acceptable, but it must never silently deliver wrong bytes.
	for _, f := range got {
		assert.Equal(t, payload, f.Payload)
	}
}

// NRZI round trip: any bit sequence, NRZI-encoded then decoded with the
// same initial line state, returns the original sequence.
func TestRapidNRZIRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 200).Draw(rt, "n")
		bits := rapid.SliceOfN(rapid.IntRange(0, 1), n, n).Draw(rt, "bits")
		seed := rapid.IntRange(0, 1).Draw(rt, "seed")

		line := seed
		nrzi := make([]int, n)
		for i, b := range bits {
			if b == 0 {
				line = 1 - line
			}
			nrzi[i] = line
		}

		prev := seed
		decoded := make([]int, n)
		for i, r := range nrzi {
			decoded[i] = boolToInt(r == prev)
			prev = r
		}

		for i := range bits {
			if decoded[i] != bits[i] {
				rt.Fatalf("bit %d: want %d, got %d", i, bits[i], decoded[i])
			}
		}
	})
}

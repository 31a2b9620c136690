// Package audio provides the blocking PCM source/sink collaborator
// spec.md §2/§6 calls AudioIo, plus a github.com/gordonklaus/portaudio
// backed implementation.
package audio

import "errors"

// ErrEOF is returned by ReadSample when the device reports the
// sentinel "no more data" condition spec.md §6 describes (a sample
// value ≥ 65536 in the original fixed-point protocol); here it is a
// distinct error instead of a magic sample value.
var ErrEOF = errors.New("audio: device end of stream")

// Device is a blocking multi-channel PCM source and sink. Mono devices
// expose one channel; stereo devices expose two (0 = left, 1 = right),
// per spec.md §6.
type Device interface {
	// ReadSample blocks for one sample on the given device channel
	// (0 or 1), returned in [-1, 1].
	ReadSample(deviceChannel int) (float64, error)
	// WriteSample blocks until one sample has been queued for
	// playback on the given device channel.
	WriteSample(deviceChannel int, v float64) error
	// Flush blocks until all queued output samples have been played,
	// matching spec.md §4.6's audio_wait.
	Flush() error
	Channels() int
	SampleRate() int
	Close() error
}

// ChannelSink adapts one device channel of a Device to tone.Sink.
type ChannelSink struct {
	Dev     Device
	DevChan int
}

func (s ChannelSink) PutSample(v float64) {
	_ = s.Dev.WriteSample(s.DevChan, v)
}

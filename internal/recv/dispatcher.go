// Package recv implements the per-audio-device receive pump spec.md
// §4 calls RecvDispatcher: it reads PCM samples, drives one demodulator
// per channel sharing that device, and forwards decoded frames to the
// delivery queue. Grounded on the teacher's recv.go/demod.go pump loop.
package recv

import (
	"github.com/n7dwg/direwolf-go/internal/ax25"
	"github.com/n7dwg/direwolf-go/internal/config"
	"github.com/n7dwg/direwolf-go/internal/dlq"
	"github.com/n7dwg/direwolf-go/internal/dwlog"
	"github.com/n7dwg/direwolf-go/internal/hdlc"
)

// SampleSource is the blocking single-channel read side of audio.Device.
type SampleSource interface {
	ReadSample(deviceChannel int) (float64, error)
}

// ChannelSampleSource pairs a SampleSource with one device channel. It
// has no methods, and Dispatcher reads device channels directly.
type ChannelSampleSource struct {
	Src     SampleSource
	DevChan int
}

// ChannelDemod is anything that accepts one PCM sample and eventually
// decodes data bits from it (demod.Demodulator satisfies this).
type ChannelDemod interface {
	PutSample(sample float64)
}

// Channel binds one radio channel's demodulator+HDLC decoder pipeline
// to the Dlq it delivers frames into. Channel-busy detection is
// handled separately by DCDTracker, fed by the same decoder's
// OnActivity hook.
type Channel struct {
	Cfg   *config.ChannelConfig
	Demod ChannelDemod
}

// Dispatcher pumps one audio device's samples through each of its
// channels' demodulators. A mono device has one Channel; a stereo
// device has two, interleaved by device-channel index.
type Dispatcher struct {
	src      SampleSource
	channels []*Channel
	q        *dlq.Queue
}

// NewDispatcher builds a dispatcher for a device with the given
// per-device-channel Channel bindings (index 0 = left/mono, 1 = right).
func NewDispatcher(src SampleSource, channels []*Channel, q *dlq.Queue) *Dispatcher {
	return &Dispatcher{src: src, channels: channels, q: q}
}

// Run reads samples forever, round-robining across device channels,
// until stop is closed.
func (d *Dispatcher) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		for devChan, ch := range d.channels {
			sample, err := d.src.ReadSample(devChan)
			if err != nil {
				dwlog.Error.Printf("recv: device channel %d: %v", devChan, err)
				return
			}
			ch.Demod.PutSample(sample)
		}
	}
}

// OnDecodedFrame is passed as the hdlc.Decoder onFrame callback for a
// given channel/audio setup; it packages the payload into a dlq.Item
// and appends it, per spec.md §4's RecvDispatcher -> Dlq hand-off.
func OnDecodedFrame(q *dlq.Queue, channel int, audioLevel int) func(hdlc.DecodedFrame) {
	return func(df hdlc.DecodedFrame) {
		frame, err := ax25.Unpack(df.Payload)
		if err != nil {
			dwlog.Error.Printf("channel %d: dropping undecodable frame: %v", channel, err)
			return
		}
		fecType := ax25.FECNone
		if df.Corrected {
			dwlog.Rec.Printf("channel %d: frame corrected by single-bit fix", channel)
		}
		q.Append(dlq.Item{
			Channel:    channel,
			Frame:      frame,
			AudioLevel: audioLevel,
			FECType:    fecType,
		})
	}
}

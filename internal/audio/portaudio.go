package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDevice is a Device backed by github.com/gordonklaus/portaudio,
// grounded on the teacher's audio.go (which opens a raw ALSA PCM handle
// directly) — portaudio is adopted here for the cross-platform device
// enumeration/stream API the rest of the pack's audio-touching repos
// rely on instead of hand-rolled ALSA ioctls.
//
// Samples are exchanged one at a time across buffered channels so the
// ToneGen/demod goroutines can block on ReadSample/WriteSample exactly
// like the teacher's synchronous snd_out()/demod_get_sample() calls,
// while portaudio itself drives the stream from its own callback.
type PortAudioDevice struct {
	stream     *portaudio.Stream
	channels   int
	sampleRate int

	in  []chan float64 // one per device channel, fed by the portaudio callback
	out []chan float64 // one per device channel, drained by the portaudio callback

	closeOnce sync.Once
}

const sampleBuf = 4096

// OpenPortAudioDevice opens PortAudio's default input/output device for
// full-duplex operation with the given rate and channel count; no
// device is selected by name.
func OpenPortAudioDevice(cfg DeviceOpenParams) (*PortAudioDevice, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audio: portaudio init: %w", err)
	}

	d := &PortAudioDevice{
		channels:   cfg.Channels,
		sampleRate: cfg.SampleRate,
	}
	d.in = make([]chan float64, cfg.Channels)
	d.out = make([]chan float64, cfg.Channels)
	for i := 0; i < cfg.Channels; i++ {
		d.in[i] = make(chan float64, sampleBuf)
		d.out[i] = make(chan float64, sampleBuf)
	}

	stream, err := portaudio.OpenDefaultStream(cfg.Channels, cfg.Channels, float64(cfg.SampleRate), 0, d.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("audio: opening stream: %w", err)
	}
	d.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("audio: starting stream: %w", err)
	}
	return d, nil
}

// DeviceOpenParams mirrors config.AudioDeviceConfig without importing
// the config package, keeping audio free of a dependency cycle.
type DeviceOpenParams struct {
	SampleRate int
	Channels   int
}

func (d *PortAudioDevice) callback(in, out [][]float32) {
	frames := len(out[0])
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < d.channels; ch++ {
			select {
			case v := <-d.out[ch]:
				out[ch][frame] = float32(v)
			default:
				out[ch][frame] = 0
			}
			select {
			case d.in[ch] <- float64(in[ch][frame]):
			default:
			}
		}
	}
}

func (d *PortAudioDevice) ReadSample(deviceChannel int) (float64, error) {
	if deviceChannel < 0 || deviceChannel >= d.channels {
		return 0, fmt.Errorf("audio: invalid channel %d", deviceChannel)
	}
	v, ok := <-d.in[deviceChannel]
	if !ok {
		return 0, ErrEOF
	}
	return v, nil
}

func (d *PortAudioDevice) WriteSample(deviceChannel int, v float64) error {
	if deviceChannel < 0 || deviceChannel >= d.channels {
		return fmt.Errorf("audio: invalid channel %d", deviceChannel)
	}
	d.out[deviceChannel] <- v
	return nil
}

// Flush blocks until every channel's output buffer has drained,
// matching spec.md §4.6's audio_wait used before releasing PTT.
func (d *PortAudioDevice) Flush() error {
	for _, ch := range d.out {
		for len(ch) > 0 {
			time.Sleep(time.Millisecond)
		}
	}
	return nil
}

func (d *PortAudioDevice) Channels() int   { return d.channels }
func (d *PortAudioDevice) SampleRate() int { return d.sampleRate }

func (d *PortAudioDevice) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.stream != nil {
			err = d.stream.Close()
		}
		for _, ch := range d.in {
			close(ch)
		}
		portaudio.Terminate()
	})
	return err
}

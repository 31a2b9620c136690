package xmit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n7dwg/direwolf-go/internal/ax25"
	"github.com/n7dwg/direwolf-go/internal/config"
	"github.com/n7dwg/direwolf-go/internal/ptt"
	"github.com/n7dwg/direwolf-go/internal/tone"
	"github.com/n7dwg/direwolf-go/internal/txqueue"
)

type fakeLine struct {
	events []bool
}

func (f *fakeLine) Set(_ ptt.OutputType, _ int, on bool) error {
	f.events = append(f.events, on)
	return nil
}
func (f *fakeLine) Close() error { return nil }

type discardSink struct{ n int }

func (d *discardSink) PutSample(float64) { d.n++ }

func testFrame(t *testing.T) ax25.Frame {
	t.Helper()
	dest := ax25.Address{Call: "APDW16"}
	src := ax25.Address{Call: "N7DWG", SSID: 1}
	return ax25.Frame{Dest: dest, Source: src, Control: 0x03, HasPID: true, PID: 0xF0, Info: []byte("test")}
}

func newTestScheduler(t *testing.T, busy bool, line *fakeLine) (*Scheduler, *txqueue.Queue) {
	t.Helper()
	q := txqueue.New()
	cfg := config.DefaultChannelConfig(0)
	cfg.SlotTime.Store(0)
	sink := &discardSink{}
	gen := tone.NewGenerator(sink, 44100, 1200, 1200, 2200, 0.5)
	s := NewScheduler(cfg, q, func() bool { return busy }, line, gen, nil)
	s.sleep = func(time.Duration) {}
	return s, q
}

func TestTransmitBundleKeysAndUnkeysPTT(t *testing.T) {
	line := &fakeLine{}
	s, q := newTestScheduler(t, false, line)
	q.Append(txqueue.Hi, testFrame(t))

	s.transmitBundle()

	require.Len(t, line.events, 2)
	assert.True(t, line.events[0])
	assert.False(t, line.events[1])
}

func TestTransmitBundleRespectsBundleCap(t *testing.T) {
	line := &fakeLine{}
	s, q := newTestScheduler(t, false, line)
	s.BundleCap = 2
	for i := 0; i < 5; i++ {
		q.Append(txqueue.Hi, testFrame(t))
	}

	s.transmitBundle()

	remaining := 0
	for {
		if _, ok := q.Remove(txqueue.Hi); !ok {
			break
		}
		remaining++
	}
	assert.Equal(t, 3, remaining)
}

func TestTransmitBundleDrainsHiBeforeLo(t *testing.T) {
	line := &fakeLine{}
	s, q := newTestScheduler(t, false, line)
	s.BundleCap = 1
	loFrame := testFrame(t)
	loFrame.Info = []byte("lo")
	hiFrame := testFrame(t)
	hiFrame.Info = []byte("hi")
	q.Append(txqueue.Lo, loFrame)
	q.Append(txqueue.Hi, hiFrame)

	s.transmitBundle()

	remaining, ok := q.Remove(txqueue.Lo)
	require.True(t, ok)
	assert.Equal(t, "lo", string(remaining.Info))
}

func TestWaitForClearChannelBlocksWhileBusy(t *testing.T) {
	line := &fakeLine{}
	calls := 0
	s, q := newTestScheduler(t, true, line)
	q.Append(txqueue.Hi, testFrame(t))
	s.busy = func() bool {
		calls++
		return calls < 3
	}
	s.cfg.Persist.Store(255)

	s.transmitBundle()

	assert.GreaterOrEqual(t, calls, 3)
	require.Len(t, line.events, 2)
}

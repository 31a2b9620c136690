// Package xmit implements the p-persistent CSMA transmit scheduler
// spec.md §4 calls XmitScheduler, grounded on the teacher's xmit.go
// (xmit_thread/wait_for_clear_channel/ptt_set sequencing).
package xmit

import (
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/n7dwg/direwolf-go/internal/ax25"
	"github.com/n7dwg/direwolf-go/internal/config"
	"github.com/n7dwg/direwolf-go/internal/dwlog"
	"github.com/n7dwg/direwolf-go/internal/hdlc"
	"github.com/n7dwg/direwolf-go/internal/ptt"
	"github.com/n7dwg/direwolf-go/internal/tone"
	"github.com/n7dwg/direwolf-go/internal/txqueue"
)

// ChannelBusy reports whether the receiver currently sees the channel
// occupied (DCD), used by the p-persistent algorithm's clear-channel
// wait (spec.md §4.6).
type ChannelBusy func() bool

// AudioLock serializes access to a shared stereo audio device between
// the two channels that may share it (spec.md §3/§6): Lock blocks
// until this channel may transmit, Unlock releases it.
type AudioLock interface {
	Lock()
	Unlock()
}

// noLock is used when a channel owns its audio device outright (mono
// device, or the sole user of a stereo one).
type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// NoAudioLock is the no-op AudioLock for channels with exclusive
// access to their audio device.
var NoAudioLock AudioLock = noLock{}

// Scheduler drives one channel's transmit path: CSMA channel access,
// PTT sequencing, TXDELAY/TXTAIL, and encoding queued frames to audio.
type Scheduler struct {
	cfg      *config.ChannelConfig
	queue    *txqueue.Queue
	busy     ChannelBusy
	line     ptt.Line
	gen      *tone.Generator
	lock     AudioLock

	// BundleCap bounds how many queued frames are sent in one
	// transmission before releasing PTT and re-arbitrating for the
	// channel, matching spec.md §4.6's bundling note.
	BundleCap int

	// BeaconLimiter, if set, gates frames whose Info this scheduler is
	// told are beacons (see IsBeacon) to guard against a runaway
	// periodic-beacon configuration flooding the channel — an
	// enrichment beyond the distilled spec, using golang.org/x/time/rate
	// the way the pack's other service repos rate-limit outbound work.
	BeaconLimiter *rate.Limiter
	// IsBeacon classifies a frame as a rate-limited beacon. Nil means
	// no frame is ever rate-limited.
	IsBeacon func(ax25.Frame) bool

	rng *rand.Rand

	// sleep is overridable in tests so CSMA timing doesn't actually
	// sleep for real slot times.
	sleep func(time.Duration)
}

// NewScheduler builds a scheduler for one channel. gen must already be
// wired to write samples to that channel's audio device/side.
func NewScheduler(cfg *config.ChannelConfig, queue *txqueue.Queue, busy ChannelBusy, line ptt.Line, gen *tone.Generator, lock AudioLock) *Scheduler {
	if lock == nil {
		lock = NoAudioLock
	}
	return &Scheduler{
		cfg:       cfg,
		queue:     queue,
		busy:      busy,
		line:      line,
		gen:       gen,
		lock:      lock,
		BundleCap: 8,
		rng:       rand.New(rand.NewSource(int64(cfg.Channel) + 1)),
		sleep:     time.Sleep,
	}
}

func (s *Scheduler) tenms(n int32) time.Duration {
	return time.Duration(n) * 10 * time.Millisecond
}

// Run services the queue forever until stop is closed. It is meant to
// run in its own goroutine, one per channel.
func (s *Scheduler) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		s.queue.WaitWhileEmpty()
		select {
		case <-stop:
			return
		default:
		}
		if s.queue.IsEmpty() {
			continue // queue was closed out from under a waiting goroutine
		}
		s.transmitBundle()
	}
}

// transmitBundle waits for a clear channel, keys up, sends up to
// BundleCap queued frames, then keys down.
func (s *Scheduler) transmitBundle() {
	if !s.cfg.FullDup.Load() {
		s.waitForClearChannel()
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.line.Set(ptt.PTT, s.cfg.Channel, true); err != nil {
		dwlog.Error.Printf("channel %d: PTT on failed: %v", s.cfg.Channel, err)
	}
	enc := hdlc.NewEncoder(s.gen)
	enc.SendFlags(s.flagCount(s.cfg.TXDelay.Load()))

	sent := 0
	for sent < s.BundleCap {
		prio := txqueue.Hi
		frame, ok := s.queue.Peek(txqueue.Hi)
		if !ok {
			prio = txqueue.Lo
			frame, ok = s.queue.Peek(txqueue.Lo)
		}
		if !ok {
			break
		}
		digi := frame.Flavor() == ax25.FlavorAPRSDigi
		if digi && sent > 0 {
			break // a digipeated frame gets a transmission of its own
		}
		s.queue.Remove(prio)
		if s.BeaconLimiter != nil && s.IsBeacon != nil && s.IsBeacon(frame) && !s.BeaconLimiter.Allow() {
			dwlog.Xmit.Printf("channel %d: beacon dropped, rate limit exceeded", s.cfg.Channel)
			continue
		}
		s.sendOne(enc, frame)
		sent++
		if digi {
			break
		}
	}

	enc.SendFlags(s.flagCount(s.cfg.TXTail.Load()))
	if err := s.line.Set(ptt.PTT, s.cfg.Channel, false); err != nil {
		dwlog.Error.Printf("channel %d: PTT off failed: %v", s.cfg.Channel, err)
	}
}

// flagCount converts a duration in 10ms units into the number of flag
// bytes that fill it at this channel's baud rate.
func (s *Scheduler) flagCount(n int32) int {
	return int(n) * s.cfg.Baud / 800
}

func (s *Scheduler) sendOne(enc *hdlc.Encoder, frame ax25.Frame) {
	payload, err := frame.Pack()
	if err != nil {
		dwlog.Error.Printf("channel %d: packing frame: %v", s.cfg.Channel, err)
		return
	}
	enc.SendFlags(1)
	badFCS := s.cfg.XmitErrorRatePercent > 0 && s.rng.Intn(100) < s.cfg.XmitErrorRatePercent
	enc.SendFrame(payload, badFCS)
	dwlog.Xmit.Printf("channel %d: sent %d byte frame", s.cfg.Channel, len(payload))
}

// waitForClearChannel implements Dire Wolf's p-persistent algorithm:
// wait for DCD to clear, then on each slottime tick either transmit
// (with probability persist/256) or wait another slot.
func (s *Scheduler) waitForClearChannel() {
	for s.busy() {
		s.sleep(s.tenms(s.cfg.SlotTime.Load()))
	}
	dwaitTicks := s.cfg.DWait.Load()
	if dwaitTicks > 0 {
		s.sleep(s.tenms(dwaitTicks))
	}
	for {
		if s.busy() {
			for s.busy() {
				s.sleep(s.tenms(s.cfg.SlotTime.Load()))
			}
			continue
		}
		if s.rng.Intn(256) < int(s.cfg.Persist.Load()) {
			return
		}
		s.sleep(s.tenms(s.cfg.SlotTime.Load()))
	}
}

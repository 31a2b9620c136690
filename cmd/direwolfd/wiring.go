package main

import (
	"github.com/n7dwg/direwolf-go/internal/ax25"
	"github.com/n7dwg/direwolf-go/internal/config"
	"github.com/n7dwg/direwolf-go/internal/dwlog"
	"github.com/n7dwg/direwolf-go/internal/hdlc"
	"github.com/n7dwg/direwolf-go/internal/ptt"
	"github.com/n7dwg/direwolf-go/internal/recv"
	"github.com/n7dwg/direwolf-go/internal/txqueue"
)

// dlqLoggerAdapter satisfies dlq.Logger by forwarding to dwlog.Error,
// the way the rest of this command routes every other warning.
type dlqLoggerAdapter struct{}

func (dlqLoggerAdapter) Warnf(format string, args ...any) {
	dwlog.Error.Printf(format, args...)
}

func toHDLCFixBits(f config.FixBits) hdlc.FixBits {
	if f == config.FixSingle {
		return hdlc.FixSingle
	}
	return hdlc.FixNone
}

// newDecoder builds the HDLC decoder for one channel, wiring its
// OnActivity callback into that channel's DCD tracker so
// xmit.Scheduler's CSMA check has a busy signal.
func newDecoder(cc *config.ChannelConfig, onFrame func(hdlc.DecodedFrame), dcd *recv.DCDTracker) *hdlc.Decoder {
	dec := hdlc.NewDecoder(toHDLCFixBits(cc.FixBits), onFrame)
	dec.OnActivity = dcd.Touch
	return dec
}

// pttLineFor resolves a channel's PTT backend. Every channel gets
// ptt.Null (logged, no hardware); no flag or config field selects a
// serial/GPIO/hamlib/CM108 line.
func pttLineFor(cc *config.ChannelConfig) (ptt.Line, error) {
	return ptt.Null{Channel: cc.Channel}, nil
}

func newTxQueueFor(cc *config.ChannelConfig) *txqueue.Queue {
	return txqueue.New()
}

// kissIntoQueue adapts a KISS PTY's decoded host-to-TNC data frames
// into ax25.Frame values appended to the channel's transmit queue, at
// low priority (spec.md §4.6 reserves Hi for control/retries this
// command doesn't yet generate).
func kissIntoQueue(q *txqueue.Queue, port int) func(int, []byte) {
	return func(_ int, payload []byte) {
		frame, err := ax25.Unpack(payload)
		if err != nil {
			dwlog.Error.Printf("kiss port %d: dropping malformed frame: %v", port, err)
			return
		}
		q.Append(txqueue.Lo, frame)
	}
}

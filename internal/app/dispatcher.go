// Package app implements the single-consumer AppDispatcher spec.md §4
// describes: it drains the Dlq, logs each received frame the way Dire
// Wolf's monitoring format does, and fans it out to every registered
// Sink (in cmd/direwolfd, the websocket monitor hub). Grounded on the
// teacher's appserver.go/aclients.go dispatch loop.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/n7dwg/direwolf-go/internal/ax25"
	"github.com/n7dwg/direwolf-go/internal/dlq"
	"github.com/n7dwg/direwolf-go/internal/dwlog"
)

// pollInterval bounds how long Run can block on an empty queue before
// re-checking stop, since dlq.Queue has no native cancellation.
const pollInterval = 200 * time.Millisecond

// Sink receives every frame AppDispatcher delivers, already formatted
// as a monitoring line and as the raw decoded frame.
type Sink interface {
	Deliver(channel int, line string, frame ax25.Frame)
}

// Dispatcher is the single Dlq consumer.
type Dispatcher struct {
	q     *dlq.Queue
	sinks []Sink
}

// NewDispatcher builds a dispatcher draining q and fanning out to sinks.
func NewDispatcher(q *dlq.Queue, sinks ...Sink) *Dispatcher {
	return &Dispatcher{q: q, sinks: sinks}
}

// Run drains the Dlq until stop is closed.
func (d *Dispatcher) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		if timedOut := d.q.WaitWhileEmpty(pollInterval); timedOut {
			continue
		}
		item, ok := d.q.Remove()
		if !ok {
			continue
		}
		d.deliver(item)
	}
}

func (d *Dispatcher) deliver(item dlq.Item) {
	line := MonitorLine(item)
	dwlog.Decoded.Print(line)
	for _, s := range d.sinks {
		s.Deliver(item.Channel, line, item.Frame)
	}
}

// MonitorLine renders one Dlq item the way Dire Wolf's "decoded" log
// line does, prefixed with the channel: [CHAN] SRC>DEST,DIGI1,DIGI2*:info.
// Every digipeater marked Repeated gets a "*".
func MonitorLine(item dlq.Item) string {
	f := item.Frame
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] ", item.Channel)
	writeAddr(&b, f.Source)
	b.WriteByte('>')
	writeAddr(&b, f.Dest)
	for _, d := range f.Digis {
		b.WriteByte(',')
		writeAddr(&b, d)
		if d.Repeated {
			b.WriteByte('*')
		}
	}
	b.WriteByte(':')
	b.Write(f.Info)
	return b.String()
}

func writeAddr(b *strings.Builder, a ax25.Address) {
	b.WriteString(a.Call)
	if a.SSID != 0 {
		fmt.Fprintf(b, "-%d", a.SSID)
	}
}

package ptt

import "github.com/n7dwg/direwolf-go/internal/dwlog"

// Null is the "no PTT hardware configured" Line: it only logs, the way
// Dire Wolf's "PTT NONE" config line behaves — useful for testing a
// channel's CSMA/bundling behavior without a radio attached.
type Null struct {
	Channel int
}

func (n Null) Set(ot OutputType, channel int, on bool) error {
	dwlog.Debug.Printf("channel %d: %s -> %v (no PTT hardware configured)", channel, ot, on)
	return nil
}

func (n Null) Close() error { return nil }

package ptt

import (
	"fmt"

	"github.com/pkg/term"
	"golang.org/x/sys/unix"
)

// SerialLine drives PTT through a serial port's RTS or DTR modem
// control line, per spec.md §6's "serial RTS/DTR (optionally inverted,
// optionally a paired second line)". Grounded on the teacher's
// `ptt.go` RTS_ON/DTR_ON helpers, reimplemented over the standard
// TIOCMBIS/TIOCMBIC ioctls instead of a package-scoped per-channel fd
// table.
type SerialLine struct {
	t    *term.Term
	bit  int // unix.TIOCM_RTS or unix.TIOCM_DTR
}

// NewSerialLine opens device (e.g. "/dev/ttyUSB0") and returns a Line
// that asserts/deasserts the given modem control bit.
func NewSerialLine(device string, useDTR bool) (*SerialLine, error) {
	t, err := term.Open(device)
	if err != nil {
		return nil, fmt.Errorf("ptt: opening %s: %w", device, err)
	}
	bit := unix.TIOCM_RTS
	if useDTR {
		bit = unix.TIOCM_DTR
	}
	return &SerialLine{t: t, bit: bit}, nil
}

func (s *SerialLine) Set(_ OutputType, _ int, on bool) error {
	req := unix.TIOCMBIC
	if on {
		req = unix.TIOCMBIS
	}
	return unix.IoctlSetInt(int(s.t.Fd()), uint(req), s.bit)
}

func (s *SerialLine) Close() error {
	return s.t.Close()
}

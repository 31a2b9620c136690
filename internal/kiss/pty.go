package kiss

import (
	"fmt"
	"io"
	"os"

	"github.com/creack/pty"
)

// PTYSink exposes a KISS port over a pseudo-terminal, the same
// surface the teacher's kissserial.go offers applications like Xastir
// that only know how to open a serial device (spec.md §6).
type PTYSink struct {
	master *os.File
	slave  *os.File
	name   string
	dec    *Decoder
}

// OpenPTYSink allocates a new PTY pair and returns a sink whose slave
// side name (e.g. "/dev/pts/4") the caller should report to the user.
// onFrame receives host-to-TNC data frames read back from the slave.
func OpenPTYSink(onFrame func(port int, payload []byte)) (*PTYSink, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("kiss: opening pty: %w", err)
	}
	s := &PTYSink{master: master, slave: slave, name: slave.Name(), dec: NewDecoder(onFrame)}
	go s.pump()
	return s, nil
}

// Name returns the slave device path applications should open.
func (s *PTYSink) Name() string { return s.name }

// WriteFrame sends one decoded frame (TNC-to-host direction) out the
// PTY as a KISS data frame.
func (s *PTYSink) WriteFrame(port int, payload []byte) error {
	_, err := s.master.Write(EncodeDataFrame(port, payload))
	return err
}

func (s *PTYSink) pump() {
	buf := make([]byte, 4096)
	for {
		n, err := s.master.Read(buf)
		if n > 0 {
			_, _ = s.dec.Write(buf[:n])
		}
		if err != nil {
			if err != io.EOF {
				return
			}
			return
		}
	}
}

func (s *PTYSink) Close() error {
	err := s.master.Close()
	if serr := s.slave.Close(); err == nil {
		err = serr
	}
	return err
}

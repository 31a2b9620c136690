// Package kiss implements the KISS TNC byte-stuffing protocol
// (spec.md §6's "KISS over a PTY or TCP socket"), grounded on the
// teacher's kiss_frame.go FEND/FESC escaping.
package kiss

const (
	fend  = 0xC0
	fesc  = 0xDB
	tfend = 0xDC
	tfesc = 0xDD
)

// cmdDataFrame is the KISS command nibble for "data frame, port in the
// high nibble" — the only command this package emits or expects; the
// Decoder drops host command frames (TXDELAY, P, SlotTime, TXTail,
// FullDuplex, SetHardware, Return) without acting on them.
const cmdDataFrame = 0x00

// EncodeDataFrame wraps payload as a KISS data frame for the given
// port (0..15), escaping FEND/FESC bytes.
func EncodeDataFrame(port int, payload []byte) []byte {
	out := make([]byte, 0, len(payload)+4)
	out = append(out, fend)
	out = append(out, byte(port&0x0F)<<4|cmdDataFrame)
	for _, b := range payload {
		switch b {
		case fend:
			out = append(out, fesc, tfend)
		case fesc:
			out = append(out, fesc, tfesc)
		default:
			out = append(out, b)
		}
	}
	out = append(out, fend)
	return out
}

// Decoder reassembles KISS frames from a byte stream delivered one
// byte (or chunk) at a time, e.g. as read from a PTY or TCP socket.
type Decoder struct {
	inFrame bool
	escaped bool
	buf     []byte
	onFrame func(port int, payload []byte)
}

// NewDecoder builds a Decoder that invokes onFrame for each complete,
// unescaped data frame.
func NewDecoder(onFrame func(port int, payload []byte)) *Decoder {
	return &Decoder{onFrame: onFrame}
}

// Write feeds raw bytes from the transport into the decoder.
func (d *Decoder) Write(p []byte) (int, error) {
	for _, b := range p {
		d.feed(b)
	}
	return len(p), nil
}

func (d *Decoder) feed(b byte) {
	switch {
	case b == fend:
		if d.inFrame && len(d.buf) > 0 {
			d.deliver()
		}
		d.inFrame = true
		d.buf = d.buf[:0]
		d.escaped = false
	case !d.inFrame:
		// ignore bytes outside a frame
	case d.escaped:
		switch b {
		case tfend:
			d.buf = append(d.buf, fend)
		case tfesc:
			d.buf = append(d.buf, fesc)
		default:
			d.buf = append(d.buf, b)
		}
		d.escaped = false
	case b == fesc:
		d.escaped = true
	default:
		d.buf = append(d.buf, b)
	}
}

func (d *Decoder) deliver() {
	if len(d.buf) < 1 {
		return
	}
	cmd := d.buf[0]
	if cmd&0x0F != cmdDataFrame {
		return // host command frame; not this codec's concern
	}
	port := int(cmd>>4) & 0x0F
	payload := append([]byte{}, d.buf[1:]...)
	d.onFrame(port, payload)
}

package gomididrv

import (
	"fmt"
	"strings"

	"github.com/leandrodaf/midirouter/sdk/contracts"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// outPort is the part of drivers.Out the sink uses.
type outPort interface {
	Open() error
	Close() error
	String() string
	Send(data []byte) error
}

// Sink writes frames to a gomidi output port. One-data-byte messages are sent
// without the padding byte, since a host port would read it as running status.
type Sink struct {
	port outPort
}

// NewSink opens out and returns a sink writing to it.
func NewSink(out drivers.Out) (*Sink, error) {
	return newSink(out)
}

func newSink(port outPort) (*Sink, error) {
	if err := port.Open(); err != nil {
		return nil, fmt.Errorf("open %s: %w", port, err)
	}
	return &Sink{port: port}, nil
}

// Write sends frame on the port.
func (s *Sink) Write(frame [3]byte) error {
	n := 3
	if frame[0] < 0xF0 && contracts.KindOf(frame[0]).DataLen() == 1 {
		n = 2
	}
	return s.port.Send(frame[:n])
}

// Close closes the port.
func (s *Sink) Close() error {
	return s.port.Close()
}

func (s *Sink) String() string {
	return s.port.String()
}

// FindOut returns the first port in outs whose name contains name.
func FindOut(outs []drivers.Out, name string) (drivers.Out, error) {
	for _, o := range outs {
		if containsFold(o.String(), name) {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

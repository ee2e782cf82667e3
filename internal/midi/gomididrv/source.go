// Package gomididrv adapts gomidi driver ports to the router's byte source and
// sink contracts, so any driver gomidi supports (rtmidi, portmidi, webmidi) can
// stand in for the serial input and the hardware outputs.
package gomididrv

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midirouter/sdk/contracts"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Errors returned by the gomidi adapters.
var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNotSelected       = errors.New("no MIDI device selected")
	ErrPortNotFound      = errors.New("MIDI port not found")
)

// inPort is the part of drivers.In the source uses.
type inPort interface {
	Open() error
	Close() error
	String() string
	Listen(onMsg func(msg []byte, milliseconds int32), config drivers.ListenConfig) (stopFn func(), err error)
}

// Source captures raw bytes from one gomidi input port.
type Source struct {
	logger   contracts.Logger
	ports    []inPort
	mu       sync.Mutex
	selected inPort
	stop     func()
}

// NewSource creates a source choosing among ins.
func NewSource(ins []drivers.In, logger contracts.Logger) contracts.ByteSource {
	ports := make([]inPort, len(ins))
	for i, in := range ins {
		ports[i] = in
	}
	return newSource(ports, logger)
}

func newSource(ports []inPort, logger contracts.Logger) *Source {
	return &Source{logger: logger, ports: ports}
}

// ListDevices lists the input ports by name.
func (s *Source) ListDevices() ([]contracts.DeviceInfo, error) {
	if len(s.ports) == 0 {
		return nil, ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(s.ports))
	for i, p := range s.ports {
		devices[i] = contracts.DeviceInfo{Name: p.String(), EntityName: p.String()}
	}
	return devices, nil
}

// SelectDevice opens the port at deviceID, closing any previous one.
func (s *Source) SelectDevice(deviceID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deviceID < 0 || deviceID >= len(s.ports) {
		return fmt.Errorf("%w: %d", ErrInvalidMIDIDevice, deviceID)
	}
	s.closeLocked()

	port := s.ports[deviceID]
	if err := port.Open(); err != nil {
		return fmt.Errorf("open %s: %w", port, err)
	}
	s.selected = port
	s.logger.Info("MIDI input selected",
		s.logger.Field().Int("deviceID", deviceID),
		s.logger.Field().String("deviceName", port.String()))
	return nil
}

// Select opens the first port whose name contains name.
func Select(src contracts.ByteSource, name string) error {
	devices, err := src.ListDevices()
	if err != nil {
		return err
	}
	for i, d := range devices {
		if containsFold(d.Name, name) {
			return src.SelectDevice(i)
		}
	}
	return fmt.Errorf("%w: %q", ErrPortNotFound, name)
}

// StartCapture listens on the selected port. Channel messages are copied into
// chunks; system messages are dropped so they do not reset running status.
func (s *Source) StartCapture(chunks chan<- []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil {
		s.logger.Error(ErrNotSelected.Error())
		return
	}
	if s.stop != nil {
		s.logger.Warn("Capture already started")
		return
	}

	stop, err := s.selected.Listen(func(msg []byte, _ int32) {
		if len(msg) == 0 || msg[0] >= 0xF0 {
			return
		}
		data := append([]byte(nil), msg...)
		select {
		case chunks <- data:
		default:
			s.logger.Warn("Input buffer full; dropping MIDI bytes", s.logger.Field().Int("bytes", len(data)))
		}
	}, drivers.ListenConfig{})
	if err != nil {
		s.logger.Error("Failed to start MIDI capture", s.logger.Field().Error("error", err))
		return
	}
	s.stop = stop
	s.logger.Info("Starting MIDI byte capture")
}

// Stop ends capture and closes the selected port.
func (s *Source) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Source) closeLocked() error {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	if s.selected == nil {
		return nil
	}
	err := s.selected.Close()
	s.selected = nil
	return err
}

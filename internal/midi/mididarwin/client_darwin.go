//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/midirouter/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrNoMIDIDevices       = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice   = errors.New("invalid MIDI device")
	ErrMIDIConnectionError = errors.New("error connecting to MIDI device")
	ErrCreateInputPort     = errors.New("error creating input port")
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// Source reads raw MIDI bytes from a CoreMIDI source on macOS and hands them to
// the router's control loop.
type Source struct {
	logger    contracts.Logger
	chunks    atomic.Value           // chan<- []byte; swapped on start and stop.
	client    coremidi.Client        // CoreMIDI client instance for MIDI operations.
	inputPort coremidi.InputPort     // Input port for receiving MIDI packets.
	portConn  internalPortConnection // Connection to the MIDI port.
	mu        sync.Mutex             // Mutex for thread safety on shared resources.
	capturing bool                   // Indicates if capture is currently active.
	deliverMu sync.Mutex             // Held by packet callbacks; Stop takes it to wait them out.
	filter    systemFilter           // Guarded by deliverMu.
	stopOnce  sync.Once              // Ensures Stop() is executed only once.
}

// NewSource initializes a CoreMIDI byte source named clientName.
func NewSource(clientName string, logger contracts.Logger) (contracts.ByteSource, error) {
	client, err := coremidi.NewClient(clientName)
	if err != nil {
		return nil, err
	}
	logger.Info("CoreMIDI client successfully created", logger.Field().String("client", clientName))

	return &Source{
		logger: logger,
		client: client,
	}, nil
}

// ListDevices retrieves and returns available CoreMIDI sources.
func (m *Source) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		sourceEntity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   sourceEntity.Name(),
			Manufacturer: sourceEntity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects to the source with the given index, dropping any
// previous connection.
func (m *Source) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}
	m.deliverMu.Lock()
	m.filter.reset()
	m.deliverMu.Unlock()

	source := sources[deviceID]
	m.logger.Info("MIDI input selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", source.Name()))

	m.inputPort, err = coremidi.NewInputPort(m.client, "Router Input", m.handlePacket)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	m.portConn, err = m.inputPort.Connect(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}
	return nil
}

// handlePacket copies the channel message bytes of a packet to the capture
// channel. System messages are dropped so they cannot replace the decoder's
// running status. CoreMIDI reuses packet memory, so the bytes are copied
// before they leave the callback.
func (m *Source) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	m.deliver(packet.Data)
}

func (m *Source) deliver(raw []byte) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	data := m.filter.channelBytes(raw)
	chunks, _ := m.chunks.Load().(chan<- []byte)
	if chunks == nil || len(data) == 0 {
		return
	}

	select {
	case chunks <- data:
	default:
		m.logger.Warn("Input buffer full; dropping MIDI bytes", m.logger.Field().Int("bytes", len(data)))
	}
}

// StartCapture begins forwarding received bytes into chunks.
func (m *Source) StartCapture(chunks chan<- []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if chunks == nil {
		m.logger.Error("StartCapture called with nil channel")
		return
	}
	if m.capturing {
		m.logger.Warn("Capture already started; replacing channel")
	}

	m.chunks.Store(chunks)
	m.capturing = true
	m.logger.Info("Starting MIDI byte capture")
}

// Stop disconnects from the device and waits for in-flight callbacks.
func (m *Source) Stop() error {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.portConn != nil {
			m.portConn.Disconnect()
			m.portConn = nil
		}
		if m.capturing {
			m.capturing = false
			m.chunks.Store((chan<- []byte)(nil))
		}
		// A callback already past Disconnect holds deliverMu; once it is
		// released no further sends can happen.
		m.deliverMu.Lock()
		m.deliverMu.Unlock()
		m.logger.Info("MIDI capture stopped")
	})
	return nil
}

//go:build !darwin
// +build !darwin

package mididarwin

import (
	"errors"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// ErrUnavailable is returned by every operation of the non-macOS stub.
var ErrUnavailable = errors.New("CoreMIDI is not available on this platform")

type dummySource struct {
	logger contracts.Logger
}

// NewSource returns a stub source on systems without CoreMIDI.
func NewSource(clientName string, logger contracts.Logger) (contracts.ByteSource, error) {
	logger.Info("Using dummy CoreMIDI source for non-macOS system")
	return &dummySource{logger: logger}, nil
}

func (m *dummySource) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy CoreMIDI source")
	return nil, ErrUnavailable
}

func (m *dummySource) SelectDevice(deviceID int) error {
	m.logger.Warn("SelectDevice called on dummy CoreMIDI source")
	return ErrUnavailable
}

func (m *dummySource) StartCapture(chunks chan<- []byte) {
	m.logger.Warn("StartCapture called on dummy CoreMIDI source")
}

func (m *dummySource) Stop() error {
	return nil
}

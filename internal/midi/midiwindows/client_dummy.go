//go:build !windows
// +build !windows

package midiwindows

import (
	"errors"

	"github.com/leandrodaf/midirouter/sdk/contracts"
)

// ErrUnavailable is returned by every operation of the non-Windows stub.
var ErrUnavailable = errors.New("winmm is not available on this platform")

type dummySource struct {
	logger contracts.Logger
}

// NewSource returns a stub source on systems without winmm.
func NewSource(clientName string, logger contracts.Logger) (contracts.ByteSource, error) {
	logger.Info("Using dummy winmm source for non-Windows system")
	return &dummySource{logger: logger}, nil
}

// ListDevices logs a warning and reports that winmm is unavailable.
func (m *dummySource) ListDevices() ([]contracts.DeviceInfo, error) {
	m.logger.Warn("ListDevices called on dummy winmm source")
	return nil, ErrUnavailable
}

// SelectDevice logs a warning and reports that winmm is unavailable.
func (m *dummySource) SelectDevice(deviceID int) error {
	m.logger.Warn("SelectDevice called on dummy winmm source")
	return ErrUnavailable
}

// StartCapture logs a warning; nothing is ever captured.
func (m *dummySource) StartCapture(chunks chan<- []byte) {
	m.logger.Warn("StartCapture called on dummy winmm source")
}

// Stop is a no-op.
func (m *dummySource) Stop() error {
	return nil
}

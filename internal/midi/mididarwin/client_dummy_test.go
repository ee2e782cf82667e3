//go:build !darwin
// +build !darwin

package mididarwin

import (
	"testing"

	"github.com/leandrodaf/midirouter/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummySource(t *testing.T) {
	src, err := NewSource("test", logger.NewNopLogger())
	require.NoError(t, err)

	_, err = src.ListDevices()
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, src.SelectDevice(0), ErrUnavailable)

	chunks := make(chan []byte, 1)
	src.StartCapture(chunks)
	assert.Len(t, chunks, 0)
	assert.NoError(t, src.Stop())
}

package mididarwin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelBytes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"channel message", []byte{0x90, 0x3C, 0x7F}, []byte{0x90, 0x3C, 0x7F}},
		{"clock inside running status", []byte{0x90, 0x3C, 0x7F, 0xF8, 0x3E, 0x7F}, []byte{0x90, 0x3C, 0x7F, 0x3E, 0x7F}},
		{"clock between data bytes", []byte{0x90, 0x3C, 0xF8, 0x7F}, []byte{0x90, 0x3C, 0x7F}},
		{"sysex span", []byte{0xF0, 0x7E, 0x01, 0x02, 0xF7, 0xC0, 0x05}, []byte{0xC0, 0x05}},
		{"song position", []byte{0xF2, 0x10, 0x20, 0x3E, 0x7F}, []byte{0x3E, 0x7F}},
		{"tune request", []byte{0xF6, 0x3E, 0x7F}, []byte{0x3E, 0x7F}},
		{"status ends sysex", []byte{0xF0, 0x01, 0x80, 0x3C, 0x00}, []byte{0x80, 0x3C, 0x00}},
		{"only real-time", []byte{0xF8, 0xFA, 0xFE}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f systemFilter
			assert.Equal(t, tt.want, f.channelBytes(tt.in))
		})
	}
}

func TestChannelBytesAcrossPackets(t *testing.T) {
	var f systemFilter
	assert.Nil(t, f.channelBytes([]byte{0xF0, 0x7E, 0x01}))
	assert.Nil(t, f.channelBytes([]byte{0x02, 0x03}))
	assert.Equal(t, []byte{0x90, 0x3C, 0x7F}, f.channelBytes([]byte{0xF7, 0x90, 0x3C, 0x7F}))

	assert.Nil(t, f.channelBytes([]byte{0xF2, 0x10}))
	assert.Equal(t, []byte{0x3E, 0x7F}, f.channelBytes([]byte{0x20, 0x3E, 0x7F}))

	f.channelBytes([]byte{0xF0, 0x01})
	f.reset()
	assert.Equal(t, []byte{0x3C, 0x7F}, f.channelBytes([]byte{0x3C, 0x7F}))
}

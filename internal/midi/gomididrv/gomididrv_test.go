package gomididrv

import (
	"errors"
	"testing"

	"github.com/leandrodaf/midirouter/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/drivers"
)

type fakeIn struct {
	name    string
	open    bool
	onMsg   func([]byte, int32)
	stopped bool
}

func (f *fakeIn) Open() error    { f.open = true; return nil }
func (f *fakeIn) Close() error   { f.open = false; return nil }
func (f *fakeIn) String() string { return f.name }
func (f *fakeIn) Listen(onMsg func(msg []byte, milliseconds int32), _ drivers.ListenConfig) (func(), error) {
	f.onMsg = onMsg
	return func() { f.stopped = true }, nil
}

type fakeOut struct {
	name    string
	openErr error
	sent    [][]byte
}

func (f *fakeOut) Open() error    { return f.openErr }
func (f *fakeOut) Close() error   { return nil }
func (f *fakeOut) String() string { return f.name }
func (f *fakeOut) Send(data []byte) error {
	f.sent = append(f.sent, append([]byte(nil), data...))
	return nil
}

func TestSourceCapture(t *testing.T) {
	a := &fakeIn{name: "Keystation 49"}
	b := &fakeIn{name: "IAC Driver Bus 1"}
	src := newSource([]inPort{a, b}, logger.NewNopLogger())

	devices, err := src.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "IAC Driver Bus 1", devices[1].Name)

	require.NoError(t, Select(src, "iac"))
	assert.True(t, b.open)

	chunks := make(chan []byte, 4)
	src.StartCapture(chunks)
	require.NotNil(t, b.onMsg)

	buf := []byte{0x90, 0x3C, 0x7F}
	b.onMsg(buf, 0)
	buf[1] = 0 // the callback must have copied
	b.onMsg([]byte{0xF8}, 1)
	b.onMsg([]byte{0xC0, 0x05}, 2)

	assert.Equal(t, []byte{0x90, 0x3C, 0x7F}, <-chunks)
	assert.Equal(t, []byte{0xC0, 0x05}, <-chunks)
	assert.Len(t, chunks, 0)

	require.NoError(t, src.Stop())
	assert.True(t, b.stopped)
	assert.False(t, b.open)
}

func TestSourceErrors(t *testing.T) {
	src := newSource(nil, logger.NewNopLogger())
	_, err := src.ListDevices()
	assert.ErrorIs(t, err, ErrNoMIDIDevices)

	src = newSource([]inPort{&fakeIn{name: "x"}}, logger.NewNopLogger())
	assert.ErrorIs(t, src.SelectDevice(3), ErrInvalidMIDIDevice)
	assert.ErrorIs(t, Select(src, "missing"), ErrPortNotFound)
	assert.NoError(t, src.Stop())
}

func TestSinkWrite(t *testing.T) {
	out := &fakeOut{name: "TRS-A"}
	s, err := newSink(out)
	require.NoError(t, err)
	assert.Equal(t, "TRS-A", s.String())

	require.NoError(t, s.Write([3]byte{0x90, 60, 100}))
	require.NoError(t, s.Write([3]byte{0xC3, 5, 0}))
	require.NoError(t, s.Write([3]byte{0xD0, 9, 0}))
	assert.Equal(t, [][]byte{{0x90, 60, 100}, {0xC3, 5}, {0xD0, 9}}, out.sent)
	assert.NoError(t, s.Close())
}

func TestSinkOpenFailure(t *testing.T) {
	_, err := newSink(&fakeOut{name: "dead", openErr: errors.New("busy")})
	assert.Error(t, err)
}
